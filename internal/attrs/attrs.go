// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package attrs parses the --attrs flag into the list of exercise fields a
// command prints, filters and sorts on.
package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/exefitgo/internal/config"
)

var lengthRe = regexp.MustCompile(`-?\d+`)

// Attr is one field to pull out of each exercise record.
type Attr struct {
	// gjson path into the record JSON.
	Key string `yaml:"key"`
	// False for attrs that are only there to filter or sort on.
	Include bool `yaml:"include"`
	// Key used in json/yaml output and the column title in text output.
	OutputKey string `yaml:"outputKey"`
	// Transformation spec applied to the output value.
	TransformSpec string `yaml:"transformSpec"`
}

// Transform applies the attr's transformation spec to value. An a in the spec
// renders epoch milliseconds as a relative age. Otherwise only strings are
// transformed and anything else is returned unchanged.
func (a *Attr) Transform(value interface{}) interface{} {
	if ms, ok := value.(float64); ok && strings.ContainsAny(a.TransformSpec, "aA") {
		return humanize.Time(time.UnixMilli(int64(ms)))
	}

	result, ok := value.(string)
	if !ok {
		return value
	}

	// Timestamps are converted only when a zone has been configured.
	if strings.ContainsAny(a.TransformSpec, "tT") {
		tz, _ := config.GetString("timezone")
		if tz == "" {
			tz = os.Getenv("TZ")
		}

		if tz != "" {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				log.WithError(err).Warnf("unknown timezone: %s", tz)
			} else if t, err := time.Parse(time.RFC3339, result); err == nil {
				result = t.In(loc).Format("2006-01-02T15:04:05MST")
			} else {
				log.Debugf("not a timestamp: %s", result)
			}
		}
	}

	// The last case flag wins so an attr's own spec overrides a global one
	// prepended to it. --attrs '*::U,name::l' lowers name.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same for length. A negative length elides the middle.
	if a.TransformSpec != "" {
		match := lengthRe.FindAllString(a.TransformSpec, -1)
		if len(match) != 0 {
			l, _ := strconv.Atoi(match[len(match)-1])
			abs := int(math.Abs(float64(l)))
			if len(result) > abs {
				if l < 0 {
					lr := abs/2 - 1
					if lr < 0 {
						lr = 0
					}
					result = result[0:lr] + ".." + result[len(result)-lr:]
				} else {
					result = result[:l]
				}
			}
		}
	}

	return result
}

type AttrList []Attr

// String renders the list back in --attrs format.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses a comma separated list of key:output:transform specs and merges
// them into the list. The output key defaults to the last segment of the key
// and a leading ! keeps the attr out of the output.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

specloop:
	for _, spec := range strings.Split(value, ",") {
		attr := Attr{Include: true}

		fields := strings.Split(spec, ":")

		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		// Records are flat exercise objects so a leading . is optional.
		attr.Key = strings.TrimPrefix(attr.Key, ".")

		if attr.Key == "" {
			return fmt.Errorf("empty attr key in %q", spec)
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else if fields[outputIdx] != "" {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		} else {
			attr.OutputKey = attr.Key
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// Respecifying an existing attr, usually one of the command's defaults,
		// updates it in place.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the * attr's transform spec, if any, to
// every attr in the list.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""
	for i := range *a {
		if (*a)[i].Key == "*" {
			spec = (*a)[i].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}

	return nil
}

// Included returns only the attrs that appear in output.
func (a AttrList) Included() AttrList {
	out := make(AttrList, 0, len(a))
	for _, attr := range a {
		if attr.Include && attr.Key != "*" {
			out = append(out, attr)
		}
	}
	return out
}

func (a *AttrList) Type() string {
	return "list"
}
