// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package filters implements the --filter expressions applied to exercise
// records after they are fetched.
package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/exefitgo/internal/attrs"
	"github.com/staranto/exefitgo/internal/driller"
)

// key + optional ! + one of = ^ ~ < > @ / + target.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// Native reports whether the filter is passed to the wger API as a query
// parameter rather than evaluated locally. Native keys start with _.
func (f Filter) Native() bool {
	return strings.HasPrefix(f.Key, "_")
}

// BuildFilters parses spec into filters. Entries are split on "," or on
// EXEFIT_FILTER_DELIM when set. Malformed entries are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	delim := ","
	if d, ok := os.LookupEnv("EXEFIT_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil || parts[1] == "" {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		negate := strings.HasPrefix(parts[2], "!")

		filters = append(filters, Filter{
			Key:     parts[1],
			Negate:  negate,
			Operand: strings.TrimPrefix(parts[2], "!"),
			Target:  parts[3],
		})
	}

	return filters
}

// NativeFilters returns the _ prefixed filters as API query values keyed by
// the name without its _. Only positive = filters can be sent upstream.
func NativeFilters(filters []Filter) map[string]string {
	out := map[string]string{}
	for _, f := range filters {
		if !f.Native() {
			continue
		}
		if f.Operand != "=" || f.Negate {
			log.Warnf("native filter %s only supports =, ignoring", f.Key)
			continue
		}
		out[strings.TrimPrefix(f.Key, "_")] = f.Target
	}
	return out
}

// FilterDataset returns the candidates matching every filter in spec, each
// reduced to a map of the attrs keyed by OutputKey. Values are returned raw.
// Transforms are applied when the result is written.
func FilterDataset(candidates gjson.Result, attrs attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc
	var filteredResults []map[string]interface{}

	filters := BuildFilters(spec)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, attrs, filters) {
			continue
		}

		result := make(map[string]interface{}, len(attrs))
		for _, attr := range attrs {
			if attr.Key == "*" {
				continue
			}
			result[attr.OutputKey] = driller.Driller(candidate.Raw, attr.Key).Value()
		}
		filteredResults = append(filteredResults, result)
	}

	return filteredResults
}

// resolveKey maps a filter key to the JSON path to test. Attr output keys
// come first, then attr keys, then the filter key as a path of its own when
// it exists in the candidate.
func resolveKey(candidate gjson.Result, attrs attrs.AttrList, key string) string {
	for _, attr := range attrs {
		if attr.OutputKey == key {
			return attr.Key
		}
	}
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Key
		}
	}
	if driller.Driller(candidate.Raw, key).Exists() {
		return key
	}
	return ""
}

// applyFilters reports whether candidate passes every local filter. Native
// filters and filters on unknown keys are skipped.
func applyFilters(candidate gjson.Result, attrs attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		if filter.Native() {
			continue
		}

		key := resolveKey(candidate, attrs, filter.Key)
		if key == "" {
			msg := fmt.Sprintf("filter key not found: %s", filter.Key)
			log.Error(msg)
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
			continue
		}

		value := driller.Driller(candidate.Raw, key).Value()
		if value == nil {
			return false
		}

		result := true
		switch v := value.(type) {
		case string:
			result = checkStringOperand(v, filter)
		case bool:
			result = checkStringOperand(strconv.FormatBool(v), filter)
		case float64:
			result = checkNumericOperand(v, filter)
		default:
			// Lists answer membership for both @ and =, so muscles=4 reads
			// naturally.
			if filter.Operand == "@" || filter.Operand == "=" {
				result = checkContainsOperand(value, filter)
			}
		}

		if !result {
			return false
		}
	}

	return true
}

// checkContainsOperand tests membership of the target in a list, or among
// the keys of an object.
func checkContainsOperand(value interface{}, filter Filter) bool {
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if fmt.Sprint(item) == filter.Target {
				return !filter.Negate
			}
		}
		return filter.Negate
	case map[string]any:
		_, found := val[filter.Target]
		return found != filter.Negate
	default:
		log.Error(fmt.Sprintf("unsupported type for contains filtering: %T", value))
		return false
	}
}

// checkNumericOperand compares value against the target as numbers. Only =,
// > and < are supported.
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + filter.Target)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
}

func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Target == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Target) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Target) == !filter.Negate
	case ">":
		return value > filter.Target == !filter.Negate
	case "<":
		return value < filter.Target == !filter.Negate
	case "@":
		return strings.Contains(strings.ToLower(value), strings.ToLower(filter.Target)) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Target, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Target)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}
