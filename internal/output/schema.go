// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"
)

// Tag describes one attr path discovered on a record type for --schema.
type Tag struct {
	Kind     string
	Name     string
	Encoding string
}

// NewTag builds a Tag from a json struct tag value. h is the path of the
// enclosing field, if any. Fields tagged "-" yield an empty Tag.
func NewTag(h string, s string, kind string) Tag {
	parts := strings.Split(s, ",")
	if len(parts) == 0 || parts[0] == "" || parts[0] == "-" {
		return Tag{}
	}

	tag := Tag{Kind: kind, Name: parts[0]}
	if h != "" {
		tag.Name = fmt.Sprintf("%s.%s", h, parts[0])
	}

	if len(parts) > 1 {
		tag.Encoding = strings.Join(parts[1:], ",")
	}

	return tag
}

// Print renders the tag as a schema line.
func (t Tag) Print() (out string) {
	if t.Name == "" {
		return ""
	}
	if t.Kind == "" {
		return t.Name
	}
	return fmt.Sprintf("%-28s %s", t.Name, t.Kind)
}

// DumpSchema writes the attr paths available on typ, sorted by name.
func DumpSchema(w io.Writer, typ reflect.Type) {
	tags := DumpSchemaWalker("", typ, 0)
	if len(tags) == 0 {
		log.Debugf("No tags found for type: %s", typ.Name())
		return
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	fmt.Fprintln(w, "Schema for", typ.Name(), "--")
	for _, tag := range tags {
		fmt.Fprintln(w, tag.Print())
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w,
		`Any of these paths can be given to --attrs, --filter and --sort. Lists of
objects may be indexed, e.g. images[0].image.`)
}

const maxSchemaDepth = 2

// DumpSchemaWalker walks typ's json tags, descending into struct and list of
// struct fields up to maxSchemaDepth.
func DumpSchemaWalker(holder string, typ reflect.Type, depth int) []Tag {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	tags := make([]Tag, 0, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tagValue, ok := field.Tag.Lookup("json")
		if !ok {
			continue
		}

		tag := NewTag(holder, tagValue, kindOf(field.Type))
		if tag.Name == "" {
			continue
		}
		tags = append(tags, tag)

		if depth >= maxSchemaDepth {
			continue
		}

		elem := field.Type
		if elem.Kind() == reflect.Slice || elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if elem.Kind() == reflect.Struct {
			tags = append(tags, DumpSchemaWalker(tag.Name, elem, depth+1)...)
		}
	}

	return tags
}

func kindOf(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "list of " + kindOf(t.Elem())
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Ptr:
		return kindOf(t.Elem())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return t.Kind().String()
	}
}
