// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/exefitgo/internal/attrs"
	"github.com/staranto/exefitgo/internal/filters"
)

// GlobalFlagsValidator rejects a --filter that names no usable filter.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	spec := c.String("filter")
	if spec != "" && len(filters.BuildFilters(spec)) == 0 {
		return fmt.Errorf("--filter %q: expected key<op>target, op one of = ~ ^ < > @ /", spec)
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

// AttrsValidator parses an --attrs spec without keeping the result.
func AttrsValidator(value any) error {
	var al attrs.AttrList
	return al.Set(value.(string))
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	valid := false
	for _, v := range validOutputFlagValues {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

// LookupKindValidator accepts the lq lookup kinds.
func LookupKindValidator(value any) error {
	switch value {
	case "categories", "muscles", "equipment":
		return nil
	}
	return fmt.Errorf("must be one of [categories muscles equipment]")
}
