// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package iodesc

import (
	"fmt"
	"strings"

	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// legalArrayItemTypes are the only element types an array-elevated
// input may declare (§4.1 rule 3).
var legalArrayItemTypes = map[string]bool{
	"string": true, "boolean": true, "int": true, "long": true,
	"float": true, "double": true, "File": true, "Directory": true,
}

// Elevated carries the result of applying the type-elevation rules to
// a raw, not-yet-canonical "type" value: a shorthand literal, an array
// shorthand or object, a nullable pair, or an enum object.
type Elevated struct {
	DataType          string
	MaxOccursOverride *int
	MinOccursOverride *int
	AllowedValues     *AllowedValues
}

// ElevateType applies §4.1's four type-elevation rules to a raw "type"
// value and returns the elevated, canonical data type plus any
// min/max-occurs overrides and inferred allowed values it implies.
func ElevateType(raw any) (*Elevated, error) {
	switch v := raw.(type) {
	case string:
		return elevateStringType(v)
	case []any:
		return elevateNullablePair(v)
	case map[string]any:
		return elevateTypeObject(v)
	default:
		return nil, &wperrors.PackageTypeError{Reason: fmt.Sprintf("unsupported type representation %T", raw)}
	}
}

// elevateStringType handles rule 1 (bare literal shorthand, e.g.
// "float") plus the "T[]" and "T?" string shorthands for rules 2/3.
func elevateStringType(v string) (*Elevated, error) {
	if strings.HasSuffix(v, "[]") {
		base := strings.TrimSuffix(v, "[]")
		if !legalArrayItemTypes[base] {
			return nil, &wperrors.PackageTypeError{Reason: fmt.Sprintf("unsupported array element type %q", base)}
		}
		unbounded := Unbounded
		return &Elevated{DataType: base, MaxOccursOverride: &unbounded}, nil
	}
	if strings.HasSuffix(v, "?") {
		base := strings.TrimSuffix(v, "?")
		elevated, err := elevateStringType(base)
		if err != nil {
			return nil, err
		}
		zero := 0
		elevated.MinOccursOverride = &zero
		return elevated, nil
	}
	return &Elevated{DataType: v}, nil
}

// elevateNullablePair handles rule 2's `["null", T]` form.
func elevateNullablePair(v []any) (*Elevated, error) {
	if len(v) != 2 {
		return nil, &wperrors.PackageTypeError{Reason: "nullable type pair must have exactly two elements"}
	}
	nullIdx, typeIdx := 0, 1
	if s, ok := v[0].(string); !ok || s != "null" {
		nullIdx, typeIdx = 1, 0
		if s, ok := v[1].(string); !ok || s != "null" {
			return nil, &wperrors.PackageTypeError{Reason: `nullable type pair must include the literal "null"`}
		}
	}
	_ = nullIdx

	elevated, err := ElevateType(v[typeIdx])
	if err != nil {
		return nil, err
	}
	zero := 0
	elevated.MinOccursOverride = &zero
	return elevated, nil
}

// elevateTypeObject handles rule 3's `{type:"array", items:T}` object
// form and rule 4's `{type:"enum", symbols:[...]}` form.
func elevateTypeObject(v map[string]any) (*Elevated, error) {
	kind, _ := v["type"].(string)

	switch kind {
	case "array":
		items, ok := v["items"].(string)
		if !ok {
			return nil, &wperrors.PackageTypeError{Reason: "array type requires a string items field"}
		}
		if !legalArrayItemTypes[items] {
			return nil, &wperrors.PackageTypeError{Reason: fmt.Sprintf("unsupported array element type %q", items)}
		}
		unbounded := Unbounded
		return &Elevated{DataType: items, MaxOccursOverride: &unbounded}, nil

	case "enum":
		symbolsRaw, ok := v["symbols"].([]any)
		if !ok || len(symbolsRaw) == 0 {
			return nil, &wperrors.PackageTypeError{Reason: "enum type requires a non-empty symbols list"}
		}
		base, err := inferEnumBaseType(symbolsRaw)
		if err != nil {
			return nil, err
		}
		return &Elevated{
			DataType: base,
			AllowedValues: &AllowedValues{
				Mode:   AllowedValuesList,
				Values: symbolsRaw,
			},
		}, nil

	default:
		return nil, &wperrors.PackageTypeError{Reason: fmt.Sprintf("unsupported type object %q", kind)}
	}
}

// inferEnumBaseType implements rule 4's base-type inference: string if
// every symbol is a string, else int if every symbol is an integer,
// else float if every symbol is numeric; mixed symbol types are
// rejected.
func inferEnumBaseType(symbols []any) (string, error) {
	allString, allInt, allFloat := true, true, true

	for _, s := range symbols {
		switch n := s.(type) {
		case string:
			allInt, allFloat = false, false
		case int, int32, int64:
			allString = false
			_ = n
		case float64:
			allString = false
			if n != float64(int64(n)) {
				allInt = false
			}
		default:
			return "", &wperrors.PackageTypeError{Reason: fmt.Sprintf("enum symbol has unsupported type %T", s)}
		}
	}

	switch {
	case allString:
		return "string", nil
	case allInt:
		return "integer", nil
	case allFloat:
		return "float", nil
	default:
		return "", &wperrors.PackageTypeError{Reason: "enum symbols have mixed types"}
	}
}
