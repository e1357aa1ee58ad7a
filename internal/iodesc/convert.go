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

	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// FromJSON builds a canonical IODescription from a raw JSON-ish
// description map, after alias normalization and type elevation. The
// resulting Kind is Complex if a supported_formats list is present,
// otherwise Literal.
func FromJSON(raw map[string]any) (*IODescription, error) {
	norm := Normalize(raw)

	d := &IODescription{
		ID:        stringField(norm, "identifier"),
		Title:     stringField(norm, "title"),
		Abstract:  stringField(norm, "abstract"),
		MinOccurs: intFieldDefault(norm, "min_occurs", 0),
		MaxOccurs: intFieldDefault(norm, "max_occurs", 1),
	}

	if metadata, ok := norm["metadata"].(map[string]any); ok {
		d.Metadata = metadata
	}
	if keywords, ok := norm["keywords"].([]any); ok {
		for _, k := range keywords {
			if s, ok := k.(string); ok {
				d.Keywords = append(d.Keywords, s)
			}
		}
	}

	if formatsRaw, ok := norm["supported_formats"].([]any); ok {
		d.Kind = KindComplex
		formats, err := parseFormats(formatsRaw)
		if err != nil {
			return nil, err
		}

		var declared *Format
		if defRaw, ok := norm["default"].(map[string]any); ok {
			f := Format{
				MimeType: stringField(defRaw, "mime_type"),
				Encoding: stringField(defRaw, "encoding"),
			}
			declared = &f
		}
		d.Formats = ElectDefaultFormat(declared, formats)
		return d, nil
	}

	d.Kind = KindLiteral
	typeRaw, hasType := norm["data_type"]
	if !hasType {
		typeRaw = "string"
	}
	elevated, err := ElevateType(typeRaw)
	if err != nil {
		return nil, err
	}
	d.DataType = elevated.DataType
	if elevated.MaxOccursOverride != nil {
		d.MaxOccurs = *elevated.MaxOccursOverride
	}
	if elevated.MinOccursOverride != nil {
		d.MinOccurs = *elevated.MinOccursOverride
	}
	if elevated.AllowedValues != nil {
		d.AllowedValues = *elevated.AllowedValues
	} else if avRaw, ok := norm["allowed_values"]; ok {
		av, err := parseAllowedValues(avRaw)
		if err != nil {
			return nil, err
		}
		d.AllowedValues = av
	}
	if def, ok := norm["default"]; ok {
		d.Default = def
	}

	return d, nil
}

// ToJSON emits the canonical JSON description for d: single-canonical
// field names, explicit min/max occurs (even when defaulted), and the
// elected default format.
func ToJSON(d *IODescription) map[string]any {
	out := map[string]any{
		"identifier": d.ID,
		"min_occurs": d.MinOccurs,
	}
	if d.MaxOccurs == Unbounded {
		out["max_occurs"] = "unbounded"
	} else {
		out["max_occurs"] = d.MaxOccurs
	}
	if d.Title != "" {
		out["title"] = d.Title
	}
	if d.Abstract != "" {
		out["abstract"] = d.Abstract
	}
	if d.Metadata != nil {
		out["metadata"] = d.Metadata
	}
	if d.Keywords != nil {
		out["keywords"] = d.Keywords
	}

	switch d.Kind {
	case KindComplex:
		formats := make([]any, 0, len(d.Formats))
		for _, f := range d.Formats {
			formats = append(formats, formatToJSON(f))
		}
		out["supported_formats"] = formats
	default:
		out["data_type"] = d.DataType
		if d.Default != nil {
			out["default"] = d.Default
		}
		if d.AllowedValues.Mode != "" {
			out["allowed_values"] = allowedValuesToJSON(d.AllowedValues)
		}
	}

	return out
}

func formatToJSON(f Format) map[string]any {
	m := map[string]any{"mime_type": f.MimeType}
	if f.Encoding != "" {
		m["encoding"] = f.Encoding
	}
	if f.Schema != "" {
		m["schema"] = f.Schema
	}
	if f.Default {
		m["default"] = true
	}
	return m
}

func allowedValuesToJSON(av AllowedValues) any {
	switch av.Mode {
	case AllowedValuesList:
		return av.Values
	case AllowedValuesRange:
		ranges := make([]any, 0, len(av.Ranges))
		for _, r := range av.Ranges {
			ranges = append(ranges, map[string]any{"min": r.Min, "max": r.Max, "step": r.Step})
		}
		return ranges
	case AllowedValuesReference:
		return map[string]any{"reference": av.Reference}
	default:
		return "anyValue"
	}
}

func parseFormats(raw []any) ([]Format, error) {
	formats := make([]Format, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &wperrors.PackageTypeError{Reason: "supported_formats entries must be objects"}
		}
		norm := Normalize(m)
		formats = append(formats, Format{
			MimeType: stringField(norm, "mime_type"),
			Encoding: stringField(norm, "encoding"),
			Schema:   stringField(norm, "schema"),
			Default:  boolField(norm, "default"),
		})
	}
	return formats, nil
}

func parseAllowedValues(raw any) (AllowedValues, error) {
	switch v := raw.(type) {
	case string:
		if v == "anyValue" {
			return AllowedValues{Mode: AllowedValuesAny}, nil
		}
		return AllowedValues{}, &wperrors.PackageTypeError{Reason: fmt.Sprintf("unrecognized allowed_values string %q", v)}
	case []any:
		return AllowedValues{Mode: AllowedValuesList, Values: v}, nil
	case map[string]any:
		if ref, ok := v["reference"].(string); ok {
			return AllowedValues{Mode: AllowedValuesReference, Reference: ref}, nil
		}
		if ranges, ok := v["ranges"].([]any); ok {
			parsed := make([]Range, 0, len(ranges))
			for _, r := range ranges {
				rm, ok := r.(map[string]any)
				if !ok {
					continue
				}
				parsed = append(parsed, Range{Min: rm["min"], Max: rm["max"], Step: rm["step"]})
			}
			return AllowedValues{Mode: AllowedValuesRange, Ranges: parsed}, nil
		}
		return AllowedValues{}, &wperrors.PackageTypeError{Reason: "unrecognized allowed_values object"}
	default:
		return AllowedValues{}, &wperrors.PackageTypeError{Reason: fmt.Sprintf("unsupported allowed_values type %T", raw)}
	}
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func boolField(m map[string]any, key string) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return false
}

func intFieldDefault(m map[string]any, key string, def int) int {
	v, ok := m[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if n == "unbounded" {
			return Unbounded
		}
	}
	return def
}
