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
	"strconv"

	"github.com/crim-ca/weaver-engine/internal/wps1xml"
)

// FromRemoteWPS1Input is the "remote-WPS XML → canonical" converter
// (§4.1): it builds a canonical IODescription from a WPS-1
// DescribeProcess <Input> element, preserving mimeType/encoding/schema
// tuples, min/max occurs, and literal-domain allowed values.
func FromRemoteWPS1Input(in wps1xml.InputDescription) (*IODescription, error) {
	raw := map[string]any{
		"identifier":  in.Identifier,
		"title":       in.Title,
		"abstract":    in.Abstract,
		"min_occurs":  occursOrDefault(in.MinOccurs, 1),
		"max_occurs":  occursOrDefault(in.MaxOccurs, 1),
	}

	switch {
	case in.ComplexData != nil:
		raw["supported_formats"] = remoteFormats(in.ComplexData)
		if in.ComplexData.Default.MimeType != "" {
			raw["default"] = map[string]any{"mime_type": in.ComplexData.Default.MimeType, "encoding": in.ComplexData.Default.Encoding}
		}
	case in.LiteralData != nil:
		raw["data_type"] = wps1xml.MapOWSDataType(firstNonEmpty(in.LiteralData.DataType.Reference, in.LiteralData.DataType.Value))
		if in.LiteralData.AllowedValues != nil {
			values := make([]any, 0, len(in.LiteralData.AllowedValues.Value))
			for _, v := range in.LiteralData.AllowedValues.Value {
				values = append(values, v)
			}
			raw["allowed_values"] = values
		} else if in.LiteralData.AnyValue != nil {
			raw["allowed_values"] = "anyValue"
		}
		if in.LiteralData.DefaultValue != "" {
			raw["default"] = in.LiteralData.DefaultValue
		}
	case in.BoundingBoxData != nil:
		raw["data_type"] = "boundingbox"
	default:
		raw["data_type"] = "string"
	}

	return FromJSON(raw)
}

// FromRemoteWPS1Output builds a canonical IODescription from a WPS-1
// DescribeProcess <Output> element.
func FromRemoteWPS1Output(out wps1xml.OutputDescription) (*IODescription, error) {
	raw := map[string]any{
		"identifier": out.Identifier,
		"title":      out.Title,
		"abstract":   out.Abstract,
		"min_occurs": 1,
		"max_occurs": 1,
	}

	switch {
	case out.ComplexOutput != nil:
		raw["supported_formats"] = remoteFormats(out.ComplexOutput)
		if out.ComplexOutput.Default.MimeType != "" {
			raw["default"] = map[string]any{"mime_type": out.ComplexOutput.Default.MimeType, "encoding": out.ComplexOutput.Default.Encoding}
		}
	case out.LiteralOutput != nil:
		raw["data_type"] = wps1xml.MapOWSDataType(firstNonEmpty(out.LiteralOutput.DataType.Reference, out.LiteralOutput.DataType.Value))
	case out.BoundingBoxOutput != nil:
		raw["data_type"] = "boundingbox"
	default:
		raw["data_type"] = "string"
	}

	return FromJSON(raw)
}

func remoteFormats(c *wps1xml.ComplexData) []any {
	out := make([]any, 0, len(c.Supported)+1)
	seen := map[string]bool{}
	add := func(f wps1xml.FormatChoice, isDefault bool) {
		if f.MimeType == "" || seen[f.MimeType+"|"+f.Encoding] {
			return
		}
		seen[f.MimeType+"|"+f.Encoding] = true
		out = append(out, map[string]any{
			"mime_type": f.MimeType,
			"encoding":  f.Encoding,
			"schema":    f.Schema,
			"default":   isDefault,
		})
	}
	add(c.Default, true)
	for _, f := range c.Supported {
		add(f, false)
	}
	return out
}

func occursOrDefault(v string, def int) int {
	if v == "" {
		return def
	}
	if v == "unbounded" {
		return Unbounded
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
