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

package dispatch

import (
	"fmt"

	"github.com/crim-ca/weaver-engine/internal/iodesc"
	"github.com/crim-ca/weaver-engine/internal/pkgloader"
	wperrors "github.com/crim-ca/weaver-engine/pkg/errors"
)

// MarshalInputs converts submitted job inputs into the shape a backend
// expects: literal and bounding-box values pass through unchanged,
// complex values become {location, class, format} objects (or a list
// of them for a multi-occurrence input), per spec.md §4.4.
func MarshalInputs(pkg *pkgloader.Package, submitted map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(submitted))
	for _, d := range pkg.Inputs {
		v, ok := submitted[d.ID]
		if !ok {
			continue
		}
		if d.Kind != iodesc.KindComplex {
			out[d.ID] = v
			continue
		}
		marshalled, err := marshalComplex(d, v)
		if err != nil {
			return nil, err
		}
		out[d.ID] = marshalled
	}
	return out, nil
}

func marshalComplex(d *iodesc.IODescription, v any) (any, error) {
	list, ok := v.([]any)
	if !ok {
		return complexLocation(d, v)
	}
	if d.MaxOccurs == 1 {
		return nil, &wperrors.PackageTypeError{FieldID: d.ID, Reason: "multiple values supplied for a single-occurrence complex input"}
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		loc, err := complexLocation(d, item)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, nil
}

func complexLocation(d *iodesc.IODescription, v any) (map[string]any, error) {
	switch val := v.(type) {
	case string:
		return map[string]any{"location": val, "class": "File"}, nil
	case map[string]any:
		loc := map[string]any{}
		if l, ok := val["location"].(string); ok {
			loc["location"] = l
		} else if h, ok := val["href"].(string); ok {
			loc["location"] = h
		}
		class := "File"
		if c, ok := val["class"].(string); ok {
			class = c
		}
		loc["class"] = class
		if f, ok := val["format"]; ok {
			loc["format"] = f
		}
		if loc["location"] == nil {
			return nil, &wperrors.PackageTypeError{FieldID: d.ID, Reason: "complex input missing location or href"}
		}
		return loc, nil
	default:
		return nil, &wperrors.PackageTypeError{FieldID: d.ID, Reason: fmt.Sprintf("unsupported complex input value type %T", v)}
	}
}
