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

// ElectDefaultFormat applies §4.1's format-default-election rule: the
// format matching both the MimeType and Encoding of declared marks
// default; if none matches and formats has exactly one entry, that
// entry is default; otherwise no format is default. Returns a new
// slice; the input is not mutated.
func ElectDefaultFormat(declared *Format, formats []Format) []Format {
	out := make([]Format, len(formats))
	copy(out, formats)

	for i := range out {
		out[i].Default = false
	}

	if declared != nil {
		for i := range out {
			if out[i].MimeType == declared.MimeType && out[i].Encoding == declared.Encoding {
				out[i].Default = true
				return out
			}
		}
	}

	if len(out) == 1 {
		out[0].Default = true
	}

	return out
}

// HasDefault reports whether at least one format in formats is default.
func HasDefault(formats []Format) bool {
	for _, f := range formats {
		if f.Default {
			return true
		}
	}
	return false
}
