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

import "strings"

// canonicalAliases lists, for each canonical field name, the alternate
// spellings (beyond pure case/separator variants, which normalizeKey
// already folds together) that a JSON description may use.
var canonicalAliases = map[string][]string{
	"identifier":         {"identifier", "id"},
	"title":              {"title"},
	"min_occurs":         {"min_occurs"},
	"max_occurs":         {"max_occurs"},
	"supported_formats":  {"supported_formats", "formats"},
	"data_type":          {"data_type", "type"},
	"mime_type":          {"mime_type"},
	"allowed_values":     {"allowed_values"},
}

// signatureToCanonical maps a normalized alias signature to its
// canonical field name, built once at init from canonicalAliases.
var signatureToCanonical = buildSignatureTable()

func buildSignatureTable() map[string]string {
	table := make(map[string]string)
	for canonical, aliases := range canonicalAliases {
		for _, alias := range aliases {
			table[normalizeKey(alias)] = canonical
		}
	}
	return table
}

// normalizeKey folds a field name to a separator- and case-insensitive
// signature: lowercase with "_" and "-" removed, so "MinOccurs",
// "min_occurs", and "Min-Occurs" all collapse to "minoccurs".
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return key
}

// Normalize rewrites the keys of a raw JSON-ish I/O description map
// into canonical form. Lookup is case- and separator-tolerant; any key
// with no known alias passes through unchanged. Because every
// canonical key's own signature is itself registered in
// signatureToCanonical, Normalize is idempotent:
// Normalize(Normalize(obj)) == Normalize(obj).
func Normalize(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		canonical, ok := signatureToCanonical[normalizeKey(key)]
		if !ok {
			canonical = key
		}
		out[canonical] = value
	}
	return out
}
