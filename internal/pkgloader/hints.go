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

package pkgloader

import "strings"

// hintClassNames maps a document's hint/requirement "class" entry to
// the HintKind the dispatcher selects on.
var hintClassNames = map[string]HintKind{
	"Docker":                HintDocker,
	"DockerRequirement":     HintDocker,
	"RemoteWPS1":            HintRemoteWPS1,
	"RemoteWPS1Requirement": HintRemoteWPS1,
	"RemoteESGF":            HintRemoteESGF,
	"RemoteESGFRequirement": HintRemoteESGF,
	"Builtin":               HintBuiltin,
	"BuiltinRequirement":    HintBuiltin,
}

// parseHints collects every application hint/requirement entry from
// the document's "hints" and "requirements" lists, in declaration
// order with hints preceding requirements so the dispatcher sees a
// stable, predictable ordering when checking for duplicates.
func parseHints(raw map[string]any) []ApplicationHint {
	var out []ApplicationHint
	out = append(out, parseHintList(raw["hints"])...)
	out = append(out, parseHintList(raw["requirements"])...)
	return out
}

func parseHintList(v any) []ApplicationHint {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []ApplicationHint
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		norm := foldKeys(m)
		className, _ := norm["class"].(string)
		kind, known := hintClassNames[className]
		if !known {
			continue
		}
		h := ApplicationHint{Kind: kind}
		if provider, ok := norm["provider"].(string); ok {
			h.Provider = provider
		}
		if process, ok := norm["process"].(string); ok {
			h.Process = process
		}
		if apiKey, ok := norm["api_key"].(string); ok {
			h.APIKey = apiKey
		}
		if script, ok := norm["script"].(string); ok {
			h.Script = script
		}
		out = append(out, h)
	}
	return out
}

// foldKeys lowercases hint-object field names, tolerating "apiKey" and
// "api_key" spellings alike, without pulling in the I/O-specific alias
// table iodesc.Normalize implements for a different field set.
func foldKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := strings.ToLower(strings.ReplaceAll(k, "_", ""))
		switch key {
		case "class":
			out["class"] = v
		case "provider":
			out["provider"] = v
		case "process":
			out["process"] = v
		case "apikey":
			out["api_key"] = v
		case "script":
			out["script"] = v
		default:
			out[k] = v
		}
	}
	return out
}
