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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeWithPayload_PackageWinsOnTypeAndFormats(t *testing.T) {
	pkg := []*IODescription{
		{ID: "msg", Kind: KindLiteral, DataType: "string", Title: "pkg title"},
	}
	payload := []*IODescription{
		{ID: "msg", Kind: KindLiteral, DataType: "integer", Title: "payload title", Abstract: "payload abstract"},
	}

	merged := MergeWithPayload(pkg, payload)

	assert.Len(t, merged, 1)
	assert.Equal(t, "string", merged[0].DataType, "package must win on type")
	assert.Equal(t, "payload title", merged[0].Title, "payload must win on title")
	assert.Equal(t, "payload abstract", merged[0].Abstract, "payload must win on abstract")
}

func TestMergeWithPayload_PayloadOnlyIDsDiscarded(t *testing.T) {
	pkg := []*IODescription{{ID: "msg", Kind: KindLiteral, DataType: "string"}}
	payload := []*IODescription{{ID: "unrelated", Title: "orphan"}}

	merged := MergeWithPayload(pkg, payload)

	assert.Len(t, merged, 1)
	assert.Equal(t, "msg", merged[0].ID)
}

func TestMergeWithPayload_PackageOnlyIDsSurvive(t *testing.T) {
	pkg := []*IODescription{{ID: "msg", Kind: KindLiteral, DataType: "string", Title: "unchanged"}}

	merged := MergeWithPayload(pkg, nil)

	assert.Len(t, merged, 1)
	assert.Equal(t, "unchanged", merged[0].Title)
}

func TestMergeWithPayload_FormatsComeFromPackage(t *testing.T) {
	pkg := []*IODescription{{
		ID:      "raster",
		Kind:    KindComplex,
		Formats: []Format{{MimeType: "image/tiff", Default: true}},
	}}
	payload := []*IODescription{{
		ID:      "raster",
		Formats: []Format{{MimeType: "image/png", Default: true}},
		Title:   "from payload",
	}}

	merged := MergeWithPayload(pkg, payload)

	assert.Equal(t, "image/tiff", merged[0].Formats[0].MimeType)
	assert.Equal(t, "from payload", merged[0].Title)
}
