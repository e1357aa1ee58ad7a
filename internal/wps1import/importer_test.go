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

package wps1import

import (
	"testing"

	"github.com/crim-ca/weaver-engine/internal/pkgloader"
)

const sampleDescribeProcess = `<?xml version="1.0"?>
<ProcessDescriptions>
  <ProcessDescription>
    <Identifier>stack_images</Identifier>
    <Title>Stack Images</Title>
    <DataInputs>
      <Input minOccurs="1" maxOccurs="1">
        <Identifier>threshold</Identifier>
        <LiteralData>
          <DataType reference="http://www.w3.org/TR/xmlschema-2/#integer">integer</DataType>
        </LiteralData>
      </Input>
      <Input minOccurs="1" maxOccurs="10">
        <Identifier>image</Identifier>
        <ComplexData>
          <Default>
            <Format><MimeType>image/tiff</MimeType></Format>
          </Default>
          <Supported>
            <Format><MimeType>image/tiff</MimeType></Format>
          </Supported>
        </ComplexData>
      </Input>
    </DataInputs>
    <ProcessOutputs>
      <Output>
        <Identifier>stacked</Identifier>
        <ComplexOutput>
          <Default>
            <Format><MimeType>image/tiff</MimeType></Format>
          </Default>
          <Supported>
            <Format><MimeType>image/tiff</MimeType></Format>
          </Supported>
        </ComplexOutput>
      </Output>
    </ProcessOutputs>
  </ProcessDescription>
</ProcessDescriptions>`

func TestImportFromXML(t *testing.T) {
	imp := NewImporter("https://provider.example.org/wps")
	pkg, err := imp.ImportFromXML([]byte(sampleDescribeProcess))
	if err != nil {
		t.Fatalf("ImportFromXML: %v", err)
	}
	if pkg.ID != "provider_example_org_stack_images" {
		t.Errorf("ID = %q", pkg.ID)
	}
	if pkg.Class != pkgloader.ClassCommandLineTool {
		t.Errorf("Class = %v, want CommandLineTool", pkg.Class)
	}
	if len(pkg.Inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(pkg.Inputs))
	}
	if len(pkg.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(pkg.Outputs))
	}
	if len(pkg.Hints) != 1 || pkg.Hints[0].Kind != pkgloader.HintRemoteWPS1 {
		t.Fatalf("expected one RemoteWPS1 hint, got %+v", pkg.Hints)
	}
	if pkg.Hints[0].Process != "stack_images" {
		t.Errorf("Hints[0].Process = %q", pkg.Hints[0].Process)
	}
}

func TestImportFromXMLRejectsMultipleDescriptions(t *testing.T) {
	imp := NewImporter("https://provider.example.org/wps")
	multi := `<ProcessDescriptions><ProcessDescription/><ProcessDescription/></ProcessDescriptions>`
	if _, err := imp.ImportFromXML([]byte(multi)); err == nil {
		t.Fatal("expected error for two ProcessDescription entries")
	}
}

func TestStampIdentifierNoHost(t *testing.T) {
	imp := NewImporter("not-a-url")
	if got := imp.stampIdentifier("proc"); got != "proc" {
		t.Errorf("stampIdentifier = %q, want unmodified proc", got)
	}
}
