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

// Package wps1xml implements the OGC WPS 1.0 XML document shapes the
// engine both consumes (DescribeProcess responses, for the remote-
// provider importer, internal/wps1import) and produces (ExecuteResponse
// status documents, for the engine's own /ows/wps surface and the
// per-job <stem>.xml status file, §4.3/§6). No XML library appears
// anywhere in the retrieval pack for this concern, so this package is
// built directly on stdlib encoding/xml (justified in SPEC_FULL.md).
package wps1xml

import "encoding/xml"

// ProcessDescriptions is the root of a WPS-1 DescribeProcess response.
type ProcessDescriptions struct {
	XMLName            xml.Name            `xml:"ProcessDescriptions"`
	ProcessDescription []ProcessDescription `xml:"ProcessDescription"`
}

// ProcessDescription describes one process.
type ProcessDescription struct {
	Identifier  string      `xml:"Identifier"`
	Title       string      `xml:"Title"`
	Abstract    string      `xml:"Abstract"`
	DataInputs  DataInputs  `xml:"DataInputs"`
	ProcessOutputs ProcessOutputs `xml:"ProcessOutputs"`
}

// DataInputs wraps the process's input descriptions.
type DataInputs struct {
	Input []InputDescription `xml:"Input"`
}

// InputDescription is one WPS-1 input element.
type InputDescription struct {
	Identifier     string          `xml:"Identifier"`
	Title          string          `xml:"Title"`
	Abstract       string          `xml:"Abstract"`
	MinOccurs      string          `xml:"minOccurs,attr"`
	MaxOccurs      string          `xml:"maxOccurs,attr"`
	LiteralData    *LiteralData    `xml:"LiteralData"`
	ComplexData    *ComplexData    `xml:"ComplexData"`
	BoundingBoxData *BoundingBoxData `xml:"BoundingBoxData"`
}

// ProcessOutputs wraps the process's output descriptions.
type ProcessOutputs struct {
	Output []OutputDescription `xml:"Output"`
}

// OutputDescription is one WPS-1 output element.
type OutputDescription struct {
	Identifier      string           `xml:"Identifier"`
	Title           string           `xml:"Title"`
	Abstract        string           `xml:"Abstract"`
	LiteralOutput   *LiteralData     `xml:"LiteralOutput"`
	ComplexOutput   *ComplexData     `xml:"ComplexOutput"`
	BoundingBoxOutput *BoundingBoxData `xml:"BoundingBoxOutput"`
}

// LiteralData describes a WPS-1 literal input/output domain.
type LiteralData struct {
	DataType      DataType        `xml:"DataType"`
	AllowedValues *AllowedValues  `xml:"AllowedValues"`
	AnyValue      *struct{}       `xml:"AnyValue"`
	DefaultValue  string          `xml:"DefaultValue"`
}

// DataType carries an OWS data-type URI/reference, e.g.
// "http://www.w3.org/TR/xmlschema-2/#integer".
type DataType struct {
	Reference string `xml:"reference,attr"`
	Value     string `xml:",chardata"`
}

// AllowedValues lists the literal domain's explicit value set.
type AllowedValues struct {
	Value []string `xml:"Value"`
}

// ComplexData describes a WPS-1 complex input/output's supported
// formats, with the first entry in Default (or the sole entry in
// Supported) electing the default format.
type ComplexData struct {
	Default   FormatChoice   `xml:"Default>Format"`
	Supported []FormatChoice `xml:"Supported>Format"`
}

// FormatChoice is one {mimeType, encoding, schema} format tuple.
type FormatChoice struct {
	MimeType string `xml:"MimeType"`
	Encoding string `xml:"Encoding"`
	Schema   string `xml:"Schema"`
}

// BoundingBoxData describes a WPS-1 bounding-box input/output's
// supported coordinate reference systems.
type BoundingBoxData struct {
	Default   string   `xml:"Default>CRS"`
	Supported []string `xml:"Supported>CRS"`
}

// ExecuteResponse is the WPS-1 status document the engine writes to
// each job's <stem>.xml and serves from the WPS-1 /ows/wps surface.
type ExecuteResponse struct {
	XMLName       xml.Name      `xml:"ExecuteResponse"`
	ServiceInstance string      `xml:"serviceInstance,attr,omitempty"`
	StatusLocation  string      `xml:"statusLocation,attr,omitempty"`
	Process       ProcessBrief  `xml:"Process"`
	Status        Status        `xml:"Status"`
	ProcessOutputs *ExecuteOutputs `xml:"ProcessOutputs,omitempty"`
}

// ProcessBrief identifies the process an ExecuteResponse belongs to.
type ProcessBrief struct {
	Identifier string `xml:"Identifier"`
	Title      string `xml:"Title"`
}

// Status is the WPS-1 status element: exactly one of
// ProcessAccepted/ProcessStarted/ProcessSucceeded/ProcessFailed is
// populated, mirroring the OGC vocabulary the engine's canonical
// status normalizes to/from.
type Status struct {
	CreationTime     string            `xml:"creationTime,attr,omitempty"`
	ProcessAccepted  string            `xml:"ProcessAccepted,omitempty"`
	ProcessStarted   *ProcessStarted   `xml:"ProcessStarted,omitempty"`
	ProcessSucceeded string            `xml:"ProcessSucceeded,omitempty"`
	ProcessFailed    *ProcessFailed    `xml:"ProcessFailed,omitempty"`
}

// ProcessStarted carries the running percent-complete.
type ProcessStarted struct {
	PercentCompleted string `xml:"percentCompleted,attr"`
	Value            string `xml:",chardata"`
}

// ProcessFailed carries the OWS exception report for a failed job.
type ProcessFailed struct {
	ExceptionReport ExceptionReport `xml:"ExceptionReport"`
}

// ExceptionReport wraps one or more OWS exceptions.
type ExceptionReport struct {
	Exception []Exception `xml:"Exception"`
}

// Exception is a single OWS exception entry.
type Exception struct {
	ExceptionCode string `xml:"exceptionCode,attr"`
	Locator       string `xml:"locator,attr,omitempty"`
	ExceptionText string `xml:"ExceptionText"`
}

// ExecuteOutputs wraps the process's produced outputs.
type ExecuteOutputs struct {
	Output []ExecuteOutput `xml:"Output"`
}

// ExecuteOutput is one produced output, either a reference (complex,
// staged out-of-band) or an inline literal/complex value.
type ExecuteOutput struct {
	Identifier string          `xml:"Identifier"`
	Title      string          `xml:"Title"`
	Reference  *OutputReference `xml:"Reference,omitempty"`
	Data       *OutputData     `xml:"Data>LiteralData,omitempty"`
}

// OutputReference points at a publicly-servable output file/dir.
type OutputReference struct {
	Href     string `xml:"href,attr"`
	MimeType string `xml:"mimeType,attr,omitempty"`
}

// OutputData carries an inline literal output value.
type OutputData struct {
	Value string `xml:",chardata"`
}

// Capabilities is the WPS-1 GetCapabilities response root, minimally
// shaped for the engine's own /ows/wps surface: a list of the public
// processes it advertises.
type Capabilities struct {
	XMLName            xml.Name             `xml:"Capabilities"`
	ProcessOfferings   ProcessOfferings     `xml:"ProcessOfferings"`
}

// ProcessOfferings wraps the brief process listing.
type ProcessOfferings struct {
	Process []ProcessBrief `xml:"Process"`
}
