// internal/serializer/document.go
// Package: serializer
package serializer

import "encoding/xml"

// DateLayout is the format of the suite date attribute.
const DateLayout = "2006-01-02 15:04:05"

// The element types below mirror the suite document one to one; the
// encoder fills them and encoding/xml does the rest. Field order is
// element order.

type document struct {
	XMLName xml.Name   `xml:"benchrunner"`
	Version string     `xml:"version,attr"`
	Suites  []suiteDoc `xml:"suite"`
}

type suiteDoc struct {
	Context    string         `xml:"context,attr"`
	Date       string         `xml:"date,attr"`
	ConfigPath string         `xml:"config-path,attr"`
	UUID       string         `xml:"uuid,attr"`
	Name       string         `xml:"name,attr,omitempty"`
	Env        envDoc         `xml:"env"`
	Benchmarks []benchmarkDoc `xml:"benchmark"`
	Results    []resultDoc    `xml:"result"`
}

type envDoc struct {
	Infos []infoDoc `xml:",any"`
}

type infoDoc struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
}

type benchmarkDoc struct {
	Class    string       `xml:"class,attr"`
	Subjects []subjectDoc `xml:"subject"`
}

type subjectDoc struct {
	Name     string       `xml:"name,attr"`
	Groups   []groupDoc   `xml:"group"`
	Variants []variantDoc `xml:"variant"`
}

type groupDoc struct {
	Name string `xml:"name,attr"`
}

type variantDoc struct {
	Sleep               int      `xml:"sleep,attr"`
	OutputTimeUnit      string   `xml:"output-time-unit,attr"`
	OutputTimePrecision *int     `xml:"output-time-precision,attr"`
	OutputMode          string   `xml:"output-mode,attr"`
	Revs                int      `xml:"revs,attr"`
	Iterations          int      `xml:"iterations,attr"`
	Warmup              int      `xml:"warmup,attr"`
	RetryThreshold      *float64 `xml:"retry-threshold,attr"`
	Retries             int      `xml:"retries,attr,omitempty"`

	Parameters []parameterDoc `xml:"parameter"`
	Errors     *errorsDoc     `xml:"errors"`
	Failures   *failuresDoc   `xml:"failures"`
	Iteration  []attrsDoc     `xml:"iteration"`
	Stats      *attrsDoc      `xml:"stats"`
}

type parameterDoc struct {
	Name     string         `xml:"name,attr"`
	Type     string         `xml:"type,attr,omitempty"`
	Value    *string        `xml:"value,attr"`
	Children []parameterDoc `xml:"parameter"`
}

type errorsDoc struct {
	Errors []errorDoc `xml:"error"`
}

type errorDoc struct {
	Class   string `xml:"exception-class,attr"`
	Code    int    `xml:"code,attr"`
	File    string `xml:"file,attr"`
	Line    int    `xml:"line,attr"`
	Message string `xml:",chardata"`
}

type failuresDoc struct {
	Failures []failureDoc `xml:"failure"`
}

type failureDoc struct {
	Message string `xml:",chardata"`
}

type attrsDoc struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type resultDoc struct {
	Key   string `xml:"key,attr"`
	Class string `xml:"class,attr"`
}

const typeCollection = "collection"
