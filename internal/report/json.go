package report

import (
	"encoding/json"
	"io"

	"github.com/cwhuang/bsmiweb/internal/model"
)

// JSONWriter outputs lookup results as indented JSON.
// The shape matches the HTTP API's response body, so CLI output can be
// consumed by the same tooling.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result as indented JSON.
func (w *JSONWriter) Write(result *model.LookupResult) (int, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
