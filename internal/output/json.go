// internal/output/json.go
package output

import "encoding/json"

// JSONFormatter outputs PublishResult as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format marshals the PublishResult as indented JSON.
func (f *JSONFormatter) Format(result *PublishResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
