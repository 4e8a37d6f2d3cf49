package collection

import "github.com/go-json-experiment/json/jsontext"

type Row struct {
	I       int64 // monotonic id, never reused
	Payload jsontext.Value
	Data    map[string]any // decoded Payload, read only
}
