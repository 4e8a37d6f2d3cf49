package utils

import (
	json2 "github.com/go-json-experiment/json"
)

// Remarshal copies input into output through their JSON representation, e.g.
// a stored document into its typed struct.
func Remarshal(input any, output any) error {
	b, err := json2.Marshal(input)
	if err != nil {
		return err
	}
	return json2.Unmarshal(b, output)
}
