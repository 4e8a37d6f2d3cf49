package collection

import "github.com/go-json-experiment/json/jsontext"

const (
	CommandInsert      = "insert"
	CommandRemove      = "remove"
	CommandPatch       = "patch"
	CommandIndex       = "index"
	CommandDropIndex   = "drop_index"
	CommandSetDefaults = "set_defaults"
)

// Command is one line of the collection file. Replaying every command in
// order rebuilds the collection.
type Command struct {
	Name      string         `json:"name"`
	Uuid      string         `json:"uuid"`
	Timestamp int64          `json:"timestamp"`
	StartByte int64          `json:"start_byte"`
	Payload   jsontext.Value `json:"payload"`
}

type removePayload struct {
	I int64 `json:"i"`
}

type patchPayload struct {
	I    int64          `json:"i"`
	Diff map[string]any `json:"diff"`
}

type dropIndexPayload struct {
	Name string `json:"name"`
}
