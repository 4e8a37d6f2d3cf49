package collection

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"

	"github.com/fulldump/labgrid/logger"
)

var (
	ErrClosed        = errors.New("collection is closed")
	ErrRowNotFound   = errors.New("row not found")
	ErrIndexNotFound = errors.New("index not found")
	ErrIndexExists   = errors.New("index already exists")
	ErrIndexConflict = errors.New("index conflict")
)

type Collection struct {
	Filename string
	file     *os.File
	mutex    sync.RWMutex
	rows     []*Row // insertion order
	byID     map[int64]*Row
	indexes  map[string]Index
	defaults map[string]any
	maxID    int64
}

func OpenCollection(filename string) (*Collection, error) {

	f, err := os.OpenFile(filename, os.O_RDONLY|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("open file for read: %w", err)
	}
	defer f.Close()

	c := &Collection{
		Filename: filename,
		byID:     map[int64]*Row{},
		indexes:  map[string]Index{},
	}

	decoder := jsontext.NewDecoder(f)
	for {
		value, err := decoder.ReadValue()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read command: %w", err)
		}
		command := &Command{}
		if err := json2.Unmarshal(value, command); err != nil {
			return nil, fmt.Errorf("decode command: %w", err)
		}
		if err := c.apply(command); err != nil {
			// a bad command is skipped, the rest of the file is still valid
			logger.Get().Warn("replay command", "collection", filename, "command", command.Name, "uuid", command.Uuid, "err", err)
		}
	}

	// todo: investigate O_SYNC
	c.file, err = os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open file for write: %w", err)
	}

	return c, nil
}

func (c *Collection) apply(command *Command) error {
	switch command.Name {
	case CommandInsert:
		_, err := c.addRow(bytes.Clone(command.Payload))
		return err
	case CommandRemove:
		params := removePayload{}
		if err := json2.Unmarshal(command.Payload, &params); err != nil {
			return err
		}
		row, ok := c.byID[params.I]
		if !ok {
			return fmt.Errorf("%w: %d", ErrRowNotFound, params.I)
		}
		return c.removeRow(row)
	case CommandPatch:
		params := patchPayload{}
		if err := json2.Unmarshal(command.Payload, &params); err != nil {
			return err
		}
		row, ok := c.byID[params.I]
		if !ok {
			return fmt.Errorf("%w: %d", ErrRowNotFound, params.I)
		}
		_, err := c.patchRow(row, params.Diff)
		return err
	case CommandIndex:
		options := &IndexOptions{}
		if err := json2.Unmarshal(command.Payload, options); err != nil {
			return err
		}
		return c.createIndex(options)
	case CommandDropIndex:
		params := dropIndexPayload{}
		if err := json2.Unmarshal(command.Payload, &params); err != nil {
			return err
		}
		delete(c.indexes, params.Name)
		return nil
	case CommandSetDefaults:
		defaults := map[string]any{}
		if err := json2.Unmarshal(command.Payload, &defaults); err != nil {
			return err
		}
		c.defaults = defaults
		return nil
	}
	return fmt.Errorf("unknown command '%s'", command.Name)
}

func (c *Collection) persist(name string, payload any) error {
	if c.file == nil {
		return ErrClosed
	}

	payloadBytes, err := json2.Marshal(payload)
	if err != nil {
		return fmt.Errorf("json encode payload: %w", err)
	}

	command := &Command{
		Name:      name,
		Uuid:      uuid.New().String(),
		Timestamp: time.Now().UnixNano(),
		StartByte: 0,
		Payload:   payloadBytes,
	}

	line, err := json2.Marshal(command)
	if err != nil {
		return fmt.Errorf("json encode command: %w", err)
	}
	line = append(line, '\n')

	if _, err := c.file.Write(line); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

// addRow must be called with the write lock held, or during replay.
func (c *Collection) addRow(payload jsontext.Value) (*Row, error) {

	data := map[string]any{}
	if err := json2.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	row := &Row{
		I:       c.maxID + 1,
		Payload: payload,
		Data:    data,
	}

	if err := indexInsert(c.indexes, row); err != nil {
		return nil, err
	}

	c.maxID = row.I
	c.rows = append(c.rows, row)
	c.byID[row.I] = row

	return row, nil
}

// Insert stores item, an object, filling missing fields from the defaults.
func (c *Collection) Insert(item any) (*Row, error) {

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.file == nil {
		return nil, ErrClosed
	}

	data := map[string]any{}
	raw, err := json2.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("json encode item: %w", err)
	}
	if err := json2.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("item must be an object: %w", err)
	}

	for key, value := range c.defaults {
		if _, exists := data[key]; exists {
			continue
		}
		data[key] = defaultValue(value, c.maxID+1)
	}

	payload, err := json2.Marshal(data, json2.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("json encode payload: %w", err)
	}

	row, err := c.addRow(payload)
	if err != nil {
		return nil, err
	}

	if err := c.persist(CommandInsert, jsontext.Value(payload)); err != nil {
		return nil, err
	}

	return row, nil
}

func defaultValue(value any, next int64) any {
	switch value {
	case "uuid()":
		return uuid.NewString()
	case "unixnano()":
		return time.Now().UnixNano()
	case "auto()":
		return next
	}
	return value
}

// SetDefaults sets the values given to missing fields on insert. Special
// values are "uuid()", "unixnano()" and "auto()".
func (c *Collection) SetDefaults(defaults map[string]any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.persist(CommandSetDefaults, defaults); err != nil {
		return err
	}
	c.defaults = maps.Clone(defaults)
	return nil
}

func (c *Collection) Defaults() map[string]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return maps.Clone(c.defaults)
}

func (c *Collection) Remove(row *Row) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.removeRow(row); err != nil {
		return err
	}
	return c.persist(CommandRemove, removePayload{I: row.I})
}

// removeRow accepts stale rows, the current version with the same id is
// removed.
func (c *Collection) removeRow(row *Row) error {
	current, ok := c.byID[row.I]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRowNotFound, row.I)
	}

	if err := indexRemove(c.indexes, current); err != nil {
		return fmt.Errorf("could not free index: %w", err)
	}

	delete(c.byID, current.I)
	i := slices.Index(c.rows, current)
	if i >= 0 {
		c.rows = slices.Delete(c.rows, i, i+1)
	}
	return nil
}

// Patch merges diff into the row: a nil value removes the field, any other
// value replaces it. It returns the patched row.
func (c *Collection) Patch(row *Row, diff map[string]any) (*Row, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	patched, err := c.patchRow(row, diff)
	if err != nil {
		return nil, err
	}
	if err := c.persist(CommandPatch, patchPayload{I: row.I, Diff: diff}); err != nil {
		return nil, err
	}
	return patched, nil
}

func (c *Collection) patchRow(row *Row, diff map[string]any) (*Row, error) {
	current, ok := c.byID[row.I]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRowNotFound, row.I)
	}

	data := maps.Clone(current.Data)
	for key, value := range diff {
		if value == nil {
			delete(data, key)
			continue
		}
		data[key] = value
	}

	payload, err := json2.Marshal(data, json2.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("json encode payload: %w", err)
	}
	normalized := map[string]any{}
	if err := json2.Unmarshal(payload, &normalized); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	patched := &Row{I: current.I, Payload: payload, Data: normalized}

	if err := indexRemove(c.indexes, current); err != nil {
		return nil, fmt.Errorf("index remove: %w", err)
	}
	if err := indexInsert(c.indexes, patched); err != nil {
		// restore the previous version
		indexInsert(c.indexes, current)
		return nil, err
	}

	c.byID[patched.I] = patched
	if i := slices.Index(c.rows, current); i >= 0 {
		c.rows[i] = patched
	}

	return patched, nil
}

// Get returns the row with id i.
func (c *Collection) Get(i int64) (*Row, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	row, ok := c.byID[i]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRowNotFound, i)
	}
	return row, nil
}

// Len is the number of rows.
func (c *Collection) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.rows)
}

// Rows returns a snapshot of every row in insertion order.
func (c *Collection) Rows() []*Row {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return slices.Clone(c.rows)
}

func (c *Collection) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

func (c *Collection) Drop() error {
	err := c.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	err = os.Remove(c.Filename)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	return nil
}
