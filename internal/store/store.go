// Package store implements the embedded record store backing the protocol
// database: an insertion-ordered map from string keys to string-keyed
// records, loaded wholesale from a single JSON file and dumped wholesale on
// save. There is no per-write commit and no cross-process locking.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	ErrDuplicateKey = errors.New("duplicate key")
	ErrKeyNotFound  = errors.New("key not found")
	ErrMissingField = errors.New("missing field")

	// ErrCorruptState marks a backing file that could not be parsed. Load
	// recovers by returning an empty store; the error is reported so the
	// caller can warn instead of silently dropping history.
	ErrCorruptState = errors.New("corrupt protocol file")
)

// Store is an in-memory record store. Keys iterate in insertion order.
// Not safe for concurrent use.
type Store struct {
	order   []string
	records map[string]map[string]any
}

func New() *Store {
	return &Store{records: make(map[string]map[string]any)}
}

// Create adds a new empty record under key.
func (s *Store) Create(key string) error {
	if _, ok := s.records[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	s.records[key] = make(map[string]any)
	s.order = append(s.order, key)
	return nil
}

// Has reports whether a record exists under key.
func (s *Store) Has(key string) bool {
	_, ok := s.records[key]
	return ok
}

// Get returns the record stored under key, or ok=false if absent. The
// returned map is the live record, not a copy.
func (s *Store) Get(key string) (map[string]any, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

// GetField returns a single field of a record.
func (s *Store) GetField(key, field string) (any, error) {
	rec, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	val, ok := rec[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q.%q", ErrMissingField, key, field)
	}
	return val, nil
}

// HasField reports whether a record has the given field.
func (s *Store) HasField(key, field string) bool {
	rec, ok := s.records[key]
	if !ok {
		return false
	}
	_, ok = rec[field]
	return ok
}

// SetField upserts a field of an existing record.
func (s *Store) SetField(key, field string, value any) error {
	rec, ok := s.records[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	rec[field] = value
	return nil
}

// Remove deletes the record stored under key.
func (s *Store) Remove(key string) error {
	if _, ok := s.records[key]; !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	delete(s.records, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Keys returns all record keys in insertion order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.order)
}

// MarshalJSON serializes the store as a single JSON object whose keys
// appear in insertion order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		rec, err := json.Marshal(s.records[key])
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %q: %w", key, err)
		}
		buf.Write(rec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rebuilds the store from a JSON object, recovering the key
// order from the token stream since stdlib maps do not preserve it.
func (s *Store) UnmarshalJSON(data []byte) error {
	s.order = nil
	s.records = make(map[string]map[string]any)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", tok)
		}
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("failed to decode record %q: %w", key, err)
		}
		if rec == nil {
			rec = make(map[string]any)
		}
		s.records[key] = rec
		s.order = append(s.order, key)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Load reconstructs a store from the file at path. A missing file yields an
// empty store with no error (expected first-run state). An unreadable or
// unparseable file also yields a usable empty store, together with an error
// wrapping ErrCorruptState so the caller can surface a warning.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return New(), fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return New(), nil
	}
	s := New()
	if err := s.UnmarshalJSON(data); err != nil {
		return New(), fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return s, nil
}

// Save serializes the entire store to path. The file is written to a
// temporary sibling and renamed into place so a crash mid-write cannot
// leave a truncated protocol file behind.
func (s *Store) Save(path string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to serialize store: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".protocol-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
