// Package store implements the flat CSV record stores backing the roster and
// the time-entry ledger.
package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record is one flat row keyed by column name.
type Record map[string]string

// Store manages a single CSV file with a fixed column set. All operations on
// one Store are serialised through an in-process mutex, so read-modify-write
// cycles performed via Mutate cannot lose concurrent updates from this
// process. Cross-process writers remain unsynchronised.
type Store struct {
	mu     sync.Mutex
	path   string
	fields []string
}

// New returns a Store for the given file path and column set.
func New(path string, fields []string) *Store {
	return &Store{path: path, fields: append([]string(nil), fields...)}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Fields returns the column names in write order.
func (s *Store) Fields() []string { return append([]string(nil), s.fields...) }

// ReadAll returns every record in file order. A missing file yields an empty
// slice, not an error.
func (s *Store) ReadAll() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAllLocked()
}

// WriteAll rewrites the whole file from the given records. An empty slice
// produces a header-only file so downstream readers always find the columns.
func (s *Store) WriteAll(records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAllLocked(records)
}

// Append adds one record to the end of the file, writing the header first
// when the file does not exist yet.
func (s *Store) Append(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	needHeader := os.IsNotExist(statErr)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("store: create directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(s.fields); err != nil {
			return fmt.Errorf("store: write header: %w", err)
		}
	}
	if err := w.Write(s.row(record)); err != nil {
		return fmt.Errorf("store: write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("store: flush: %w", err)
	}
	return nil
}

// ReplaceRaw overwrites the file verbatim with the uploaded bytes.
func (s *Store) ReplaceRaw(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atomicWrite(data)
}

// Mutate runs fn over the current records and persists whatever it returns,
// all under the store lock. When fn returns an error nothing is written.
func (s *Store) Mutate(fn func(records []Record) ([]Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAllLocked()
	if err != nil {
		return err
	}
	mutated, err := fn(records)
	if err != nil {
		return err
	}
	return s.writeAllLocked(mutated)
}

func (s *Store) readAllLocked() ([]Record, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = row[i]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) writeAllLocked(records []Record) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(s.fields); err != nil {
		return fmt.Errorf("store: write header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(s.row(record)); err != nil {
			return fmt.Errorf("store: write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("store: flush: %w", err)
	}
	return s.atomicWrite(buf.Bytes())
}

// atomicWrite writes to a temp file and renames it over the target, so a
// crash mid-write never leaves a truncated store behind.
func (s *Store) atomicWrite(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("store: create directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: rename temp file: %w", err)
	}
	return nil
}

func (s *Store) row(record Record) []string {
	row := make([]string, len(s.fields))
	for i, name := range s.fields {
		row[i] = record[name]
	}
	return row
}
