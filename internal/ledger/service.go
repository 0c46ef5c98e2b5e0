package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nservico/nservico/internal/platform/httpx"
	"github.com/nservico/nservico/internal/store"
)

// Import modes accepted by the bulk upload.
const (
	ModeAppend  = "append"
	ModeReplace = "replace"
)

// ImportResult summarises a bulk import batch.
type ImportResult struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// Service provides business logic over the time-entry ledger.
type Service struct {
	store   *store.Store
	aliases AliasTable
}

// NewService constructs a ledger service.
func NewService(st *store.Store, aliases AliasTable) *Service {
	return &Service{store: st, aliases: aliases}
}

// List returns every ledger record in file order.
func (s *Service) List(ctx context.Context) ([]store.Record, error) {
	return s.store.ReadAll()
}

// Append stores one entry, assigning its surrogate ID.
func (s *Service) Append(ctx context.Context, entry Entry) (Entry, error) {
	entry.ID = uuid.NewString()
	if entry.Exported == "" {
		entry.Exported = ExportedNo
	}
	if err := s.store.Append(entry.Record()); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Delete removes one entry. When the reference carries an ID the match is by
// ID; otherwise it falls back to exact full-value matching, which among
// duplicates removes the first occurrence. No match yields ErrNotFound.
func (s *Service) Delete(ctx context.Context, ref Entry) error {
	return s.store.Mutate(func(records []store.Record) ([]store.Record, error) {
		idx := -1
		for i, record := range records {
			entry := FromRecord(record)
			if ref.ID != "" {
				if entry.ID == ref.ID {
					idx = i
					break
				}
				continue
			}
			if entry.SameValues(ref) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: nota", httpx.ErrNotFound)
		}
		return append(records[:idx], records[idx+1:]...), nil
	})
}

// Import normalizes a batch of uploaded rows and stores the accepted ones.
// Rows missing date, client or tax id after normalization are dropped
// silently; a batch where nothing survives fails as a whole. Mode "replace"
// rewrites the ledger, "append" keeps existing records.
func (s *Service) Import(ctx context.Context, rows []map[string]string, mode string) (ImportResult, error) {
	if mode != ModeAppend && mode != ModeReplace {
		return ImportResult{}, fmt.Errorf("%w: unknown import mode %q", httpx.ErrValidation, mode)
	}

	var result ImportResult
	accepted := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		entry := Normalize(row, s.aliases)
		if !entry.Complete() {
			result.Dropped++
			continue
		}
		entry.ID = uuid.NewString()
		accepted = append(accepted, entry.Record())
		result.Accepted++
	}
	if result.Accepted == 0 {
		return result, fmt.Errorf("%w: no importable rows in batch", httpx.ErrValidation)
	}

	err := s.store.Mutate(func(records []store.Record) ([]store.Record, error) {
		if mode == ModeReplace {
			return accepted, nil
		}
		return append(records, accepted...), nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}
