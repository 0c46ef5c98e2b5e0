// Package roster manages the client roster: a flat list of billable clients
// replaced wholesale from uploads.
package roster

import (
	"context"

	"github.com/nservico/nservico/internal/store"
)

// Column names as persisted in clientes.csv.
const (
	ColCliente  = "Cliente"
	ColNIF      = "NIF"
	ColEntidade = "Entidade"
)

// Columns is the roster column set in write order.
var Columns = []string{ColCliente, ColNIF, ColEntidade}

// Service provides the roster operations.
type Service struct {
	store *store.Store
}

// NewService constructs a roster service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// List returns every client record in file order. Duplicates are kept as
// uploaded; consumers decide how to treat them.
func (s *Service) List(ctx context.Context) ([]store.Record, error) {
	return s.store.ReadAll()
}

// Replace overwrites the roster with the uploaded file verbatim.
func (s *Service) Replace(ctx context.Context, data []byte) error {
	return s.store.ReplaceRaw(data)
}

// Clear resets the roster to a header-only file.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.WriteAll(nil)
}
