package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nservico/nservico/internal/store"
)

var testFields = []string{"Cliente", "NIF", "Entidade"}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "clientes.csv"), testFields)
}

func TestReadAllMissingFile(t *testing.T) {
	s := newStore(t)
	records, err := s.ReadAll()
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Append(store.Record{"Cliente": "Acme", "NIF": "123456789", "Entidade": ""}))
	require.NoError(t, s.Append(store.Record{"Cliente": "Beta, Lda.", "NIF": "987654321", "Entidade": "B"}))

	records, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Acme", records[0]["Cliente"])
	require.Equal(t, "Beta, Lda.", records[1]["Cliente"])
	require.Equal(t, "B", records[1]["Entidade"])
}

func TestWriteAllRoundTrip(t *testing.T) {
	s := newStore(t)
	in := []store.Record{
		{"Cliente": "Acme", "NIF": "1", "Entidade": ""},
		{"Cliente": "Acme", "NIF": "1", "Entidade": ""}, // duplicates are kept
	}
	require.NoError(t, s.WriteAll(in))

	out, err := s.ReadAll()
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestWriteAllEmptyKeepsHeader(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.WriteAll(nil))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.Equal(t, "Cliente,NIF,Entidade\n", string(data))

	records, err := s.ReadAll()
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestReadAllShortRows(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("Cliente,NIF,Entidade\nAcme,123\n"), 0o644))

	records, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "123", records[0]["NIF"])
	require.Equal(t, "", records[0]["Entidade"])
}

func TestMutateErrorLeavesFileUntouched(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.WriteAll([]store.Record{{"Cliente": "Acme", "NIF": "1"}}))

	boom := errors.New("boom")
	err := s.Mutate(func(records []store.Record) ([]store.Record, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	records, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestReplaceRaw(t *testing.T) {
	s := newStore(t)
	raw := []byte("Cliente,NIF,Entidade\nGamma,555,\n")
	require.NoError(t, s.ReplaceRaw(raw))

	records, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Gamma", records[0]["Cliente"])
}
