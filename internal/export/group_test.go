package export_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nservico/nservico/internal/export"
	"github.com/nservico/nservico/internal/ledger"
)

func entry(client, taxID, date, desc string) ledger.Entry {
	return ledger.Entry{Client: client, TaxID: taxID, Date: date, Description: desc}
}

func TestGroupEntriesStableOrder(t *testing.T) {
	entries := []ledger.Entry{
		entry("Acme", "1", "2026-03-01", "A"),
		entry("Beta", "2", "2026-03-01", "X"),
		entry("Acme", "1", "2026-03-01", "B"),
		entry("Acme", "1", "2026-03-02", "other day"),
		entry("Acme", "1", "2026-03-01", "C"),
	}

	groups := export.GroupEntries(entries)
	require.Len(t, groups, 3)

	require.Equal(t, "Acme", groups[0].Client)
	require.Equal(t, "2026-03-01", groups[0].Date)
	descs := make([]string, len(groups[0].Entries))
	for i, e := range groups[0].Entries {
		descs[i] = e.Description
	}
	require.Equal(t, []string{"A", "B", "C"}, descs)

	require.Equal(t, "Beta", groups[1].Client)
	require.Equal(t, "2026-03-02", groups[2].Date)
}

func TestGroupEntriesExactKeyEquality(t *testing.T) {
	// Keys compare as stored; no re-normalization at group time.
	entries := []ledger.Entry{
		entry("Acme", "1", "2026-03-01", ""),
		entry("acme", "1", "2026-03-01", ""),
	}
	require.Len(t, export.GroupEntries(entries), 2)
}
