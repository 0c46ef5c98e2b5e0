// Package export turns pending time entries into the fixed S020 XML
// documents consumed by the downstream ERP.
package export

import (
	"github.com/nservico/nservico/internal/ledger"
)

// Group is one export document's worth of entries, keyed by exact string
// equality on client, tax id and date as stored.
type Group struct {
	Client  string
	TaxID   string
	Date    string
	Entries []ledger.Entry
}

type groupKey struct {
	client, taxID, date string
}

// GroupEntries partitions entries by (client, tax id, date), preserving
// first-seen group order and within-group insertion order.
func GroupEntries(entries []ledger.Entry) []Group {
	index := make(map[groupKey]int)
	var groups []Group
	for _, entry := range entries {
		key := groupKey{entry.Client, entry.TaxID, entry.Date}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Client: entry.Client, TaxID: entry.TaxID, Date: entry.Date})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}
	return groups
}
