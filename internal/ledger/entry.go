// Package ledger manages the time-entry ledger: canonical entries, the
// header-dialect normalizer and the CRUD operations over the notas store.
package ledger

import (
	"github.com/nservico/nservico/internal/store"
)

// Column names as persisted in notas.csv. The ID column is a surrogate key
// introduced so deletes no longer have to rely on full-value matching; files
// written before it existed read back with empty IDs.
const (
	ColID           = "ID"
	ColData         = "Data"
	ColHoraInicio   = "HoraInicio"
	ColHoraFim      = "HoraFim"
	ColTempo        = "Tempo"
	ColTempoMinutos = "TempoMinutos"
	ColCliente      = "Cliente"
	ColNIF          = "NIF"
	ColEntidade     = "Entidade"
	ColDescricao    = "Descricao"
	ColPrecoHora    = "PrecoHora"
	ColExportado    = "Exportado"
)

// Columns is the ledger column set in write order.
var Columns = []string{
	ColID, ColData, ColHoraInicio, ColHoraFim, ColTempo, ColTempoMinutos,
	ColCliente, ColNIF, ColEntidade, ColDescricao, ColPrecoHora, ColExportado,
}

// Persisted values of the Exportado flag. The CSV keeps the source locale
// tokens; internally "sim" means exported and anything else means pending.
const (
	ExportedYes = "sim"
	ExportedNo  = "não"
)

// Entry is a time entry in canonical form. Duration fields are kept as their
// persisted string renderings: Hours is a 2-decimal value, Minutes an
// integer, both empty when neither was derivable at ingest.
type Entry struct {
	ID          string
	Date        string
	StartTime   string
	EndTime     string
	Hours       string
	Minutes     string
	Client      string
	TaxID       string
	Entity      string
	Description string
	Rate        string
	Exported    string
}

// Record maps the entry onto ledger columns.
func (e Entry) Record() store.Record {
	return store.Record{
		ColID:           e.ID,
		ColData:         e.Date,
		ColHoraInicio:   e.StartTime,
		ColHoraFim:      e.EndTime,
		ColTempo:        e.Hours,
		ColTempoMinutos: e.Minutes,
		ColCliente:      e.Client,
		ColNIF:          e.TaxID,
		ColEntidade:     e.Entity,
		ColDescricao:    e.Description,
		ColPrecoHora:    e.Rate,
		ColExportado:    e.Exported,
	}
}

// FromRecord builds an Entry from a ledger record.
func FromRecord(r store.Record) Entry {
	return Entry{
		ID:          r[ColID],
		Date:        r[ColData],
		StartTime:   r[ColHoraInicio],
		EndTime:     r[ColHoraFim],
		Hours:       r[ColTempo],
		Minutes:     r[ColTempoMinutos],
		Client:      r[ColCliente],
		TaxID:       r[ColNIF],
		Entity:      r[ColEntidade],
		Description: r[ColDescricao],
		Rate:        r[ColPrecoHora],
		Exported:    r[ColExportado],
	}
}

// SameValues reports whether two entries carry identical canonical field
// values. The surrogate ID is deliberately excluded so records imported
// before the ID column existed can still be matched.
func (e Entry) SameValues(o Entry) bool {
	return e.Date == o.Date &&
		e.StartTime == o.StartTime &&
		e.EndTime == o.EndTime &&
		e.Hours == o.Hours &&
		e.Minutes == o.Minutes &&
		e.Client == o.Client &&
		e.TaxID == o.TaxID &&
		e.Entity == o.Entity &&
		e.Description == o.Description &&
		e.Rate == o.Rate &&
		e.Exported == o.Exported
}

// Pending reports whether the entry has not been exported yet.
func (e Entry) Pending() bool {
	return e.Exported != ExportedYes
}
