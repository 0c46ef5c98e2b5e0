package ledger

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AliasTable maps each canonical ledger column to the ordered list of header
// spellings accepted on ingest. Resolution takes the first alias present with
// a non-empty value; header comparison is case-insensitive and trimmed.
// Keeping the table data-driven means new dialects are additions to the
// lists, not new branching code.
type AliasTable map[string][]string

// DefaultAliases returns the built-in header dialects: the persisted
// Portuguese names, their accented variants and the common English exports.
func DefaultAliases() AliasTable {
	return AliasTable{
		ColData:         {"Data", "Date", "Dia", "Day"},
		ColHoraInicio:   {"HoraInicio", "Hora Início", "Hora Inicio", "Início", "Inicio", "Start", "Start Time", "StartTime"},
		ColHoraFim:      {"HoraFim", "Hora Fim", "Fim", "End", "End Time", "EndTime"},
		ColTempo:        {"Tempo", "Horas", "Hours", "Duração", "Duracao", "Duration"},
		ColTempoMinutos: {"TempoMinutos", "Minutos", "Minutes", "Mins"},
		ColCliente:      {"Cliente", "Client", "Customer", "Nome", "Name"},
		ColNIF:          {"NIF", "N.I.F.", "Contribuinte", "NIPC", "VAT", "Tax ID", "TaxID"},
		ColEntidade:     {"Entidade", "Entity"},
		ColDescricao:    {"Descricao", "Descrição", "Description", "Obs", "Observações", "Observacoes", "Notas", "Notes"},
		ColPrecoHora:    {"PrecoHora", "Preço Hora", "Preco Hora", "PreçoHora", "Preço", "Preco", "Rate", "Hourly Rate", "HourlyRate", "Valor"},
		ColExportado:    {"Exportado", "Exported"},
	}
}

// LoadAliases overlays extra header spellings from a YAML file onto the
// defaults. The file maps canonical column names to alias lists; extras are
// appended after the built-ins so defaults keep priority. A missing file
// yields the defaults unchanged.
func LoadAliases(path string) (AliasTable, error) {
	table := DefaultAliases()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return table, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: read aliases %s: %w", path, err)
	}

	var extra map[string][]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("ledger: parse aliases %s: %w", path, err)
	}
	for key, names := range extra {
		canonical := canonicalColumn(key)
		if canonical == "" {
			return nil, fmt.Errorf("ledger: aliases %s: unknown column %q", path, key)
		}
		table[canonical] = append(table[canonical], names...)
	}
	return table, nil
}

func canonicalColumn(name string) string {
	for _, col := range Columns {
		if strings.EqualFold(col, name) {
			return col
		}
	}
	return ""
}

// Resolve returns the value of the first alias for the canonical column that
// is present in the row with a non-empty value, or "" when none is.
func (t AliasTable) Resolve(row map[string]string, column string) string {
	for _, alias := range t[column] {
		for header, value := range row {
			if !headerEqual(header, alias) {
				continue
			}
			if strings.TrimSpace(value) != "" {
				return value
			}
		}
	}
	return ""
}

func headerEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
