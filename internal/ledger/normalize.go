package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultRate is applied when an hourly rate is absent or unparsable.
const DefaultRate = 15.00

// Normalize maps one uploaded row with unknown header dialect onto a
// canonical Entry. It never fails: unusable values degrade to empty fields
// and the acceptance filter downstream decides whether the record survives.
func Normalize(row map[string]string, aliases AliasTable) Entry {
	hours := parseDecimal(aliases.Resolve(row, ColTempo))
	minutes := parseMinutes(aliases.Resolve(row, ColTempoMinutos))

	// Derive the missing half of the duration pair. When both are supplied
	// they are trusted as given, even if inconsistent.
	if hours == nil && minutes != nil {
		h := round2(float64(*minutes) / 60)
		hours = &h
	}
	if minutes == nil && hours != nil {
		m := int(math.Round(*hours * 60))
		minutes = &m
	}

	entry := Entry{
		Date:        strings.TrimSpace(aliases.Resolve(row, ColData)),
		StartTime:   NormalizeTime(aliases.Resolve(row, ColHoraInicio)),
		EndTime:     NormalizeTime(aliases.Resolve(row, ColHoraFim)),
		Client:      strings.TrimSpace(aliases.Resolve(row, ColCliente)),
		TaxID:       strings.TrimSpace(aliases.Resolve(row, ColNIF)),
		Entity:      strings.TrimSpace(aliases.Resolve(row, ColEntidade)),
		Description: strings.TrimSpace(aliases.Resolve(row, ColDescricao)),
		Rate:        formatRate(aliases.Resolve(row, ColPrecoHora)),
		Exported:    NormalizeExported(aliases.Resolve(row, ColExportado)),
	}
	if hours != nil {
		entry.Hours = fmt.Sprintf("%.2f", *hours)
	}
	if minutes != nil {
		entry.Minutes = strconv.Itoa(*minutes)
	}
	return entry
}

// Complete reports whether the entry carries the fields required for import:
// date, client and tax id.
func (e Entry) Complete() bool {
	return e.Date != "" && e.Client != "" && e.TaxID != ""
}

// NormalizeTime canonicalises a clock value to "HH:MM". Numeric hour/minute
// pairs are re-padded ("9:5" becomes "09:05"), a 4-digit compact form gets a
// colon inserted, and anything unrecognised passes through unchanged.
func NormalizeTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if h, m, ok := strings.Cut(s, ":"); ok {
		if isDigits(h) && isDigits(m) {
			return pad2(h) + ":" + pad2(m)
		}
		return s
	}
	if len(s) == 4 && isDigits(s) {
		return s[:2] + ":" + s[2:]
	}
	return s
}

// NormalizeExported folds the accepted truthy spellings onto the persisted
// tokens.
func NormalizeExported(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ExportedYes, "true", "1", "yes":
		return ExportedYes
	}
	return ExportedNo
}

// parseDecimal parses a decimal tolerant of comma separators. Unparsable or
// empty input yields nil rather than an error.
func parseDecimal(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseMinutes parses an integer minute count via float truncation, so
// "5.9" yields 5.
func parseMinutes(s string) *int {
	v := parseDecimal(s)
	if v == nil {
		return nil
	}
	m := int(*v)
	return &m
}

func formatRate(s string) string {
	v := parseDecimal(s)
	if v == nil {
		return fmt.Sprintf("%.2f", DefaultRate)
	}
	return fmt.Sprintf("%.2f", *v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
