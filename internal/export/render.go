package export

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/nservico/nservico/internal/ledger"
)

// Fixed schema constants expected by the ERP.
const (
	docSerie    = "S020"
	itemCode    = "SPICONH"
	defaultRate = 15.00
)

// Render produces the XML document for one group. The layout is byte-exact:
// the ERP importer matches on exact tags and attribute quoting, so this is
// string templating, not an XML library.
func Render(g Group) string {
	var b strings.Builder
	b.WriteString("<?xml version='1.0' encoding='windows-1252' ?>\n")
	fmt.Fprintf(&b, "<document docID='%s' entityID='N:%s' retID='s' status='s' trans='s'>\n", docSerie, g.TaxID)
	b.WriteString("  <docheader>\n")
	fmt.Fprintf(&b, "    <Doc.Serie>%s</Doc.Serie>\n", docSerie)
	fmt.Fprintf(&b, "    <Data.Docum>%s</Data.Docum>\n", g.Date)
	b.WriteString("  </docheader>\n")
	b.WriteString("  <docitems>\n")
	items := make([]string, len(g.Entries))
	for i, entry := range g.Entries {
		items[i] = renderItem(entry)
	}
	b.WriteString(strings.Join(items, "\n"))
	b.WriteString("\n  </docitems>\n</document>")
	return b.String()
}

func renderItem(entry ledger.Entry) string {
	var b strings.Builder
	b.WriteString("    <rec>\n")
	fmt.Fprintf(&b, "      <Cod.Codigo>%s</Cod.Codigo>\n", itemCode)
	fmt.Fprintf(&b, "      <Qtd.Real>%s</Qtd.Real>\n", renderHours(entry.Hours))
	fmt.Fprintf(&b, "      <Qtd.Med1>%s</Qtd.Med1>\n", stripColon(entry.StartTime))
	fmt.Fprintf(&b, "      <Qtd.Med2>%s</Qtd.Med2>\n", stripColon(entry.EndTime))
	fmt.Fprintf(&b, "      <Val.UnBru>%s</Val.UnBru>\n", renderRate(entry.Rate))
	fmt.Fprintf(&b, "      <Div.Obs>%s</Div.Obs>\n", escapeXML(entry.Description))
	b.WriteString("    </rec>")
	return b.String()
}

// renderHours formats the duration in decimal hours with exactly two
// decimals; empty or unparsable durations render as 0.00.
func renderHours(s string) string {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		v = 0
	}
	return fmt.Sprintf("%.2f", v)
}

func renderRate(s string) string {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		v = defaultRate
	}
	return fmt.Sprintf("%.2f", v)
}

// stripColon turns "09:30" into "0930".
func stripColon(s string) string {
	return strings.ReplaceAll(s, ":", "")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// EncodeWindows1252 encodes the document for the ERP. Runes outside the
// windows-1252 repertoire make the encode fail rather than silently
// mis-encode; the caller aborts the whole export in that case.
func EncodeWindows1252(doc string) ([]byte, error) {
	data, err := charmap.Windows1252.NewEncoder().Bytes([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("export: encode windows-1252: %w", err)
	}
	return data, nil
}
