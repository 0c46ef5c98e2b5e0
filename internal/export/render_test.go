package export_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nservico/nservico/internal/export"
	"github.com/nservico/nservico/internal/ledger"
)

func TestRenderDocumentExact(t *testing.T) {
	g := export.Group{
		Client: "Acme",
		TaxID:  "123456789",
		Date:   "2026-03-01",
		Entries: []ledger.Entry{{
			Date: "2026-03-01", StartTime: "09:30", EndTime: "12:00",
			Hours: "2.50", Minutes: "150", Client: "Acme", TaxID: "123456789",
			Rate: "15.00",
		}},
	}

	want := "<?xml version='1.0' encoding='windows-1252' ?>\n" +
		"<document docID='S020' entityID='N:123456789' retID='s' status='s' trans='s'>\n" +
		"  <docheader>\n" +
		"    <Doc.Serie>S020</Doc.Serie>\n" +
		"    <Data.Docum>2026-03-01</Data.Docum>\n" +
		"  </docheader>\n" +
		"  <docitems>\n" +
		"    <rec>\n" +
		"      <Cod.Codigo>SPICONH</Cod.Codigo>\n" +
		"      <Qtd.Real>2.50</Qtd.Real>\n" +
		"      <Qtd.Med1>0930</Qtd.Med1>\n" +
		"      <Qtd.Med2>1200</Qtd.Med2>\n" +
		"      <Val.UnBru>15.00</Val.UnBru>\n" +
		"      <Div.Obs></Div.Obs>\n" +
		"    </rec>\n" +
		"  </docitems>\n</document>"

	require.Equal(t, want, export.Render(g))
}

func TestRenderEmptyDurationIsZero(t *testing.T) {
	g := export.Group{TaxID: "1", Date: "2026-03-01", Entries: []ledger.Entry{{}}}
	doc := export.Render(g)
	require.Contains(t, doc, "<Qtd.Real>0.00</Qtd.Real>")
	require.Contains(t, doc, "<Val.UnBru>15.00</Val.UnBru>")
}

func TestRenderEscapesDescription(t *testing.T) {
	g := export.Group{TaxID: "1", Date: "2026-03-01", Entries: []ledger.Entry{{
		Description: `a < b & "c" > 'd'`,
	}}}
	doc := export.Render(g)
	require.Contains(t, doc, "<Div.Obs>a &lt; b &amp; &quot;c&quot; &gt; &#x27;d&#x27;</Div.Obs>")

	// The escaped text unescapes back to the original.
	unescape := strings.NewReplacer(
		"&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#x27;", "'", "&amp;", "&",
	)
	start := strings.Index(doc, "<Div.Obs>") + len("<Div.Obs>")
	end := strings.Index(doc, "</Div.Obs>")
	require.Equal(t, `a < b & "c" > 'd'`, unescape.Replace(doc[start:end]))
}

func TestRenderMultipleItems(t *testing.T) {
	g := export.Group{TaxID: "1", Date: "2026-03-01", Entries: []ledger.Entry{
		{Description: "first"}, {Description: "second"},
	}}
	doc := export.Render(g)
	require.Equal(t, 2, strings.Count(doc, "<rec>"))
	require.Less(t, strings.Index(doc, "first"), strings.Index(doc, "second"))
}

func TestEncodeWindows1252(t *testing.T) {
	data, err := export.EncodeWindows1252("Olá €")
	require.NoError(t, err)
	require.Equal(t, []byte{'O', 'l', 0xE1, ' ', 0x80}, data)
}

func TestEncodeWindows1252Unsupported(t *testing.T) {
	_, err := export.EncodeWindows1252("reunião → fecho")
	require.Error(t, err)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"João & Sons, Lda.":  "Joao_Sons_Lda",
		"  Acme  ":           "Acme",
		"Café-Pastelaria 21": "Cafe_Pastelaria_21",
		"___":                "",
		"Ñandú":              "Nandu",
	}
	for in, want := range cases {
		require.Equal(t, want, export.Slugify(in), "input %q", in)
	}
}
