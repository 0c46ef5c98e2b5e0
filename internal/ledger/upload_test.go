package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nservico/nservico/internal/ledger"
)

func TestParseUploadCSV(t *testing.T) {
	data := []byte("Data,Cliente,NIF\n2026-03-01,Acme,123\n\n2026-03-02,Beta,456\n")
	rows, err := ledger.ParseUpload("notas.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Acme", rows[0]["Cliente"])
	require.Equal(t, "456", rows[1]["NIF"])
}

func TestParseUploadCSVSemicolon(t *testing.T) {
	data := []byte("Data;Cliente;NIF;Tempo\n2026-03-01;Acme;123;2,5\n")
	rows, err := ledger.ParseUpload("export.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "2,5", rows[0]["Tempo"])
}

func TestParseUploadCSVShortRow(t *testing.T) {
	data := []byte("Data,Cliente,NIF\n2026-03-01,Acme\n")
	rows, err := ledger.ParseUpload("notas.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "", rows[0]["NIF"])
}

func TestParseUploadXLSX(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]string{"Data", "Cliente", "NIF"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]string{"2026-03-01", "Acme", "123"}))
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ledger.ParseUpload("notas.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Acme", rows[0]["Cliente"])
	require.Equal(t, "123", rows[0]["NIF"])
}

func TestParseUploadBadXLSX(t *testing.T) {
	_, err := ledger.ParseUpload("broken.xlsx", []byte("not a workbook"))
	require.Error(t, err)
}
