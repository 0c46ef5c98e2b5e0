package app_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nservico/nservico/internal/app"
	"github.com/nservico/nservico/internal/export"
	"github.com/nservico/nservico/internal/ledger"
	"github.com/nservico/nservico/internal/roster"
	"github.com/nservico/nservico/internal/settings"
	"github.com/nservico/nservico/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	root := t.TempDir()
	resultsDir := filepath.Join(root, "results")
	require.NoError(t, os.MkdirAll(resultsDir, 0o755))

	cfg := &app.Config{
		AppEnv:             "development",
		AppRequestTimeout:  30 * time.Second,
		BasePrefix:         "/nservico",
		CfgDir:             filepath.Join(root, "cfg"),
		DataDir:            filepath.Join(root, "data"),
		ResultsDir:         resultsDir,
		RateLimitPerMinute: 1000,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rosterStore := store.New(cfg.RosterPath(), roster.Columns)
	ledgerStore := store.New(cfg.LedgerPath(), ledger.Columns)
	settingsStore := settings.NewStore(cfg.SettingsPath())

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		RosterHandler: roster.NewHandler(logger, roster.NewService(rosterStore)),
		LedgerHandler: ledger.NewHandler(logger, ledger.NewService(ledgerStore, ledger.DefaultAliases())),
		ExportHandler: export.NewHandler(logger, export.NewService(ledgerStore, export.Config{
			ResultsDir: cfg.ResultsDir,
			URLPrefix:  cfg.ResultsURLPrefix(),
		})),
		SettingsHandler: settings.NewHandler(logger, settingsStore),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, resultsDir
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestNotasAppendAndList(t *testing.T) {
	server, _ := newTestServer(t)

	form := url.Values{
		"Data":       {"2026-03-01"},
		"HoraInicio": {"0930"},
		"HoraFim":    {"12:00"},
		"Tempo":      {"2,5"},
		"Cliente":    {"Acme"},
		"NIF":        {"123456789"},
		"Descricao":  {"reunião"},
	}
	resp, err := http.PostForm(server.URL+"/nservico/api/notas", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	listResp, err := http.Get(server.URL + "/nservico/api/notas")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var payload struct {
		Rows []map[string]string `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&payload))
	require.Len(t, payload.Rows, 1)
	row := payload.Rows[0]
	require.Equal(t, "09:30", row[ledger.ColHoraInicio])
	require.Equal(t, "2.50", row[ledger.ColTempo])
	require.Equal(t, "150", row[ledger.ColTempoMinutos])
	require.Equal(t, ledger.ExportedNo, row[ledger.ColExportado])
	require.NotEmpty(t, row[ledger.ColID])
}

func TestNotasAppendRejectsIncompleteForm(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.PostForm(server.URL+"/nservico/api/notas", url.Values{
		"Data": {"2026-03-01"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClientesListEmpty(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/nservico/api/clientes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Rows []map[string]string `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Empty(t, payload.Rows)
}

func TestSettingsRequireAdminPassword(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/nservico/api/settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/nservico/api/settings", nil)
	require.NoError(t, err)
	req.Header.Set(settings.AdminPasswordHeader, settings.DefaultAdminPassword)
	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authed.Body.Close()
	require.Equal(t, http.StatusOK, authed.StatusCode)

	body, err := io.ReadAll(authed.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `"port":2800`)
	require.NotContains(t, string(body), "password")
}

func TestResultsFileServer(t *testing.T) {
	server, resultsDir := newTestServer(t)

	content := "<document version='2.00'></document>\n"
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "doc.xml"), []byte(content), 0o644))

	resp, err := http.Get(server.URL + "/nservico/results/doc.xml")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, content, string(body))
}

func TestXMLPreviewEmptyLedger(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/nservico/api/xml/preview")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		XML string `json:"xml"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Empty(t, payload.XML)
}

func TestUnknownAPIPathNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/nservico/api/unknown")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
