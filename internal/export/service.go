package export

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nservico/nservico/internal/ledger"
	"github.com/nservico/nservico/internal/platform/httpx"
	"github.com/nservico/nservico/internal/store"
)

var errNothingPending = errors.New("nothing to export")

// Config carries the orchestrator's environment.
type Config struct {
	// ResultsDir is where generated XML and zip artifacts land.
	ResultsDir string
	// URLPrefix is the public path under which ResultsDir is served.
	URLPrefix string
	// Clock defaults to time.Now; tests pin it for stable archive names.
	Clock func() time.Time
}

// Result describes one export run. A zero Exported count means there was
// nothing to export and no file was written.
type Result struct {
	File      string
	Generated []string
	Exported  int
}

// Service orchestrates the export pipeline: filter pending, group, render,
// persist, mark.
type Service struct {
	store *store.Store
	cfg   Config
}

// NewService constructs an export service over the ledger store.
func NewService(st *store.Store, cfg Config) *Service {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{store: st, cfg: cfg}
}

// Preview renders the documents for currently-pending entries and returns
// them concatenated, without touching storage.
func (s *Service) Preview(ctx context.Context) (string, error) {
	records, err := s.store.ReadAll()
	if err != nil {
		return "", err
	}
	groups := GroupEntries(pendingEntries(records))
	docs := make([]string, len(groups))
	for i, g := range groups {
		docs[i] = Render(g)
	}
	return strings.Join(docs, "\n\n"), nil
}

// Export writes one XML file per pending group and updates the ledger: with
// clear true the pending entries are removed, otherwise they are marked
// exported in place. The ledger is rewritten only after every document has
// been written, so no entry is ever marked exported without its file on
// disk. Two or more documents are additionally bundled into a deflate zip.
func (s *Service) Export(ctx context.Context, clear bool) (Result, error) {
	var result Result
	err := s.store.Mutate(func(records []store.Record) ([]store.Record, error) {
		pending := pendingEntries(records)
		if len(pending) == 0 {
			return nil, errNothingPending
		}

		groups := GroupEntries(pending)

		// Render and encode everything up front so an encoding failure
		// aborts before the first disk write.
		type document struct {
			name string
			data []byte
		}
		docs := make([]document, len(groups))
		for i, g := range groups {
			encoded, err := EncodeWindows1252(Render(g))
			if err != nil {
				return nil, fmt.Errorf("%w: document %s: %v", httpx.ErrValidation, fileName(g), err)
			}
			docs[i] = document{name: fileName(g), data: encoded}
		}

		for _, doc := range docs {
			if err := os.WriteFile(filepath.Join(s.cfg.ResultsDir, doc.name), doc.data, 0o644); err != nil {
				return nil, fmt.Errorf("export: write %s: %w", doc.name, err)
			}
			result.Generated = append(result.Generated, doc.name)
		}
		result.Exported = len(pending)

		if clear {
			kept := make([]store.Record, 0, len(records))
			for _, record := range records {
				if !ledger.FromRecord(record).Pending() {
					kept = append(kept, record)
				}
			}
			return kept, nil
		}
		for _, record := range records {
			if ledger.FromRecord(record).Pending() {
				record[ledger.ColExportado] = ledger.ExportedYes
			}
		}
		return records, nil
	})
	if errors.Is(err, errNothingPending) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, err
	}

	if len(result.Generated) == 1 {
		result.File = s.cfg.URLPrefix + "/" + result.Generated[0]
		return result, nil
	}

	zipName := fmt.Sprintf("export_%s.zip", s.cfg.Clock().Format("20060102_1504"))
	if err := s.writeZip(zipName, result.Generated); err != nil {
		return Result{}, err
	}
	result.File = s.cfg.URLPrefix + "/" + zipName
	return result, nil
}

func (s *Service) writeZip(name string, files []string) error {
	f, err := os.Create(filepath.Join(s.cfg.ResultsDir, name))
	if err != nil {
		return fmt.Errorf("export: create %s: %w", name, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, member := range files {
		data, err := os.ReadFile(filepath.Join(s.cfg.ResultsDir, member))
		if err != nil {
			return fmt.Errorf("export: read %s: %w", member, err)
		}
		w, err := zw.Create(member)
		if err != nil {
			return fmt.Errorf("export: zip entry %s: %w", member, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("export: zip write %s: %w", member, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: close zip: %w", err)
	}
	return nil
}

func fileName(g Group) string {
	return fmt.Sprintf("%s_%s_%s_%s.xml", ymd(g.Date), docSerie, g.TaxID, Slugify(g.Client))
}

func pendingEntries(records []store.Record) []ledger.Entry {
	var pending []ledger.Entry
	for _, record := range records {
		entry := ledger.FromRecord(record)
		if entry.Pending() {
			pending = append(pending, entry)
		}
	}
	return pending
}
