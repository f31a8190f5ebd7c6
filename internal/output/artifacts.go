package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
)

// ArtifactWriter persists rendered reports under an output directory. Each
// run gets a fresh ULID so artifacts sort by creation time; a directory lock
// keeps concurrent runs from interleaving writes.
type ArtifactWriter struct {
	dir  string
	id   string
	lock *flock.Flock
}

// NewArtifactWriter prepares the output directory and takes its lock. The
// lock is advisory: it only coordinates tokensweep runs sharing a directory.
func NewArtifactWriter(dir string) (*ArtifactWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, ".tokensweep.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("output dir %s is locked by another run", dir)
	}

	return &ArtifactWriter{
		dir:  dir,
		id:   strings.ToLower(ulid.Make().String()),
		lock: lock,
	}, nil
}

// Close releases the directory lock.
func (a *ArtifactWriter) Close() error {
	return a.lock.Unlock()
}

// WriteText renders the text report to token_rate_report_<id>.txt.
func (a *ArtifactWriter) WriteText(report Report) (string, error) {
	return a.write("txt", func(w io.Writer) error {
		PrintReport(w, report)
		return nil
	})
}

// WriteJSON renders the JSON report to token_rate_report_<id>.json.
func (a *ArtifactWriter) WriteJSON(report Report) (string, error) {
	return a.write("json", func(w io.Writer) error {
		return PrintJSONReport(w, report)
	})
}

// WriteHTML renders the chart report to token_rate_report_<id>.html.
func (a *ArtifactWriter) WriteHTML(report Report) (string, error) {
	return a.write("html", func(w io.Writer) error {
		return GenerateHTMLReport(w, report)
	})
}

func (a *ArtifactWriter) write(ext string, render func(io.Writer) error) (string, error) {
	path := filepath.Join(a.dir, fmt.Sprintf("token_rate_report_%s.%s", a.id, ext))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	if err := render(file); err != nil {
		file.Close()
		return "", fmt.Errorf("render %s report: %w", ext, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}
	return path, nil
}
