package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestArtifactWriterWritesAllFormats(t *testing.T) {
	dir := t.TempDir()

	writer, err := NewArtifactWriter(dir)
	if err != nil {
		t.Fatalf("NewArtifactWriter: %v", err)
	}
	defer writer.Close()

	report := sampleReport(false)

	txt, err := writer.WriteText(report)
	if err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	jsonPath, err := writer.WriteJSON(report)
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	htmlPath, err := writer.WriteHTML(report)
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}

	for _, path := range []string{txt, jsonPath, htmlPath} {
		base := filepath.Base(path)
		if !strings.HasPrefix(base, "token_rate_report_") {
			t.Errorf("artifact name = %q, want token_rate_report_ prefix", base)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("stat %s: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("artifact %s is empty", path)
		}
	}

	// All three artifacts share one run id.
	id := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(txt), "token_rate_report_"), ".txt")
	if !strings.Contains(filepath.Base(htmlPath), id) {
		t.Errorf("html artifact %q does not share run id %q", htmlPath, id)
	}
}

func TestArtifactWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outputs")

	writer, err := NewArtifactWriter(dir)
	if err != nil {
		t.Fatalf("NewArtifactWriter: %v", err)
	}
	defer writer.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output dir missing: %v", err)
	}
}

func TestArtifactWriterLocksDirectory(t *testing.T) {
	dir := t.TempDir()

	first, err := NewArtifactWriter(dir)
	if err != nil {
		t.Fatalf("NewArtifactWriter: %v", err)
	}
	defer first.Close()

	if _, err := NewArtifactWriter(dir); err == nil {
		t.Error("second writer acquired a locked directory")
	}
}
