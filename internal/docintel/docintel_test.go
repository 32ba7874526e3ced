package docintel

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLocatePrefersTickerMatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "2025-09-23_AAPL_report.pdf"))
	touch(t, filepath.Join(dir, "2025-09-23_MSFT_report.pdf"))

	loc := NewReportLocator(dir)
	path, err := loc.Locate("MSFT")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if filepath.Base(path) != "2025-09-23_MSFT_report.pdf" {
		t.Fatalf("unexpected report %s", path)
	}
}

func TestLocateFallsBackToFirstReport(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b_report.pdf"))
	touch(t, filepath.Join(dir, "a_report.pdf"))

	loc := NewReportLocator(dir)
	path, err := loc.Locate("ZZZZ")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if filepath.Base(path) != "a_report.pdf" {
		t.Fatalf("expected first report alphabetically, got %s", path)
	}
}

func TestLocateEmptyDirectory(t *testing.T) {
	loc := NewReportLocator(t.TempDir())
	if _, err := loc.Locate("AAPL"); err == nil {
		t.Fatal("expected error when no reports exist")
	}
}

func TestLocateUnconfigured(t *testing.T) {
	loc := NewReportLocator("")
	if _, err := loc.Locate("AAPL"); err == nil {
		t.Fatal("expected error for unconfigured directory")
	}
}

func TestAvailableListsReports(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "one.pdf"))
	touch(t, filepath.Join(dir, "two.pdf"))

	names := NewReportLocator(dir).Available()
	if len(names) != 2 || names[0] != "one.pdf" {
		t.Fatalf("unexpected report listing: %v", names)
	}
}
