package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"imagedup/types"
)

func sampleResults() *types.ScanResults {
	return &types.ScanResults{
		ScanMetadata: types.ScanMetadata{
			Root:              "/pics",
			TotalScanned:      4,
			InaccessibleCount: 1,
			Timestamp:         "2026-08-29T10:00:00Z",
		},
		ExactGroups: []types.ExactGroup{
			{Digest: "abc123", Files: []string{"/pics/a.jpg", "/pics/b.jpg"}},
		},
		SimilarGroups: []types.SimilarGroup{
			{Representative: "/pics/c.jpg", Files: []string{"/pics/c.jpg", "/pics/d.jpg"}, MaxDistance: 5},
		},
	}
}

func TestWriteAndLoadResultsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	if err := WriteResults(path, sampleResults()); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}

	loaded, err := LoadResults(path)
	if err != nil {
		t.Fatalf("LoadResults: %v", err)
	}
	if loaded.ScanMetadata.Root != "/pics" || loaded.ScanMetadata.TotalScanned != 4 {
		t.Errorf("metadata lost in round trip: %+v", loaded.ScanMetadata)
	}
	if len(loaded.ExactGroups) != 1 || loaded.ExactGroups[0].Digest != "abc123" {
		t.Errorf("exact groups lost in round trip: %+v", loaded.ExactGroups)
	}
	if len(loaded.SimilarGroups) != 1 || loaded.SimilarGroups[0].MaxDistance != 5 {
		t.Errorf("similar groups lost in round trip: %+v", loaded.SimilarGroups)
	}
}

func TestWriteResultsFieldNames(t *testing.T) {
	// The artifact is read by an external report generator; the JSON
	// key names are a contract, not an implementation detail.
	path := filepath.Join(t.TempDir(), "results.json")
	if err := WriteResults(path, sampleResults()); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	text := string(raw)
	for _, key := range []string{
		`"scan_metadata"`, `"exact_groups"`, `"similar_groups"`,
		`"root"`, `"total_scanned"`, `"inaccessible_count"`, `"timestamp"`,
		`"digest"`, `"files"`, `"representative"`, `"max_distance"`,
	} {
		if !strings.Contains(text, key) {
			t.Errorf("artifact is missing key %s", key)
		}
	}
}

func TestWriteResultsLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	if err := WriteResults(path, sampleResults()); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "results.json" {
		t.Errorf("expected only results.json in %s, found %v", dir, entries)
	}
}

func TestLoadResultsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadResults(path); err == nil {
		t.Fatal("expected error for corrupt results file")
	}
}

func TestLoadDeletionRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delete_request.json")
	if err := os.WriteFile(path, []byte(`{"files": ["/pics/a.jpg", "/pics/b.jpg"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	request, err := LoadDeletionRequest(path)
	if err != nil {
		t.Fatalf("LoadDeletionRequest: %v", err)
	}
	if len(request.Files) != 2 || request.Files[0] != "/pics/a.jpg" {
		t.Errorf("unexpected request contents: %+v", request)
	}
}

func TestLoadDeletionRequestRejectsEmptySelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delete_request.json")
	if err := os.WriteFile(path, []byte(`{"files": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDeletionRequest(path); err == nil {
		t.Fatal("expected error for request with no files")
	}
}

func TestLoadDeletionRequestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delete_request.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDeletionRequest(path); err == nil {
		t.Fatal("expected error for unparseable request")
	}
}

func TestLoadDeletionRequestMissingFile(t *testing.T) {
	if _, err := LoadDeletionRequest(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing request file")
	}
}
