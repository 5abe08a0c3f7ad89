package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"imagedup/types"
)

// WriteResults serializes the scan results to path. The write is
// atomic (temp file + rename) so an interrupted run never leaves a
// truncated artifact for the report step to trip over.
func WriteResults(path string, results *types.ScanResults) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize results: %v", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cannot write results file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cannot finalize results file: %v", err)
	}
	return nil
}

// LoadResults reads a results artifact back. A file that fails to
// parse is a corrupt artifact and fatal to the caller's run.
func LoadResults(path string) (*types.ScanResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read results file %s: %v", path, err)
	}

	var results types.ScanResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("corrupt results file %s: %v", path, err)
	}
	return &results, nil
}

// LoadDeletionRequest reads the operator's selection list. The file is
// untrusted external input: a parse failure is fatal (proceeding on a
// half-read selection risks mass data loss), while path validation is
// deferred to the deletion transaction, which re-checks every entry.
func LoadDeletionRequest(path string) (*types.DeletionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read deletion request %s: %v", path, err)
	}

	var request types.DeletionRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, fmt.Errorf("corrupt deletion request %s: %v", path, err)
	}
	if len(request.Files) == 0 {
		return nil, fmt.Errorf("deletion request %s lists no files", filepath.Base(path))
	}
	return &request, nil
}
