package deletion

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"imagedup/types"
)

const (
	manifestFileName = "backup_manifest.json"
	logFileName      = "deletion_log.jsonl"
	filesDirName     = "files"
	absDirName       = "_abs"
)

// saveManifest persists the manifest atomically (temp file + rename) so
// a crash mid-write never corrupts the previously recorded entries.
func saveManifest(dir string, manifest *types.BackupManifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize manifest: %v", err)
	}

	tmp := filepath.Join(dir, manifestFileName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %v", err)
	}
	return os.Rename(tmp, filepath.Join(dir, manifestFileName))
}

// LoadManifest reads the manifest of a backup set. A manifest that
// exists but fails to parse is a corrupt artifact and fatal.
func LoadManifest(backupRoot, backupID string) (*types.BackupManifest, error) {
	path := filepath.Join(backupRoot, backupID, manifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read backup manifest %s: %v", path, err)
	}

	var manifest types.BackupManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("corrupt backup manifest %s: %v", path, err)
	}
	return &manifest, nil
}

// appendLogEntry appends one entry to the audit log. The log is JSON
// lines, one entry per line, and is never rewritten.
func appendLogEntry(dir string, entry types.DeletionLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cannot serialize log entry: %v", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open deletion log: %v", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("cannot append to deletion log: %v", err)
	}
	return nil
}

// ReadLog reads back every audit entry of a backup set, in write order
func ReadLog(backupRoot, backupID string) ([]types.DeletionLogEntry, error) {
	path := filepath.Join(backupRoot, backupID, logFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read deletion log %s: %v", path, err)
	}
	defer f.Close()

	var entries []types.DeletionLogEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry types.DeletionLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("corrupt deletion log %s: %v", path, err)
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cannot scan deletion log %s: %v", path, err)
	}
	return entries, nil
}
