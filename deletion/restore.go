package deletion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"imagedup/logging"
	"imagedup/types"
)

// RestoreResult summarizes one restore run.
type RestoreResult struct {
	Restored int
	Failed   int
}

// Restore copies every file of a backup set back to its original
// location. Entries fail independently when an original location is no
// longer writable. Backup copies are never removed, so re-running a
// restore is safe and yields the same filesystem state.
func Restore(backupRoot, backupID string) (*RestoreResult, error) {
	manifest, err := LoadManifest(backupRoot, backupID)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(backupRoot, backupID)
	result := &RestoreResult{}

	for _, entry := range manifest.Entries {
		if err := restoreOne(entry); err != nil {
			result.Failed++
			logRestore(dir, backupID, entry.OriginalPath, types.StatusFailed,
				types.ReasonIOFailure+": "+err.Error())
			logging.LogFileAction("RESTORE", entry.OriginalPath, err.Error())
			continue
		}
		result.Restored++
		logRestore(dir, backupID, entry.OriginalPath, types.StatusRestored, "")
		logging.LogFileAction("RESTORE", entry.OriginalPath, "")
	}

	return result, nil
}

// restoreOne copies one backup file back to its original path
func restoreOne(entry types.BackupEntry) error {
	in, err := os.Open(entry.BackupPath)
	if err != nil {
		return fmt.Errorf("cannot open backup copy %s: %v", entry.BackupPath, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(entry.OriginalPath), 0o755); err != nil {
		return fmt.Errorf("cannot recreate directory for %s: %v", entry.OriginalPath, err)
	}

	out, err := os.Create(entry.OriginalPath)
	if err != nil {
		return fmt.Errorf("cannot write to original location %s: %v", entry.OriginalPath, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("cannot copy back %s: %v", entry.OriginalPath, err)
	}
	return out.Close()
}

// logRestore appends a restore audit entry to the backup set's log
func logRestore(dir, backupID, path, status, detail string) {
	entry := types.DeletionLogEntry{
		BackupID:    backupID,
		Path:        path,
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		ErrorDetail: detail,
	}
	if err := appendLogEntry(dir, entry); err != nil {
		logging.LogError("cannot write restore log entry for %s: %v", path, err)
	}
}
