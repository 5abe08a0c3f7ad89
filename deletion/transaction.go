package deletion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"imagedup/imageprocessor"
	"imagedup/logging"
	"imagedup/types"
)

// State is the run-level phase of a deletion transaction.
type State string

const (
	StateInit      State = "init"
	StateBackingUp State = "backing_up"
	StateDeleting  State = "deleting"
	StateComplete  State = "complete"
	StateAborted   State = "aborted"
)

// Transaction executes one operator-approved deletion run. Every
// requested file is copied into a fresh backup set and digest-verified
// before any original is removed; a file whose backup cannot be
// verified is never deleted.
type Transaction struct {
	BackupID string

	dir        string
	sourceRoot string
	maxWorkers int
	state      State

	mu       sync.Mutex
	manifest *types.BackupManifest
	reserved map[string]bool
}

// ApplyResult summarizes one apply-deletions run for the exit code and
// the end-of-run report.
type ApplyResult struct {
	Requested int
	Deleted   int
	Skipped   int // requested paths that vanished before the run
	Failed    int // verification or I/O failures
}

// Begin creates the backup directory for a new transaction and persists
// an empty manifest. Failure here is catastrophic: with no backup
// directory there is nothing safe the run could do.
func Begin(backupRoot, pattern, sourceRoot string, maxWorkers int) (*Transaction, error) {
	backupID := time.Now().Format(pattern)
	dir := filepath.Join(backupRoot, backupID)

	if err := os.MkdirAll(filepath.Join(dir, filesDirName), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create backup directory %s: %v", dir, err)
	}

	t := &Transaction{
		BackupID:   backupID,
		dir:        dir,
		sourceRoot: sourceRoot,
		maxWorkers: maxWorkers,
		state:      StateInit,
		manifest: &types.BackupManifest{
			BackupID:  backupID,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Entries:   []types.BackupEntry{},
		},
		reserved: make(map[string]bool),
	}
	if err := saveManifest(dir, t.manifest); err != nil {
		t.state = StateAborted
		return nil, err
	}
	return t, nil
}

// State returns the transaction's current phase
func (t *Transaction) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Dir returns the backup set directory of this transaction
func (t *Transaction) Dir() string {
	return t.dir
}

// Apply processes a deletion request in two phases. Phase one backs up
// and verifies every path, each file independently so one failure never
// blocks the others; phase two deletes only the originals whose backup
// entry was durably recorded with a matching digest. An interrupt
// between the phases leaves extra backups, never a lost file.
func (t *Transaction) Apply(request *types.DeletionRequest) (*ApplyResult, error) {
	result := &ApplyResult{Requested: len(request.Files)}

	t.mu.Lock()
	t.state = StateBackingUp
	t.mu.Unlock()

	verified := make([]types.BackupEntry, 0, len(request.Files))

	// A path listed twice would back itself up twice and then fail the
	// second delete; only the first occurrence is acted on
	seen := make(map[string]bool, len(request.Files))
	paths := make([]string, 0, len(request.Files))
	for _, path := range request.Files {
		if seen[path] {
			result.Skipped++
			t.logEntry(path, types.StatusFailed, "duplicate request entry")
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}

	maxWorkers := t.maxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxWorkers)

	for _, path := range paths {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(path string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			entry, reason, err := t.backupOne(path)
			if err != nil {
				t.mu.Lock()
				if reason == types.ReasonStaleSelection {
					result.Skipped++
				} else {
					result.Failed++
				}
				t.mu.Unlock()
				t.logEntry(path, types.StatusFailed, reason+": "+err.Error())
				logging.LogFileAction("BACKUP", path, err.Error())
				return
			}

			t.mu.Lock()
			t.manifest.Entries = append(t.manifest.Entries, entry)
			persistErr := saveManifest(t.dir, t.manifest)
			if persistErr == nil {
				verified = append(verified, entry)
			} else {
				result.Failed++
			}
			t.mu.Unlock()

			if persistErr != nil {
				// Without a durable manifest entry the file must not be
				// deleted; its backup copy stays behind harmlessly
				t.logEntry(path, types.StatusFailed, types.ReasonIOFailure+": "+persistErr.Error())
				logging.LogFileAction("BACKUP", path, persistErr.Error())
				return
			}

			t.logEntry(path, types.StatusBackedUp, "")
			logging.LogFileAction("BACKUP", path, "")
		}(path)
	}
	wg.Wait()

	t.mu.Lock()
	t.state = StateDeleting
	t.mu.Unlock()

	for _, entry := range verified {
		if err := os.Remove(entry.OriginalPath); err != nil {
			result.Failed++
			t.logEntry(entry.OriginalPath, types.StatusFailed, types.ReasonIOFailure+": "+err.Error())
			logging.LogFileAction("DELETE", entry.OriginalPath, err.Error())
			continue
		}
		result.Deleted++
		t.logEntry(entry.OriginalPath, types.StatusDeleted, "")
		logging.LogFileAction("DELETE", entry.OriginalPath, "")
	}

	t.mu.Lock()
	t.state = StateComplete
	t.mu.Unlock()

	return result, nil
}

// backupOne validates one requested path, copies it into the backup set
// and verifies the copy's digest against the source bytes. The returned
// reason classifies the failure for the audit log.
func (t *Transaction) backupOne(path string) (types.BackupEntry, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		// The selection was generated against an older filesystem state
		return types.BackupEntry{}, types.ReasonStaleSelection, fmt.Errorf("file no longer exists: %v", err)
	}
	if info.IsDir() {
		return types.BackupEntry{}, types.ReasonStaleSelection, fmt.Errorf("path is a directory")
	}

	backupPath := filepath.Join(t.dir, filesDirName, t.reserveBackupPath(t.backupRelPath(path)))
	if err := os.MkdirAll(filepath.Dir(backupPath), 0o755); err != nil {
		return types.BackupEntry{}, types.ReasonIOFailure, fmt.Errorf("cannot create backup subdirectory: %v", err)
	}

	size, sourceDigest, err := copyWithDigest(path, backupPath)
	if err != nil {
		os.Remove(backupPath)
		return types.BackupEntry{}, types.ReasonIOFailure, err
	}

	// Re-read the copy from disk; only a bit-identical backup clears
	// the original for deletion
	backupDigest, err := imageprocessor.ComputeFileDigest(backupPath)
	if err != nil {
		os.Remove(backupPath)
		return types.BackupEntry{}, types.ReasonIOFailure, fmt.Errorf("cannot verify backup copy: %v", err)
	}
	if backupDigest != sourceDigest {
		os.Remove(backupPath)
		return types.BackupEntry{}, types.ReasonBackupVerification,
			fmt.Errorf("backup digest mismatch: source %s, copy %s", sourceDigest, backupDigest)
	}

	return types.BackupEntry{
		OriginalPath: path,
		BackupPath:   backupPath,
		Size:         size,
		Digest:       sourceDigest,
	}, "", nil
}

// backupRelPath maps an original path to its location inside the backup
// set, preserving enough structure to disambiguate same-named files
// from different source directories.
func (t *Transaction) backupRelPath(path string) string {
	if t.sourceRoot != "" {
		if rel, err := filepath.Rel(t.sourceRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	// Outside the source root: mirror the sanitized absolute path under
	// a separate subtree, so it can never collide with an in-root file
	// whose relative path spells the same directories
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	rel := strings.TrimLeft(filepath.ToSlash(abs), "/")
	rel = strings.ReplaceAll(rel, ":", "_")
	return filepath.Join(absDirName, filepath.FromSlash(rel))
}

// reserveBackupPath claims a destination inside the backup set. When
// another entry of this run already claimed the same relative path, a
// numeric suffix is appended; a copy must never truncate a previously
// verified backup.
func (t *Transaction) reserveBackupPath(rel string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	candidate := rel
	for n := 1; t.reserved[candidate]; n++ {
		candidate = fmt.Sprintf("%s.%d", rel, n)
	}
	t.reserved[candidate] = true
	return candidate
}

// logEntry appends one audit entry; log I/O problems are reported to
// the debug log but never fail the file's own step retroactively.
func (t *Transaction) logEntry(path, status, detail string) {
	entry := types.DeletionLogEntry{
		BackupID:    t.BackupID,
		Path:        path,
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		ErrorDetail: detail,
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := appendLogEntry(t.dir, entry); err != nil {
		logging.LogError("cannot write deletion log entry for %s: %v", path, err)
	}
}

// copyWithDigest copies src to dst and returns the byte count and the
// SHA-256 digest of the bytes that were read from the source.
func copyWithDigest(src, dst string) (int64, string, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, "", fmt.Errorf("cannot open %s: %v", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, "", fmt.Errorf("cannot create %s: %v", dst, err)
	}

	h := sha256.New()
	size, err := io.Copy(out, io.TeeReader(in, h))
	if err != nil {
		out.Close()
		return 0, "", fmt.Errorf("cannot copy %s: %v", src, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return 0, "", fmt.Errorf("cannot sync %s: %v", dst, err)
	}
	if err := out.Close(); err != nil {
		return 0, "", fmt.Errorf("cannot close %s: %v", dst, err)
	}

	return size, hex.EncodeToString(h.Sum(nil)), nil
}
