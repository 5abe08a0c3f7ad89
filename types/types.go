package types

// ImageRecord holds everything the scan learned about one candidate file.
// A record is created once per scan and never mutated after hashing.
type ImageRecord struct {
	Path           string `json:"path"`
	SizeBytes      int64  `json:"size_bytes"`
	Format         string `json:"format"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	ModifiedAt     string `json:"modified_at"`
	ExactDigest    string `json:"exact_digest"`
	Fingerprint    uint64 `json:"-"`
	HasFingerprint bool   `json:"-"`
	Accessible     bool   `json:"accessible"`
	FailReason     string `json:"fail_reason,omitempty"`
}

// ExactGroup is a set of files sharing an identical cryptographic digest.
// Groups have at least 2 members by construction.
type ExactGroup struct {
	Digest string   `json:"digest"`
	Files  []string `json:"files"`
}

// SimilarGroup is a single-linkage cluster of perceptually close files.
// Representative is the suggested "keep" candidate.
type SimilarGroup struct {
	Representative string   `json:"representative"`
	Files          []string `json:"files"`
	MaxDistance    int      `json:"max_distance"`
}

// ScanMetadata summarizes one scan run for the interchange artifact.
type ScanMetadata struct {
	Root              string `json:"root"`
	TotalScanned      int    `json:"total_scanned"`
	InaccessibleCount int    `json:"inaccessible_count"`
	Timestamp         string `json:"timestamp"`
}

// ScanResults is the interchange artifact consumed by the external
// report generator. Field names are a contract.
type ScanResults struct {
	ScanMetadata  ScanMetadata   `json:"scan_metadata"`
	ExactGroups   []ExactGroup   `json:"exact_groups"`
	SimilarGroups []SimilarGroup `json:"similar_groups"`
}

// DeletionRequest is the operator-approved selection produced by the
// external report step. It is untrusted input: every path is
// re-validated before any file is touched.
type DeletionRequest struct {
	Files []string `json:"files"`
}

// BackupEntry maps one original file to its verified backup copy.
type BackupEntry struct {
	OriginalPath string `json:"original_path"`
	BackupPath   string `json:"backup_path"`
	Size         int64  `json:"size"`
	Digest       string `json:"digest"`
}

// BackupManifest is the durable record of a backup set. It is persisted
// after every copied file so an interrupted run can still restore.
type BackupManifest struct {
	BackupID  string        `json:"backup_id"`
	CreatedAt string        `json:"created_at"`
	Entries   []BackupEntry `json:"entries"`
}

// Statuses recorded in the deletion log. The log is append-only; an
// entry is never rewritten after the fact.
const (
	StatusBackedUp = "backed_up"
	StatusDeleted  = "deleted"
	StatusFailed   = "failed"
	StatusRestored = "restored"
)

// DeletionLogEntry is one line of the audit trail.
type DeletionLogEntry struct {
	BackupID    string `json:"backup_id"`
	Path        string `json:"path"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// Failure reasons recorded on records and log entries.
const (
	ReasonInaccessible       = "inaccessible_file"
	ReasonStaleSelection     = "stale_selection"
	ReasonBackupVerification = "backup_verification_failed"
	ReasonIOFailure          = "io_failure"
)

// Process exit codes. Nonzero codes distinguish "nothing found" from
// hard failure from a run that completed with per-file skips.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitNoCandidates   = 2
	ExitPartialFailure = 3
)
