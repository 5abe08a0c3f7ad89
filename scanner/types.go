package scanner

import (
	"sync"
	"time"
)

// ScanOptions defines the options for a hashing run
type ScanOptions struct {
	FolderPath string
	BatchSize  int
	MaxWorkers int
	DebugMode  bool
}

// ProcessResult holds the outcome of hashing one file
type ProcessResult struct {
	Path    string
	Success bool
	Error   error
}

// FileStats tracks information about files to be processed
type FileStats struct {
	totalFiles int
	preflagged int // entries the catalog already marked inaccessible
}

// ProgressTracker tracks progress of the hashing phase
type ProgressTracker struct {
	processed  int
	errors     int
	ticker     *time.Ticker
	done       chan bool
	finished   chan bool
	mu         sync.Mutex
	totalFiles int
}
