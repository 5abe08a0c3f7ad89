package scanner

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"imagedup/catalog"
	"imagedup/database"
	"imagedup/imageprocessor"
	"imagedup/logging"
	"imagedup/types"
)

// hashFile computes the content hashes for one file. It is a package
// variable so tests can substitute a hasher that does not need OpenCV.
var hashFile = hashFileOnDisk

// HashCatalog hashes every catalog entry and returns one ImageRecord
// per entry, in catalog order. Files are processed in fixed-size
// batches, each batch fanned out over a semaphore-bounded worker pool,
// which caps open file handles and peak memory. A failure on one file
// marks that record inaccessible and never aborts the batch. Records
// are also stored in the catalog database when db is non-nil.
func HashCatalog(db *sql.DB, entries []catalog.FileEntry, options ScanOptions) []types.ImageRecord {
	stats := FileStats{totalFiles: len(entries)}
	for _, e := range entries {
		if !e.Accessible {
			stats.preflagged++
		}
	}

	if options.DebugMode {
		logging.DebugLog("Starting hashing of %d files (%d flagged inaccessible by the catalog)",
			stats.totalFiles, stats.preflagged)
	}

	maxWorkers := options.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	batchSize := options.BatchSize
	if batchSize < 1 {
		batchSize = len(entries)
	}

	records := make([]types.ImageRecord, len(entries))
	resultsChan := make(chan ProcessResult, 100)
	tracker := NewProgressTracker(stats, resultsChan)

	var dbMu sync.Mutex
	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}

		var wg sync.WaitGroup
		semaphore := make(chan struct{}, maxWorkers)

		for i := start; i < end; i++ {
			wg.Add(1)
			// Acquire semaphore
			semaphore <- struct{}{}

			go func(idx int, entry catalog.FileEntry) {
				defer wg.Done()
				defer func() { <-semaphore }() // Release semaphore when done

				record := processEntry(entry)
				records[idx] = record

				if db != nil {
					dbMu.Lock()
					if err := database.StoreImageRecord(db, record); err != nil {
						logging.LogError("cannot store record for %s: %v", record.Path, err)
					}
					dbMu.Unlock()
				}

				result := ProcessResult{Path: entry.Path, Success: record.Accessible}
				if !record.Accessible {
					result.Error = fmt.Errorf("%s", record.FailReason)
				}
				resultsChan <- result
			}(i, entries[i])
		}

		wg.Wait()
	}

	close(resultsChan)
	tracker.Stop()

	return records
}

// processEntry turns one catalog entry into an immutable ImageRecord.
// Each call reads only its own file, so entries hash in parallel with
// no shared mutable state.
func processEntry(entry catalog.FileEntry) types.ImageRecord {
	record := types.ImageRecord{
		Path:       entry.Path,
		SizeBytes:  entry.Size,
		Format:     strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Path)), "."),
		ModifiedAt: entry.ModTime,
	}

	// Entries the catalog already failed to probe are recorded, not hashed
	if entry.FailReason != "" {
		record.FailReason = types.ReasonInaccessible + ": " + entry.FailReason
		return record
	}

	digest, fingerprint, width, height, err := hashFile(entry.Path)
	if err != nil {
		record.FailReason = types.ReasonInaccessible + ": " + err.Error()
		return record
	}

	record.ExactDigest = digest
	record.Fingerprint = fingerprint
	record.HasFingerprint = true
	record.Width = width
	record.Height = height
	record.Accessible = true
	return record
}

// hashFileOnDisk computes the exact digest and perceptual fingerprint
// of a file. A file that cannot be read or decoded yields an error and
// is excluded from both indices.
func hashFileOnDisk(path string) (digest string, fingerprint uint64, width, height int, err error) {
	digest, err = imageprocessor.ComputeFileDigest(path)
	if err != nil {
		return "", 0, 0, 0, err
	}

	img, err := imageprocessor.LoadImage(path)
	if err != nil {
		return "", 0, 0, 0, err
	}
	defer img.Close()

	fingerprint, err = imageprocessor.ComputeFingerprint(img)
	if err != nil {
		return "", 0, 0, 0, err
	}

	return digest, fingerprint, img.Cols(), img.Rows(), nil
}

// PrintCompletionStats displays statistics after the hashing phase
func PrintCompletionStats(records []types.ImageRecord, startTime time.Time, options ScanOptions) {
	elapsed := time.Since(startTime)

	errors := 0
	for _, r := range records {
		if !r.Accessible {
			errors++
		}
	}

	if options.DebugMode {
		logging.DebugLog("Hashing completed in %v. Processed: %d, Errors: %d",
			elapsed, len(records), errors)
	}

	fmt.Println("\nHashing complete.")
	fmt.Printf("Processed %d images in %v.\n", len(records), elapsed.Round(time.Second))

	if errors > 0 {
		fmt.Printf("Encountered %d errors during hashing.\n", errors)
		fmt.Println("Check the log file for details.")
	}
}
