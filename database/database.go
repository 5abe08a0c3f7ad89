package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"imagedup/imageprocessor"
	"imagedup/types"
)

// InitDatabase initializes and returns a catalog database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create table if it doesn't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		format TEXT,
		width INTEGER,
		height INTEGER,
		scanned_at TEXT,
		modified_at TEXT,
		size INTEGER,
		exact_digest TEXT,
		fingerprint TEXT,
		accessible INTEGER NOT NULL DEFAULT 1,
		fail_reason TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_path ON images(path);
	CREATE INDEX IF NOT EXISTS idx_exact_digest ON images(exact_digest);
	CREATE INDEX IF NOT EXISTS idx_fingerprint ON images(fingerprint);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %v", err)
	}

	return db, nil
}

// ResetCatalog clears previous records so the database reflects exactly
// one fresh full scan (each run is a fresh scan, never incremental).
func ResetCatalog(db *sql.DB) error {
	if _, err := db.Exec("DELETE FROM images"); err != nil {
		return fmt.Errorf("cannot clear catalog: %v", err)
	}
	return nil
}

// StoreImageRecord stores one scanned record in the catalog
func StoreImageRecord(db *sql.DB, record types.ImageRecord) error {
	stmt, err := db.Prepare(`
		INSERT OR REPLACE INTO images (
			path, format, width, height, scanned_at, modified_at, size,
			exact_digest, fingerprint, accessible, fail_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %v", record.Path, err)
	}
	defer stmt.Close()

	fingerprint := ""
	if record.HasFingerprint {
		fingerprint = imageprocessor.FormatFingerprint(record.Fingerprint)
	}
	accessible := 0
	if record.Accessible {
		accessible = 1
	}

	_, err = stmt.Exec(
		record.Path,
		record.Format,
		record.Width,
		record.Height,
		time.Now().UTC().Format(time.RFC3339),
		record.ModifiedAt,
		record.SizeBytes,
		record.ExactDigest,
		fingerprint,
		accessible,
		record.FailReason,
	)
	if err != nil {
		return fmt.Errorf("cannot insert data for %s: %v", record.Path, err)
	}

	return nil
}

// ScanStats contains statistics from a scan operation
type ScanStats struct {
	TotalImages  int
	ErrorCount   int
	UniqueHashes int
}

// GetScanStats retrieves statistics about scanned images
func GetScanStats(db *sql.DB) (*ScanStats, error) {
	var stats ScanStats

	err := db.QueryRow("SELECT COUNT(*) FROM images").Scan(&stats.TotalImages)
	if err != nil {
		return nil, fmt.Errorf("failed to get total images: %v", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM images WHERE accessible = 0").Scan(&stats.ErrorCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get error count: %v", err)
	}

	err = db.QueryRow("SELECT COUNT(DISTINCT exact_digest) FROM images WHERE accessible = 1").Scan(&stats.UniqueHashes)
	if err != nil {
		return nil, fmt.Errorf("failed to get unique hashes: %v", err)
	}

	return &stats, nil
}
