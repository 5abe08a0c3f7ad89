package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"imagedup/catalog"
	"imagedup/config"
	"imagedup/database"
	"imagedup/deletion"
	"imagedup/grouping"
	"imagedup/logging"
	"imagedup/results"
	"imagedup/scanner"
	"imagedup/signalhandler"
	"imagedup/types"
	"imagedup/utils"
)

func main() {
	// Set up proper signal handling
	signalhandler.SetupHandler()

	// Set the optimal number of CPUs to use
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	command, hasCommand := args["command"]
	if !hasCommand {
		utils.PrintUsage()
		os.Exit(types.ExitFailure)
	}

	// Layer the configuration: defaults, then config file, then flags
	cfg, err := config.LoadConfig(args["config"])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(types.ExitFailure)
	}
	for _, warning := range cfg.ApplyFlags(args) {
		fmt.Printf("Warning: %s\n", warning)
	}

	// Setup debug logging if enabled
	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
		if err := logging.SetupLogger(cfg.LogPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", cfg.LogPath)
		}
	}

	switch command {
	case "scan":
		os.Exit(handleScanCommand(cfg, debugMode))
	case "apply-deletions":
		os.Exit(handleApplyDeletionsCommand(cfg, args))
	case "restore":
		os.Exit(handleRestoreCommand(cfg, args))
	case "list-backups":
		os.Exit(handleListBackupsCommand(cfg))
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		os.Exit(types.ExitFailure)
	}
}

// handleScanCommand runs the full detection pipeline: enumerate, hash,
// group, write the results artifact.
func handleScanCommand(cfg *config.Config, debugMode bool) int {
	if cfg.SourceRoot == "" {
		fmt.Println("Error: Missing folder path (use --folder=PATH)")
		utils.PrintUsage()
		return types.ExitFailure
	}

	// Verify folder path exists and is accessible
	folderInfo, err := os.Stat(cfg.SourceRoot)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("Error: Folder path does not exist: %s\n", cfg.SourceRoot)
		} else {
			fmt.Printf("Error: Cannot access folder path: %s (%v)\n", cfg.SourceRoot, err)
		}
		return types.ExitFailure
	}
	if !folderInfo.IsDir() {
		fmt.Printf("Error: Path is not a directory: %s\n", cfg.SourceRoot)
		return types.ExitFailure
	}

	startTime := time.Now()

	// Initialize the catalog database with retry logic
	var db *sql.DB
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		db, err = database.InitDatabase(cfg.DatabasePath)
		if err == nil {
			break
		}
		if i < maxRetries-1 {
			log.Printf("Error initializing database (attempt %d/%d): %v - retrying...",
				i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		} else {
			fmt.Printf("Error initializing database after %d attempts: %v\n", maxRetries, err)
			return types.ExitFailure
		}
	}
	defer db.Close()

	// Each run is a fresh full scan
	if err := database.ResetCatalog(db); err != nil {
		fmt.Printf("Error: %v\n", err)
		return types.ExitFailure
	}

	// Enumerate candidate files
	cat := catalog.NewCatalog(cfg.SourceRoot, cfg.Extensions)
	entries, err := cat.Enumerate()
	if err != nil {
		fmt.Printf("Error scanning folder: %v\n", err)
		return types.ExitFailure
	}

	fmt.Printf("Starting duplicate detection...\n")
	fmt.Printf("Total image files to process: %d\n", len(entries))
	fmt.Printf("Similarity threshold: %.2f (Hamming cutoff %d of %d bits)\n",
		cfg.Threshold, grouping.HammingCutoff(cfg.Threshold), 64)

	// Hash everything in batches over the worker pool
	scanOptions := scanner.ScanOptions{
		FolderPath: cfg.SourceRoot,
		BatchSize:  cfg.BatchSize,
		MaxWorkers: workerCount(cfg),
		DebugMode:  debugMode,
	}
	records := scanner.HashCatalog(db, entries, scanOptions)
	scanner.PrintCompletionStats(records, startTime, scanOptions)

	// Exact groups first, so their members are excluded from
	// similarity clustering
	exactGroups := grouping.BuildExactGroups(records)
	similarGroups := grouping.BuildSimilarGroups(records, exactGroups, cfg.Threshold)

	inaccessible := 0
	for _, r := range records {
		if !r.Accessible {
			inaccessible++
		}
	}

	scanResults := &types.ScanResults{
		ScanMetadata: types.ScanMetadata{
			Root:              cfg.SourceRoot,
			TotalScanned:      len(records),
			InaccessibleCount: inaccessible,
			Timestamp:         time.Now().UTC().Format(time.RFC3339),
		},
		ExactGroups:   exactGroups,
		SimilarGroups: similarGroups,
	}
	if err := results.WriteResults(cfg.ResultsPath, scanResults); err != nil {
		fmt.Printf("Error writing results: %v\n", err)
		return types.ExitFailure
	}

	// Print summary statistics
	fmt.Printf("\nScan completed in %v.\n", time.Since(startTime).Round(time.Second))
	fmt.Printf("Results: %s\n", cfg.ResultsPath)
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	if stats, err := database.GetScanStats(db); err == nil && stats != nil {
		fmt.Printf("\nSummary:\n")
		fmt.Printf("- Total images processed: %d\n", stats.TotalImages)
		fmt.Printf("- Inaccessible files: %d\n", stats.ErrorCount)
		fmt.Printf("- Unique image digests: %d\n", stats.UniqueHashes)
	}
	fmt.Printf("- Exact duplicate groups: %d\n", len(exactGroups))
	fmt.Printf("- Similar image groups: %d\n", len(similarGroups))

	if inaccessible > 0 {
		return types.ExitPartialFailure
	}
	if len(exactGroups) == 0 && len(similarGroups) == 0 {
		fmt.Println("\nNo duplicate candidates found.")
		return types.ExitNoCandidates
	}
	return types.ExitOK
}

// handleApplyDeletionsCommand executes an operator-approved deletion
// request with backup-before-delete.
func handleApplyDeletionsCommand(cfg *config.Config, args map[string]string) int {
	requestPath, ok := args["request"]
	if !ok || requestPath == "" {
		fmt.Println("Error: Missing deletion request path (use --request=PATH)")
		utils.PrintUsage()
		return types.ExitFailure
	}

	request, err := results.LoadDeletionRequest(requestPath)
	if err != nil {
		// A selection that cannot be parsed must never be acted on
		fmt.Printf("Error: %v\n", err)
		return types.ExitFailure
	}

	txn, err := deletion.Begin(cfg.BackupRoot, cfg.BackupPattern, cfg.SourceRoot, signalhandler.GetOptimalProcs())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return types.ExitFailure
	}

	fmt.Printf("Processing deletion of %d files...\n", len(request.Files))
	fmt.Printf("Backup directory: %s\n", txn.Dir())

	result, err := txn.Apply(request)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return types.ExitFailure
	}

	fmt.Printf("\nResult:\n")
	fmt.Printf("- Files deleted: %d\n", result.Deleted)
	fmt.Printf("- Stale paths skipped: %d\n", result.Skipped)
	fmt.Printf("- Failures: %d\n", result.Failed)
	fmt.Printf("- Backup id: %s\n", txn.BackupID)

	if result.Skipped > 0 || result.Failed > 0 {
		return types.ExitPartialFailure
	}
	return types.ExitOK
}

// handleRestoreCommand reverses a prior apply-deletions run
func handleRestoreCommand(cfg *config.Config, args map[string]string) int {
	backupID, ok := args["arg"]
	if !ok || backupID == "" {
		fmt.Println("Error: Missing backup id (use: restore BACKUP_ID)")
		utils.PrintUsage()
		return types.ExitFailure
	}

	result, err := deletion.Restore(cfg.BackupRoot, backupID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return types.ExitFailure
	}

	fmt.Printf("Restore complete: %d files restored, %d failed.\n", result.Restored, result.Failed)

	if result.Failed > 0 {
		return types.ExitPartialFailure
	}
	return types.ExitOK
}

// handleListBackupsCommand prints every backup set under the backup root
func handleListBackupsCommand(cfg *config.Config) int {
	manifests, err := deletion.ListBackups(cfg.BackupRoot)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return types.ExitFailure
	}

	if len(manifests) == 0 {
		fmt.Println("No backups found.")
		return types.ExitOK
	}

	fmt.Println("Available backups:")
	for _, m := range manifests {
		fmt.Printf("  %s\n", m.BackupID)
		fmt.Printf("    Created: %s\n", m.CreatedAt)
		fmt.Printf("    Files:   %d\n", len(m.Entries))
	}
	return types.ExitOK
}

// workerCount picks the hashing pool size: configured value if set,
// otherwise the CGO-aware CPU sizing.
func workerCount(cfg *config.Config) int {
	if cfg.MaxWorkers > 0 {
		return cfg.MaxWorkers
	}
	return signalhandler.GetOptimalProcs()
}
