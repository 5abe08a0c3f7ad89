package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Commands recognized on the command line.
var knownCommands = []string{"scan", "apply-deletions", "restore", "list-backups"}

// ParseArguments converts command-line arguments into a map of flags and
// values. The command name and any positional argument following it are
// stored under "command" and "arg".
func ParseArguments() map[string]string {
	args := make(map[string]string)

	// First, identify the command
	commandIndex := -1
	for i := 1; i < len(os.Args); i++ {
		for _, c := range knownCommands {
			if os.Args[i] == c {
				args["command"] = c
				commandIndex = i
				break
			}
		}
		if commandIndex != -1 {
			break
		}
	}

	// Process all arguments, skipping the command
	for i := 1; i < len(os.Args); i++ {
		if i == commandIndex {
			continue
		}

		arg := os.Args[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") {
				args[flagName] = "true"
			} else {
				// The next argument is the value
				args[flagName] = os.Args[i+1]
				i++ // Skip the value in the next iteration
			}
			continue
		}

		// Positional argument after the command (e.g. the backup id for restore)
		if commandIndex != -1 && i == commandIndex+1 {
			args["arg"] = arg
		}
	}

	return args
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s scan --folder=PATH [--threshold=VALUE] [--results=PATH] [--database=PATH] [--config=PATH] [--batch-size=N] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s apply-deletions --request=PATH [--backup-root=PATH] [--config=PATH] [--debug]\n", os.Args[0])
	fmt.Printf("  %s restore BACKUP_ID [--backup-root=PATH] [--config=PATH] [--debug]\n", os.Args[0])
	fmt.Printf("  %s list-backups [--backup-root=PATH] [--config=PATH]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --folder      : Path to folder containing images to scan\n")
	fmt.Printf("  --threshold   : Similarity threshold (0.0-1.0, 1.0 = identical, default: 0.85)\n")
	fmt.Printf("  --results     : Path of the results JSON file (default: duplicate_results.json)\n")
	fmt.Printf("  --database    : Path to the catalog database file (default: imagedup.db)\n")
	fmt.Printf("  --request     : Path to the deletion request JSON produced by the report step\n")
	fmt.Printf("  --backup-root : Directory that holds backup sets (default: current directory)\n")
	fmt.Printf("  --batch-size  : Number of files hashed per batch (default: 100)\n")
	fmt.Printf("  --config      : Path to a YAML config file with the same options\n")
	fmt.Printf("  --debug       : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile     : Specify custom log file path (default: imagedup.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s scan --folder=/path/to/images --threshold=0.9\n", os.Args[0])
	fmt.Printf("  %s apply-deletions --request=delete_request.json\n", os.Args[0])
	fmt.Printf("  %s restore backup_deletions_20250101_120000\n", os.Args[0])
}

// ParseThreshold parses and validates the threshold value from string
func ParseThreshold(thresholdStr string) (float64, error) {
	parsedThreshold, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil || parsedThreshold < 0 || parsedThreshold > 1 {
		return 0.85, fmt.Errorf("invalid threshold value '%s', using default (0.85)", thresholdStr)
	}
	return parsedThreshold, nil
}

// ParseBatchSize parses and validates the hashing batch size from string
func ParseBatchSize(batchStr string) (int, error) {
	n, err := strconv.Atoi(batchStr)
	if err != nil || n < 1 {
		return 100, fmt.Errorf("invalid batch size '%s', using default (100)", batchStr)
	}
	return n, nil
}
