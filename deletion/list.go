package deletion

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"imagedup/logging"
	"imagedup/types"
)

// ListBackups returns the manifest of every backup set found under the
// backup root, sorted by backup id (and therefore by creation time,
// given the timestamp-derived naming). Directories without a readable
// manifest are reported to the debug log and skipped.
func ListBackups(backupRoot string) ([]types.BackupManifest, error) {
	entries, err := os.ReadDir(backupRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot read backup root %s: %v", backupRoot, err)
	}

	var manifests []types.BackupManifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(backupRoot, entry.Name(), manifestFileName)); err != nil {
			continue
		}
		manifest, err := LoadManifest(backupRoot, entry.Name())
		if err != nil {
			logging.LogWarning("skipping backup set %s: %v", entry.Name(), err)
			continue
		}
		manifests = append(manifests, *manifest)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].BackupID < manifests[j].BackupID
	})
	return manifests, nil
}
