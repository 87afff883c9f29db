package server

import "os"

// writeFileToDisk is the RollbackBatch write callback: it restores one
// snapshotted file's content to its original path.
func writeFileToDisk(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
