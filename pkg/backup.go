package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BackupFile copies a file about to be rewritten to backupDir, preserving
// its base name. Returns the backup path.
func BackupFile(srcPath, backupDir string) (string, error) {
	destPath := filepath.Join(backupDir, filepath.Base(srcPath))
	if err := copyFile(srcPath, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// copyFile copies a file from srcPath to destPath, creating the destination
// directory as needed.
func copyFile(srcPath, destPath string) error {
	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", destDir, err)
	}

	sourceFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcPath, err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}
	defer destinationFile.Close()

	_, err = io.Copy(destinationFile, sourceFile)
	if err != nil {
		return fmt.Errorf("failed to copy content from %s to %s: %w", srcPath, destPath, err)
	}

	if err := destinationFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync destination file %s: %w", destPath, err)
	}

	return nil
}
