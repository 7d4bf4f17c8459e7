package pkg

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// identityNamespace is the fixed UUIDv5 namespace for content-derived file
// identities. Changing it would change every stored uuid tag.
var identityNamespace = uuid.MustParse("f1c0a9de-5c2b-49c6-9b2d-77a6a2f0c4a1")

// FileIdentity derives a stable identity for a file from its content: the
// SHA-256 of the bytes hashed into a UUIDv5 under a fixed namespace. Two
// byte-identical files get the same uuid tag, and re-running the tool never
// invents a new identity for an unchanged file.
func FileIdentity(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s for hashing: %w", filePath, err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to copy file content to hasher for %s: %w", filePath, err)
	}

	return uuid.NewSHA1(identityNamespace, hash.Sum(nil)).String(), nil
}
