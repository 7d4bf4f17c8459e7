package pkg_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/user/media-datefix/pkg"
)

var uuidForm = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestFileIdentity(t *testing.T) {
	tmpDir := t.TempDir()

	pathA := filepath.Join(tmpDir, "a.jpg")
	pathB := filepath.Join(tmpDir, "b.jpg")
	pathC := filepath.Join(tmpDir, "c.jpg")
	if err := os.WriteFile(pathA, []byte("same content"), 0644); err != nil {
		t.Fatalf("Failed to write a.jpg: %v", err)
	}
	if err := os.WriteFile(pathB, []byte("same content"), 0644); err != nil {
		t.Fatalf("Failed to write b.jpg: %v", err)
	}
	if err := os.WriteFile(pathC, []byte("different content"), 0644); err != nil {
		t.Fatalf("Failed to write c.jpg: %v", err)
	}

	idA, err := pkg.FileIdentity(pathA)
	if err != nil {
		t.Fatalf("pkg.FileIdentity(pathA) error: %v", err)
	}
	if !uuidForm.MatchString(idA) {
		t.Errorf("identity %q is not a canonical UUID", idA)
	}

	idAAgain, err := pkg.FileIdentity(pathA)
	if err != nil {
		t.Fatalf("pkg.FileIdentity(pathA) again error: %v", err)
	}
	if idA != idAAgain {
		t.Errorf("identity not stable: %s vs %s", idA, idAAgain)
	}

	idB, err := pkg.FileIdentity(pathB)
	if err != nil {
		t.Fatalf("pkg.FileIdentity(pathB) error: %v", err)
	}
	if idA != idB {
		t.Errorf("byte-identical files got different identities: %s vs %s", idA, idB)
	}

	idC, err := pkg.FileIdentity(pathC)
	if err != nil {
		t.Fatalf("pkg.FileIdentity(pathC) error: %v", err)
	}
	if idA == idC {
		t.Errorf("different content got the same identity %s", idA)
	}

	if _, err := pkg.FileIdentity(filepath.Join(tmpDir, "missing.jpg")); err == nil {
		t.Error("expected error for missing file")
	}
}
