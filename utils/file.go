package utils

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const artifactSubdir = "renders"

// ArtifactDir returns the directory generated artifacts are written to,
// creating it on first use.
func ArtifactDir() string {
	dir := filepath.Join(os.TempDir(), artifactSubdir)
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// TempFilePath produces a collision-free artifact path with the given
// extension. Safe under concurrent calls.
func TempFilePath(ext string) string {
	return filepath.Join(ArtifactDir(), uuid.NewString()+"."+ext)
}
