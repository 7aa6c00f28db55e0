package utils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestArtifactDirExists(t *testing.T) {
	dir := ArtifactDir()
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("artifact dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%q is not a directory", dir)
	}
}

func TestTempFilePathSuffixAndUniqueness(t *testing.T) {
	p := TempFilePath("png")
	if !strings.HasSuffix(p, ".png") {
		t.Fatalf("path %q missing extension", p)
	}
	if filepath.Dir(p) != ArtifactDir() {
		t.Fatalf("path %q outside artifact dir", p)
	}

	const n = 64
	var (
		mu    sync.Mutex
		seen  = make(map[string]bool, n)
		wg    sync.WaitGroup
		dupes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := TempFilePath("pdf")
			mu.Lock()
			if seen[p] {
				dupes++
			}
			seen[p] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if dupes != 0 {
		t.Fatalf("%d duplicate paths generated under concurrency", dupes)
	}
}
