package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentguard/agentguard/internal/patterns"
)

// CalculateArtifactHash computes a stable content hash for a skill
// directory: files are sorted by relative path, each contributes
// `relpath \0 sha256(contents)` to the outer hash. Excluded directories
// (node_modules, .git, ...) are skipped so the hash tracks the code that
// would actually be scanned.
func CalculateArtifactHash(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("stat artifact dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("artifact path %s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && patterns.IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk artifact dir: %w", err)
	}

	sort.Strings(files)

	outer := sha256.New()
	for _, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return "", err
		}
		rel = strings.ReplaceAll(rel, "\\", "/")

		fileHash, err := hashFile(path)
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", rel, err)
		}
		outer.Write([]byte(rel))
		outer.Write([]byte{0})
		outer.Write(fileHash)
	}

	return hex.EncodeToString(outer.Sum(nil)), nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
