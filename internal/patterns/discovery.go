package patterns

import "strings"

// ScanExtensions are the file extensions (without dot) covered by the
// static scanner and the artifact hasher.
var ScanExtensions = []string{
	"js", "ts", "jsx", "tsx", "mjs", "cjs",
	"py", "json", "yaml", "yml", "toml",
	"sol", "sh", "bash", "md",
}

// ExcludedDirs are directory names skipped during discovery and hashing.
var ExcludedDirs = []string{
	"node_modules", "dist", "build", ".git",
	"coverage", "__pycache__", ".venv", "venv",
}

// ExcludedFiles are file name patterns skipped during discovery.
var ExcludedFiles = []string{
	"*.min.js", "*.min.css",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
}

// IsScannableExt reports whether ext (without dot) is in the scan set.
func IsScannableExt(ext string) bool {
	for _, e := range ScanExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// IsExcludedDir reports whether a directory name is excluded.
func IsExcludedDir(name string) bool {
	for _, d := range ExcludedDirs {
		if name == d {
			return true
		}
	}
	return false
}

// IsExcludedFile reports whether a file name matches an exclusion pattern.
func IsExcludedFile(name string) bool {
	for _, pattern := range ExcludedFiles {
		if strings.HasPrefix(pattern, "*") {
			if strings.HasSuffix(name, pattern[1:]) {
				return true
			}
			continue
		}
		if name == pattern {
			return true
		}
	}
	return false
}
