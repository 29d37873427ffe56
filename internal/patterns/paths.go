package patterns

import "strings"

// SensitivePaths is the hard-coded write blocklist: credential stores, SSH
// keys, and environment files. Writes to these are short-circuited before
// capability checks run.
var SensitivePaths = []string{
	".env",
	".env.local",
	".env.production",
	".ssh/",
	"id_rsa",
	"id_ed25519",
	".aws/credentials",
	".aws/config",
	".npmrc",
	".netrc",
	"credentials.json",
	"serviceAccountKey.json",
	".kube/config",
}

// MatchSensitivePath returns the matching blocklist entry for a path, if
// any. Backslashes are normalised to slashes; each entry matches as a
// suffix or as a `/entry` path component.
func MatchSensitivePath(path string) (string, bool) {
	p := strings.ReplaceAll(path, "\\", "/")
	for _, entry := range SensitivePaths {
		if strings.HasSuffix(p, entry) || strings.Contains(p, "/"+entry) {
			return entry, true
		}
	}
	return "", false
}
