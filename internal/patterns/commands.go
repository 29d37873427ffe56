package patterns

import (
	"regexp"
	"strings"
)

// DangerousSubstrings are command fragments that always block, regardless of
// trust level or capabilities. Matched case-insensitively on the full
// command line.
var DangerousSubstrings = []string{
	"rm -rf",
	"rm -fr",
	"mkfs",
	"dd if=",
	"chmod 777",
	"chmod -r 777",
	"> /dev/sda",
	"mv /* ",
}

// ForkBombRe matches the classic bash fork bomb, tolerating whitespace
// between tokens.
var ForkBombRe = regexp.MustCompile(`:\s*\(\s*\)\s*{\s*:\s*\|\s*:\s*&\s*}\s*;\s*:`)

// PipeToShellRe matches curl/wget output piped into a shell.
var PipeToShellRe = regexp.MustCompile(`(?i)(curl|wget)[^|\n]*\|\s*[^|\n]*(sh|bash|zsh)\b`)

// SafePrefixes are read-only or routinely-used commands allowed even when a
// skill's exec capability is denied, provided the command carries no shell
// metacharacters and touches no sensitive data.
var SafePrefixes = []string{
	"ls", "cat", "head", "tail", "wc", "grep", "find", "pwd", "echo",
	"which", "whoami", "date", "df", "du", "file", "stat", "tree",
	"git status", "git log", "git diff", "git show", "git branch",
	"git add", "git commit", "git push", "git pull", "git fetch",
	"git checkout", "git stash",
	"npm install", "npm ci", "npm run", "npm test",
	"yarn", "pnpm install",
	"pip install", "pip list",
	"go build", "go test", "go vet", "go run", "go mod",
	"cargo build", "cargo test", "cargo check",
	"make", "node --version", "python --version", "go version",
}

// SensitiveCommands expose credentials or system account data. They lift
// risk to high and are never covered by the safe-command allowlist.
var SensitiveCommands = []string{
	"cat /etc/passwd",
	"cat /etc/shadow",
	"cat ~/.ssh",
	"cat ~/.aws",
	"cat ~/.kube",
	"cat ~/.npmrc",
	"cat ~/.netrc",
	"printenv",
	"env",
	"set",
}

// SystemCommands alter system state; medium risk, audited.
var SystemCommands = []string{
	"sudo", "su ", "systemctl", "service", "kill", "pkill", "killall",
	"reboot", "shutdown", "mount", "umount", "crontab", "useradd",
	"userdel", "passwd", "iptables", "launchctl",
}

// NetworkCommands move data over the network; medium risk, audited.
var NetworkCommands = []string{
	"curl", "wget", "nc ", "ncat", "netcat", "ssh", "scp", "rsync",
	"ftp", "sftp", "telnet", "nmap", "dig", "nslookup",
}

// ShellMetaChars are the characters that disqualify a command from the
// safe-command allowlist: any of them can change what actually executes.
const ShellMetaChars = ";|&`$(){}"

// HasShellMeta reports whether the command contains any shell
// metacharacter.
func HasShellMeta(command string) bool {
	return strings.ContainsAny(command, ShellMetaChars)
}

// IsDangerousCommand reports whether the lowercased command contains a
// dangerous substring, matches the fork-bomb shape, or pipes a download
// into a shell. Returns the matched fragment for evidence.
func IsDangerousCommand(command string) (string, bool) {
	lower := strings.ToLower(command)
	for _, s := range DangerousSubstrings {
		if strings.Contains(lower, s) {
			return s, true
		}
	}
	if m := ForkBombRe.FindString(command); m != "" {
		return m, true
	}
	if m := PipeToShellRe.FindString(command); m != "" {
		return m, true
	}
	return "", false
}

// HasSafePrefix reports whether the command starts with a safe-command
// prefix, either exactly or followed by a space.
func HasSafePrefix(command string) bool {
	for _, prefix := range SafePrefixes {
		if command == prefix || strings.HasPrefix(command, prefix+" ") {
			return true
		}
	}
	return false
}

// MatchSensitiveCommand returns the sensitive-command substring contained
// in the command, if any.
func MatchSensitiveCommand(command string) (string, bool) {
	for _, s := range SensitiveCommands {
		if s == "env" || s == "set" || s == "printenv" {
			// Bare environment dumps only count as the whole command or its
			// first word, not as a substring of longer words.
			if command == s || strings.HasPrefix(command, s+" ") {
				return s, true
			}
			continue
		}
		if strings.Contains(command, s) {
			return s, true
		}
	}
	return "", false
}

// MatchCommandPrefix reports whether any list entry appears at the start of
// the command or immediately after a space (covering "sudo curl ...").
func MatchCommandPrefix(command string, list []string) (string, bool) {
	for _, entry := range list {
		trimmed := strings.TrimSuffix(entry, " ")
		if command == trimmed ||
			strings.HasPrefix(command, trimmed+" ") ||
			strings.Contains(command, " "+trimmed+" ") {
			return trimmed, true
		}
	}
	return "", false
}

// SensitiveEnvKeywords flag environment variable names that commonly hold
// credentials. Matched as case-insensitive substrings of the key.
var SensitiveEnvKeywords = []string{
	"API_KEY", "SECRET", "PASSWORD", "TOKEN", "PRIVATE", "CREDENTIAL",
}

// IsSensitiveEnvKey reports whether an environment variable name looks like
// it holds a credential.
func IsSensitiveEnvKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, kw := range SensitiveEnvKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
