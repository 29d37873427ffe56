// Package audit appends one JSON line per evaluation to the audit log.
// Logging is best-effort: callers treat errors as advisory and an
// evaluation never fails because the log could not be written.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"

	"github.com/agentguard/agentguard/internal/redact"
)

// summaryLimit caps the recorded tool input.
const summaryLimit = 200

// Entry is one audit record.
type Entry struct {
	Timestamp        string   `json:"timestamp"`
	ToolName         string   `json:"tool_name"`
	ToolInputSummary string   `json:"tool_input_summary"`
	Decision         string   `json:"decision"`
	RiskLevel        string   `json:"risk_level"`
	RiskTags         []string `json:"risk_tags,omitempty"`
	InitiatingSkill  string   `json:"initiating_skill,omitempty"`
}

// Logger serialises appends to a JSONL file.
type Logger struct {
	file *os.File
	mu   sync.Mutex
}

// Open opens or creates the audit log for appending.
func Open(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &Logger{file: file}, nil
}

// Log appends one entry. The input summary is redacted and truncated
// before it is written.
func (l *Logger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.ToolInputSummary = redact.Redact(entry.ToolInputSummary)
	if len(entry.ToolInputSummary) > summaryLimit {
		entry.ToolInputSummary = entry.ToolInputSummary[:summaryLimit]
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Tail reads the last n entries from the log at path. A missing file
// yields an empty slice.
func Tail(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
