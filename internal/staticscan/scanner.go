package staticscan

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/agentguard/agentguard/internal/patterns"
)

// DefaultConcurrency bounds the parallel file walk. Rule application is
// CPU-bound, so a small pool is enough.
const DefaultConcurrency = 4

// base64TokenRe finds candidate tokens for the decode-and-rescan pass.
var base64TokenRe = regexp.MustCompile(`[A-Za-z0-9+/]{80,}={0,2}`)

// maxLineLen guards against pathological single-line files.
const maxLineLen = 1 << 20

// Scanner applies the rule catalog to a directory tree.
type Scanner struct {
	rules       []patterns.ScanRule
	concurrency int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtraRules appends rules (e.g. from YAML packs) after the built-in
// catalog.
func WithExtraRules(rules []patterns.ScanRule) Option {
	return func(s *Scanner) {
		s.rules = append(s.rules, rules...)
	}
}

// WithConcurrency overrides the parallel walk bound.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a scanner over the built-in rule catalog.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		rules:       append([]patterns.ScanRule(nil), patterns.BuiltinScanRules...),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks dir and applies every applicable rule to every discovered
// file, including the base64 decode-and-rescan pass. It returns an error
// only when dir does not exist or the scan is cancelled; unreadable files
// are counted as skipped, not failed.
func (s *Scanner) Scan(ctx context.Context, dir string) (Result, error) {
	return s.scan(ctx, dir, true, true)
}

// QuickScan is Scan without the base64 re-scan and without content
// snippets in findings. Used on hot paths like session startup.
func (s *Scanner) QuickScan(ctx context.Context, dir string) (Result, error) {
	return s.scan(ctx, dir, false, false)
}

func (s *Scanner) scan(ctx context.Context, dir string, rescanBase64, snippets bool) (Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Result{}, fmt.Errorf("scan target: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("scan target %s is not a directory", dir)
	}

	files, err := discover(dir)
	if err != nil {
		return Result{}, err
	}

	var (
		mu       sync.Mutex
		findings []Finding
		skipped  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileFindings, err := s.scanFile(dir, file, rescanBase64, snippets)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				skipped++
				return nil
			}
			findings = append(findings, fileFindings...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Partial results are never surfaced as complete.
		return Result{}, err
	}

	return rollUp(findings, len(files)-skipped, skipped), nil
}

// discover globs the scannable files under dir, honouring the exclusion
// lists, and returns them in sorted order.
func discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && patterns.IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if patterns.IsExcludedFile(name) {
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(name), ".")
		if !patterns.IsScannableExt(ext) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (s *Scanner) scanFile(root, path string, rescanBase64, snippets bool) ([]Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = strings.ReplaceAll(rel, "\\", "/")
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	var findings []Finding
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		findings = append(findings, s.applyRules(rel, ext, lineNo, line, "", snippets)...)
		if rescanBase64 {
			findings = append(findings, s.rescanEncoded(rel, ext, lineNo, line, snippets)...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return findings, nil
}

// applyRules fires each applicable rule at most once per line.
func (s *Scanner) applyRules(rel, ext string, lineNo int, line, parentRule string, snippets bool) []Finding {
	var findings []Finding
	for _, rule := range s.rules {
		if !rule.AppliesTo(ext) {
			continue
		}
		m := rule.Re.FindString(line)
		if m == "" {
			continue
		}
		finding := Finding{
			RuleID:       rule.ID,
			Severity:     rule.Severity,
			FilePath:     rel,
			Line:         lineNo,
			Category:     rule.Category,
			ParentRuleID: parentRule,
		}
		if snippets {
			finding.MatchedText = truncate(m, 120)
		}
		findings = append(findings, finding)
	}
	return findings
}

// rescanEncoded decodes base64-like tokens of length >= 80 and re-applies
// the rule set to the decoded text. New findings are tagged with the
// base64 rule as their parent.
func (s *Scanner) rescanEncoded(rel, ext string, lineNo int, line string, snippets bool) []Finding {
	var findings []Finding
	for _, token := range base64TokenRe.FindAllString(line, -1) {
		decoded, err := base64.StdEncoding.DecodeString(token)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(token)
		}
		if err != nil || !utf8.Valid(decoded) {
			continue
		}
		for _, decodedLine := range strings.Split(string(decoded), "\n") {
			findings = append(findings, s.applyRules(rel, ext, lineNo, decodedLine, "BASE64_BLOB", snippets)...)
		}
	}
	return findings
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
