package minify

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/oklog/ulid/v2"
	"github.com/strongdm/cssmini/internal/strip"
)

// DefaultSuffix is appended to a source file's name (extension stripped)
// to form its minified counterpart.
const DefaultSuffix = ".min.css"

type BatchOptions struct {
	// Include holds doublestar glob patterns resolved against the
	// working directory.
	Include []string
	// OutDir receives the minified files. Empty means next to each
	// source file.
	OutDir string
	// Suffix replaces each source file's extension; DefaultSuffix when
	// empty.
	Suffix string
}

type BatchFileResult struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	BytesIn  int64  `json:"bytes_in"`
	BytesOut int64  `json:"bytes_out"`
}

type BatchReport struct {
	RunID       string            `json:"run_id"`
	GeneratedAt string            `json:"generated_at"`
	Include     []string          `json:"include"`
	Files       []BatchFileResult `json:"files"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// RunBatch minifies every file matched by opts.Include and returns a
// report of what was written. Per-file problems (a source that vanished,
// an uncreatable target) become report warnings, not errors; RunBatch
// fails only when no work is possible at all.
func RunBatch(opts BatchOptions) (*BatchReport, error) {
	if len(opts.Include) == 0 {
		return nil, fmt.Errorf("batch: no include patterns")
	}
	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}

	sources, err := expandIncludePatterns(opts.Include)
	if err != nil {
		return nil, err
	}

	runID, err := newReportID()
	if err != nil {
		return nil, fmt.Errorf("batch: run id: %w", err)
	}
	report := &BatchReport{
		RunID:       runID,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Include:     append([]string(nil), opts.Include...),
	}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, fmt.Errorf("batch: create out dir: %w", err)
		}
	}

	claimed := map[string]string{} // target -> source that produced it
	for _, src := range sources {
		base := filepath.Base(src)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + suffix
		dir := opts.OutDir
		if dir == "" {
			dir = filepath.Dir(src)
		}
		target := filepath.Join(dir, name)

		if prev, ok := claimed[target]; ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("skip %s: target %s already written from %s", src, target, prev))
			continue
		}
		if target == src {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("skip %s: target would overwrite source", src))
			continue
		}

		res, err := minifyToFile(src, target)
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
			continue
		}
		claimed[target] = src
		report.Files = append(report.Files, res)
	}
	return report, nil
}

func minifyToFile(src, target string) (BatchFileResult, error) {
	in, err := os.Open(src)
	if err != nil {
		return BatchFileResult{}, fmt.Errorf("skip %s: %v", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return BatchFileResult{}, fmt.Errorf("skip %s: %v", src, err)
	}

	out, err := os.Create(target)
	if err != nil {
		return BatchFileResult{}, fmt.Errorf("skip %s: %v", src, err)
	}

	stripErr := strip.Strip(out, in)
	if cerr := out.Close(); stripErr == nil {
		stripErr = cerr
	}
	if stripErr != nil {
		return BatchFileResult{}, fmt.Errorf("skip %s: %v", src, stripErr)
	}

	outInfo, err := os.Stat(target)
	if err != nil {
		return BatchFileResult{}, fmt.Errorf("skip %s: %v", src, err)
	}
	return BatchFileResult{
		Source:   src,
		Target:   target,
		BytesIn:  info.Size(),
		BytesOut: outInfo.Size(),
	}, nil
}

// expandIncludePatterns resolves doublestar globs to a sorted, de-duplicated
// list of regular files.
func expandIncludePatterns(patterns []string) ([]string, error) {
	matches := map[string]bool{}
	for _, pattern := range patterns {
		hits, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expand include glob %q: %w", pattern, err)
		}
		for _, hit := range hits {
			if isRegularFile(hit) {
				matches[hit] = true
			}
		}
	}
	out := make([]string, 0, len(matches))
	for m := range matches {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// newReportID stamps a batch report with a ULID. ULIDs sort by creation
// time, so report files named after their run line up chronologically.
func newReportID() (string, error) {
	now := ulid.Timestamp(time.Now().UTC())
	id, err := ulid.New(now, ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// WriteFile writes the report as indented JSON.
func (r *BatchReport) WriteFile(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
