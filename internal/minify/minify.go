// Package minify orchestrates strip runs over real files: it owns opening
// the source, choosing the sink, and closing both on every exit path. The
// scanner itself lives in internal/strip.
package minify

import (
	"fmt"
	"io"
	"os"

	"github.com/strongdm/cssmini/internal/strip"
)

// Run minifies the file at inputPath. The result goes to the file at
// outputPath, or to console when outputPath is empty. An output file that
// cannot be created is reported on errw and Run degrades to console
// output instead of failing; an unreadable input is an error and nothing
// is scanned.
func Run(inputPath, outputPath string, console, errw io.Writer) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input %s: %w", inputPath, err)
	}
	var out io.WriteCloser
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			fmt.Fprintf(errw, "could not open output file %s: %v; writing to console\n", outputPath, err)
		} else {
			out = f
		}
	}
	if err := runWith(in, out, console); err != nil {
		return fmt.Errorf("minify %s: %w", inputPath, err)
	}
	return nil
}

// runWith strips src into out, or into console when out is nil. It closes
// src, and out when present, exactly once each whether the scan succeeds
// or fails.
func runWith(src io.ReadCloser, out io.WriteCloser, console io.Writer) error {
	defer src.Close()

	sink := console
	if out != nil {
		sink = out
	}
	stripErr := strip.Strip(sink, src)
	if out != nil {
		if cerr := out.Close(); stripErr == nil && cerr != nil {
			stripErr = fmt.Errorf("close output: %w", cerr)
		}
	}
	return stripErr
}
