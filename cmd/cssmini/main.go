package main

import (
	"fmt"
	"io"
	"os"

	"github.com/strongdm/cssmini/internal/config"
	"github.com/strongdm/cssmini/internal/minify"
	"github.com/strongdm/cssmini/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("cssmini %s\n", version.Version)
		os.Exit(0)
	case "run":
		os.Exit(runCmd(os.Args[2:], os.Stdout, os.Stderr))
	case "batch":
		os.Exit(batchCmd(os.Args[2:], os.Stderr))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  cssmini --version")
	fmt.Fprintln(os.Stderr, "  cssmini run <input.css> [output.css]")
	fmt.Fprintln(os.Stderr, "  cssmini batch [--config <file>] [--include <glob>]... [--out-dir <dir>] [--suffix <s>] [--report <file>]")
}

// runCmd strips one file. With no output argument the result goes to
// stdout; an output file that cannot be created degrades to stdout with a
// note on stderr.
func runCmd(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "invalid arguments: specify an input file")
		usage()
		return 1
	}
	if len(args) > 2 {
		fmt.Fprintln(stderr, "invalid arguments: too many arguments provided")
		usage()
		return 1
	}
	inputPath := args[0]
	outputPath := ""
	if len(args) == 2 {
		outputPath = args[1]
	}

	if err := minify.Run(inputPath, outputPath, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func batchCmd(args []string, stderr io.Writer) int {
	var configPath string
	var includes []string
	var outDir string
	var suffix string
	var reportPath string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			i++
			if i >= len(args) {
				fmt.Fprintln(stderr, "--config requires a value")
				return 1
			}
			configPath = args[i]
		case "--include":
			i++
			if i >= len(args) {
				fmt.Fprintln(stderr, "--include requires a value")
				return 1
			}
			includes = append(includes, args[i])
		case "--out-dir":
			i++
			if i >= len(args) {
				fmt.Fprintln(stderr, "--out-dir requires a value")
				return 1
			}
			outDir = args[i]
		case "--suffix":
			i++
			if i >= len(args) {
				fmt.Fprintln(stderr, "--suffix requires a value")
				return 1
			}
			suffix = args[i]
		case "--report":
			i++
			if i >= len(args) {
				fmt.Fprintln(stderr, "--report requires a value")
				return 1
			}
			reportPath = args[i]
		default:
			fmt.Fprintf(stderr, "unknown arg: %s\n", args[i])
			return 1
		}
	}

	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		// Command-line flags win over config values.
		if len(includes) == 0 {
			includes = cfg.Batch.Include
		}
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		if suffix == "" {
			suffix = cfg.Output.Suffix
		}
		if reportPath == "" {
			reportPath = cfg.Report.Path
		}
	}

	if len(includes) == 0 {
		fmt.Fprintln(stderr, "no include patterns: use --include or a config file")
		usage()
		return 1
	}

	report, err := minify.RunBatch(minify.BatchOptions{
		Include: includes,
		OutDir:  outDir,
		Suffix:  suffix,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	for _, f := range report.Files {
		fmt.Fprintf(stderr, "minified %s -> %s (%d -> %d bytes)\n", f.Source, f.Target, f.BytesIn, f.BytesOut)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	if reportPath != "" {
		if err := report.WriteFile(reportPath); err != nil {
			fmt.Fprintf(stderr, "write report %s: %v\n", reportPath, err)
			return 1
		}
	}
	return 0
}
