package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/pattyshack/elfhdr/config"
	"github.com/pattyshack/elfhdr/report"
)

var (
	debugEnabled bool

	title   = color.New(color.Bold, color.FgCyan).SprintFunc()
	failure = color.New(color.Bold, color.FgRed).SprintFunc()
)

func debug(format string, args ...interface{}) {
	if debugEnabled {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

func usage() {
	fmt.Fprintf(
		flag.CommandLine.Output(),
		"USAGE: %s [flags] <file>...\n\nFlags:\n",
		filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func checkArgs(paths []string, stream bool) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input file")
	}

	if stream && len(paths) > 1 {
		return fmt.Errorf("-stream only supports a single file (got %d)", len(paths))
	}

	return nil
}

type result struct {
	doc report.Document
	err error
}

func main() {
	configPath := ""
	strict := false
	noColor := false
	stream := false
	workers := 0

	flag.StringVar(&configPath, "config", "", "yaml config file")
	flag.BoolVar(&strict, "strict", false, "reject unsupported elf classes")
	flag.BoolVar(&noColor, "no-color", false, "disable colored output")
	flag.BoolVar(&stream, "stream", false, "print lines as they are decoded (single file only)")
	flag.BoolVar(&debugEnabled, "debug", false, "enable debug output")
	flag.IntVar(&workers, "j", 0, "maximum number of files parsed concurrently")
	flag.Usage = usage
	flag.Parse()

	paths := flag.Args()
	err := checkArgs(paths, stream)
	if err != nil {
		fmt.Fprintln(flag.CommandLine.Output(), err)
		usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			panic(err)
		}
		debug("loaded config %s", configPath)
	}

	if strict {
		cfg.ClassPolicy = "strict"
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	color.NoColor = color.NoColor || noColor || !cfg.ColorEnabled()

	parser := cfg.NewParser()
	debug("class policy: %s", parser.ClassPolicy)

	if stream {
		parser.NewSink = func() report.Sink {
			return report.NewWriterSink(colorWriter{})
		}

		doc, err := parser.ParseFile(context.Background(), paths[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, failure("Error:"), err)
			os.Exit(1)
		}

		if doc.IsInvalid() {
			// The invalid document never goes through the sink.
			fmt.Println(failure(report.InvalidElfLine))
		}
		return
	}

	results := parseAll(parser, paths, cfg.NumWorkers())

	failed := false
	for idx, path := range paths {
		if len(paths) > 1 {
			if idx > 0 {
				fmt.Println()
			}
			fmt.Println(title("==> " + path + " <=="))
		}

		res := results[idx]
		if res.err != nil {
			failed = true
			fmt.Fprintln(os.Stderr, failure("Error:"), res.err)
			continue
		}

		printDocument(res.doc)
	}

	if failed {
		os.Exit(1)
	}
}

// Files are parsed concurrently, but results are returned in argument order.
// Per-file failures don't cancel the other files.
func parseAll(
	parser *report.Parser,
	paths []string,
	numWorkers int,
) []result {
	results := make([]result, len(paths))

	group, ctx := errgroup.WithContext(context.Background())
	group.SetLimit(numWorkers)

	for idx, path := range paths {
		group.Go(func() error {
			debug("parsing %s", path)
			doc, err := parser.ParseFile(ctx, path)
			results[idx] = result{doc: doc, err: err}
			debug("parsed %s (%d lines)", path, len(doc.Lines))
			return nil
		})
	}

	// Workers never return errors.
	_ = group.Wait()

	return results
}

func colorLine(line string) string {
	if line == report.InvalidElfLine {
		return failure(line)
	}

	if strings.HasPrefix(line, "### ") {
		return title(line)
	}

	return line
}

func printDocument(doc report.Document) {
	for _, line := range doc.Lines {
		fmt.Println(colorLine(line))
	}
}

type colorWriter struct{}

func (colorWriter) Write(content []byte) (int, error) {
	line := strings.TrimSuffix(string(content), "\n")
	_, err := fmt.Println(colorLine(line))
	if err != nil {
		return 0, err
	}
	return len(content), nil
}
