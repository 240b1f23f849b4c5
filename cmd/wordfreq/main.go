// Command wordfreq analyzes a text document from a URL or file path and
// prints the most frequent words.
//
// Usage:
//
//	wordfreq [flags] <url-or-path>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/dkovalets/wordfreq/internal/analyzer"
	"github.com/dkovalets/wordfreq/internal/source"
	"github.com/dkovalets/wordfreq/pkg/config"
	"github.com/dkovalets/wordfreq/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	workers := flag.Int("workers", 4, "number of concurrent counting workers")
	topK := flag.Int("top", 10, "number of top words to report")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	format := flag.String("format", "text", "output format: text or json")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <url-or-path>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	location := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	fetcher := source.NewFetcher(cfg.Source, nil)
	a := analyzer.New(fetcher, nil, nil)

	report, err := a.Analyze(ctx, analyzer.Request{
		Location: location,
		Workers:  *workers,
		TopK:     *topK,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "encoding report: %v\n", err)
			os.Exit(1)
		}
	default:
		printText(report)
	}
}

func printText(report *analyzer.Report) {
	fmt.Printf("Top %d words in %s\n", len(report.TopWords), report.Location)
	fmt.Printf("%d tokens, %d distinct, %d workers, %dms\n\n",
		report.TotalTokens, report.DistinctTokens, report.Workers, report.ElapsedMS)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tWORD\tCOUNT")
	for _, entry := range report.TopWords {
		fmt.Fprintf(w, "%d\t%s\t%d\n", entry.Rank, entry.Word, entry.Count)
	}
	w.Flush()
}
