// Command wrangle compiles an SH-4 instruction description into Go source: an
// opcode type per instruction, the dispatch table of execute, disassemble and
// translate methods, and the 64K-entry decode table that indexes it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/apparentlymart/sh4-meta/isa"
)

func main() {
	os.Exit(main1())
}

func main1() int {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	var out []byte
	if cfg.Template != "" {
		out, err = runTemplate(cfg)
	} else {
		out, err = run(cfg, os.Stderr)
	}
	if err != nil {
		logrus.WithError(err).Error("wrangle failed")
		return 1
	}

	if err := writeOutput(cfg.Output, out); err != nil {
		logrus.WithError(err).Error("wrangle failed")
		return 1
	}
	return 0
}

// run loads and compiles the description named in cfg, writing the summary
// to stderr and returning the generated source.
func run(cfg *config, stderr io.Writer) ([]byte, error) {
	records, err := isa.Load(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to load instruction descriptions: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"file":    cfg.Input,
		"records": len(records),
	}).Debug("loaded instruction descriptions")

	if cfg.Dump {
		spew.Fdump(stderr, records)
	}

	table, err := isa.BuildTable(records)
	if err != nil {
		return nil, fmt.Errorf("failed to build decode table: %w", err)
	}

	claimed, unclaimed := decodeCoverage(table.Decode(), table.Len())
	for i, rec := range table.Records() {
		logrus.WithFields(logrus.Fields{
			"ordinal": i + 1,
			"pattern": rec.Pattern,
			"flags":   rec.FlagSet(),
			"opcodes": claimed[i],
		}).Debug(rec.Name)
	}
	logrus.WithField("unclaimed", unclaimed).Debug("decode table built")

	src, err := generateGo(cfg, table)
	if err != nil {
		return nil, err
	}
	if cfg.Report {
		writeReport(stderr, table)
	}
	writeSummary(stderr, summarize(records))
	return src, nil
}

func writeOutput(filename string, out []byte) error {
	if filename == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(filename, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
