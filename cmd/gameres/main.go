// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

// Command gameres probes, lists and extracts game resource containers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"github.com/woozymasta/pathrules"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/gameres"
	"github.com/woozymasta/gameres/audio"
	"github.com/woozymasta/gameres/catalog"
	"github.com/woozymasta/gameres/paz"
	"github.com/woozymasta/gameres/pbo"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		printUsage()
		return errors.New("subcommand required")
	}

	switch args[0] {
	case "probe":
		return runProbe(args[1:], stdout)
	case "list":
		return runList(args[1:], stdout)
	case "extract":
		return runExtract(args[1:], stdout)
	case "sound":
		return runSound(args[1:], stdout)
	case "hashes":
		return runHashes(args[1:], stdout)
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", args[0])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: gameres <subcommand> [flags]

Subcommands:
  probe     Report the container format of each file
  list      List entries of a container
  extract   Extract container entries to a directory
  sound     Describe a sound file or a sound entry inside a container
  hashes    Print PBO signature hashes

Run 'gameres <subcommand> --help' for subcommand flags.
`)
}

// globalOptions are flags shared by every subcommand.
type globalOptions struct {
	schemeFile string
	title      string
	logLevel   string
	offsetMode string
}

// bind registers shared flags on fs.
func (g *globalOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&g.schemeFile, "scheme-file", "", "YAML or JSONC catalog of PAZ encryption schemes")
	fs.StringVarP(&g.title, "title", "t", "", "PAZ scheme title used when the signature is unknown")
	fs.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.StringVar(&g.offsetMode, "pbo-offset-mode", string(pbo.OffsetModeSequential), "PBO data offset policy: sequential, stored_compat, stored_strict")
}

// logger builds a text logger writing to stderr.
func (g *globalOptions) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", g.logLevel, err)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// archives builds the container registry from shared flags.
func (g *globalOptions) archives() (*gameres.ArchiveRegistry, *slog.Logger, error) {
	logger, err := g.logger()
	if err != nil {
		return nil, nil, err
	}

	opts := catalog.Options{
		Logger: logger,
		PAZ:    paz.Options{Title: g.title},
		PBO:    pbo.Options{OffsetMode: pbo.OffsetMode(g.offsetMode)},
	}

	if g.schemeFile != "" {
		schemes, err := paz.LoadCatalog(g.schemeFile)
		if err != nil {
			return nil, nil, err
		}

		opts.PAZ.Schemes = schemes
	}

	return catalog.Archives(opts), logger, nil
}

// newFlagSet returns a subcommand flag set with shared flags bound.
func newFlagSet(name, usage string, g *globalOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gameres %s\n\nFlags:\n", usage)
		fs.PrintDefaults()
	}
	g.bind(fs)

	return fs
}

// runProbe prints the detected format of every argument.
func runProbe(args []string, stdout io.Writer) error {
	var g globalOptions
	fs := newFlagSet("probe", "probe [flags] FILE...", &g)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("at least one file required")
	}

	reg, _, err := g.archives()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	var errs []error
	for _, path := range fs.Args() {
		arc, err := gameres.OpenArchive(reg, nil, path)
		switch {
		case errors.Is(err, gameres.ErrUnknownFormat):
			fmt.Fprintf(tw, "%s\t-\t\n", path)
		case err != nil:
			fmt.Fprintf(tw, "%s\terror\t%v\n", path, err)
			errs = append(errs, err)
		default:
			fmt.Fprintf(tw, "%s\t%s\t%d entries\n", path, arc.FormatTag(), len(arc.Entries()))
			_ = arc.Close()
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	return errors.Join(errs...)
}

// runList prints the directory of one container.
func runList(args []string, stdout io.Writer) error {
	var (
		g      globalOptions
		output string
	)

	fs := newFlagSet("list", "list [flags] ARCHIVE", &g)
	fs.StringVarP(&output, "output", "o", "table", "output format: table, json, yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("exactly one archive required")
	}

	reg, _, err := g.archives()
	if err != nil {
		return err
	}

	arc, err := gameres.OpenArchive(reg, nil, fs.Arg(0))
	if err != nil {
		return err
	}
	defer func() { _ = arc.Close() }()

	entries := arc.Entries()
	switch output {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		defer func() { _ = enc.Close() }()
		return enc.Encode(entries)
	case "table":
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "OFFSET\tSIZE\tUNPACKED\tPACKED\tTYPE\t NAME\n")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%t\t%s\t %s\n", e.Offset, e.Size, e.ExtractedSize(), e.IsPacked, e.Type, e.Name)
	}

	return tw.Flush()
}

// runExtract writes entries of one container to a directory.
func runExtract(args []string, stdout io.Writer) error {
	var (
		g        globalOptions
		include  []string
		exclude  []string
		workers  int
		rawNames bool
		verbose  bool
	)

	fs := newFlagSet("extract", "extract [flags] ARCHIVE OUTPUT_DIR", &g)
	fs.StringArrayVarP(&include, "include", "i", nil, "glob of entries to extract (repeatable)")
	fs.StringArrayVarP(&exclude, "exclude", "x", nil, "glob of entries to skip (repeatable)")
	fs.IntVarP(&workers, "workers", "j", 0, "parallel extraction workers (0 means GOMAXPROCS)")
	fs.BoolVar(&rawNames, "raw-names", false, "keep entry names unsanitized")
	fs.BoolVarP(&verbose, "verbose", "v", false, "print every extracted entry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("archive and output directory required")
	}

	reg, logger, err := g.archives()
	if err != nil {
		return err
	}

	arc, err := gameres.OpenArchive(reg, nil, fs.Arg(0))
	if err != nil {
		return err
	}
	defer func() { _ = arc.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, matcherOpts := filterRules(include, exclude)
	opts := gameres.ExtractOptions{
		Filter:               rules,
		FilterMatcherOptions: matcherOpts,
		MaxWorkers:           workers,
		RawNames:             rawNames,
	}
	if verbose {
		opts.OnEntryDone = func(e gameres.Entry, written int64, outputPath string) {
			fmt.Fprintf(stdout, "%s\t%d\n", outputPath, written)
		}
	}

	logger.Info("extracting", "archive", arc.Name(), "format", arc.FormatTag(), "entries", len(arc.Entries()), "output", fs.Arg(1))
	return gameres.Extract(ctx, arc, fs.Arg(1), opts)
}

// filterRules turns include and exclude globs into ordered path rules.
// Without includes every entry is selected unless excluded.
func filterRules(include, exclude []string) ([]pathrules.Rule, pathrules.MatcherOptions) {
	opts := pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionInclude,
	}
	if len(include) > 0 {
		opts.DefaultAction = pathrules.ActionExclude
	}

	rules := make([]pathrules.Rule, 0, len(include)+len(exclude))
	for _, p := range include {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionInclude, Pattern: p})
	}
	for _, p := range exclude {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionExclude, Pattern: p})
	}

	return rules, opts
}

// runSound describes a standalone sound file or a sound entry of a container.
func runSound(args []string, stdout io.Writer) error {
	var (
		g     globalOptions
		entry string
		dump  string
	)

	fs := newFlagSet("sound", "sound [flags] FILE", &g)
	fs.StringVarP(&entry, "entry", "e", "", "sound entry name when FILE is a container")
	fs.StringVar(&dump, "dump", "", "write the sound payload to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("exactly one file required")
	}

	reg, logger, err := g.archives()
	if err != nil {
		return err
	}

	snd, err := openSound(reg, catalog.Sounds(logger), fs.Arg(0), entry)
	if err != nil {
		return err
	}
	defer func() { _ = snd.Close() }()

	f := snd.Format()
	fmt.Fprintf(stdout, "format:    %s\n", snd.FormatTag())
	fmt.Fprintf(stdout, "tag:       0x%04x\n", f.FormatTag)
	fmt.Fprintf(stdout, "channels:  %d\n", f.Channels)
	fmt.Fprintf(stdout, "rate:      %d Hz\n", f.SamplesPerSecond)
	fmt.Fprintf(stdout, "bits:      %d\n", f.BitsPerSample)
	fmt.Fprintf(stdout, "bitrate:   %d\n", snd.SourceBitrate())
	fmt.Fprintf(stdout, "payload:   %d bytes\n", snd.PcmSize())

	if dump == "" {
		return nil
	}

	out, err := os.Create(dump)
	if err != nil {
		return fmt.Errorf("create %s: %w", dump, err)
	}

	if _, err := io.Copy(out, snd); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", dump, err)
	}

	return out.Close()
}

// openSound opens FILE directly, or the named entry of FILE when entry is set.
func openSound(reg *gameres.ArchiveRegistry, sounds *audio.Registry, path, entry string) (*audio.Sound, error) {
	if entry == "" {
		return audio.OpenSound(sounds, nil, path)
	}

	arc, err := gameres.OpenArchive(reg, nil, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = arc.Close() }()

	e, err := gameres.FindEntry(arc, strings.TrimSpace(entry))
	if err != nil {
		return nil, err
	}

	return audio.OpenEntrySound(sounds, arc, e)
}

// runHashes prints the signature hash set of a PBO.
func runHashes(args []string, stdout io.Writer) error {
	var (
		g       globalOptions
		version uint32
		game    string
	)

	fs := newFlagSet("hashes", "hashes [flags] FILE.pbo", &g)
	fs.Uint32Var(&version, "sign-version", uint32(pbo.SignVersionV3), "signature hash policy version: 2 or 3")
	fs.StringVar(&game, "game", string(pbo.GameTypeDayZ), "game for v3 policy: arma, dayz")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("exactly one archive required")
	}

	reg, _, err := g.archives()
	if err != nil {
		return err
	}

	arc, err := gameres.OpenArchive(reg, nil, fs.Arg(0))
	if err != nil {
		return err
	}
	defer func() { _ = arc.Close() }()

	pa, ok := arc.(*pbo.Archive)
	if !ok {
		return fmt.Errorf("%s is %s, not %s", fs.Arg(0), arc.FormatTag(), pbo.Tag)
	}

	hs, err := pa.HashSet(pbo.SignVersion(version), pbo.GameType(game))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "hash1: %x\nhash2: %x\nhash3: %x\n", hs.Hash1, hs.Hash2, hs.Hash3)
	return nil
}
