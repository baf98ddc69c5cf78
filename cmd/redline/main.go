// Command redline copy-edits academic manuscripts with a language model and
// produces clean and track-changes output documents.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/kdurfey/redline/internal/api"
	"github.com/kdurfey/redline/internal/config"
	"github.com/kdurfey/redline/internal/correct"
	"github.com/kdurfey/redline/internal/pipeline"
	"github.com/kdurfey/redline/internal/redline"
)

const version = "0.2.0"

var CLI struct {
	Config  string     `help:"Path to YAML config file" type:"path"`
	Edit    EditCmd    `cmd:"" help:"Copy-edit a manuscript and write clean + redline outputs"`
	Compare CompareCmd `cmd:"" help:"Build a redline from two already-saved documents"`
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP editing service"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

var (
	cfg    config.Config
	logger *slog.Logger
)

func main() {
	// Progress lines own stdout; structured logs go to stderr.
	logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

	ctx := kong.Parse(&CLI,
		kong.Name("redline"),
		kong.Description("Academic manuscript copy editor with track-changes output"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	cfg = config.Load()
	if CLI.Config != "" {
		if err := cfg.MergeFile(CLI.Config); err != nil {
			logger.Error("invalid configuration", "error", err)
			os.Exit(1)
		}
	}

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// EditCmd runs the full pipeline on one manuscript.
type EditCmd struct {
	Input   string `arg:"" help:"Manuscript to edit (.docx, .md, .html)" type:"existingfile"`
	Out     string `help:"Clean output path (default: <input>_edited.<ext>)" type:"path"`
	Redline string `help:"Track-changes output path (default: <input>_redline.<ext>)" type:"path"`

	NoRedline   bool   `help:"Skip the track-changes artifact"`
	Provider    string `help:"Model provider: anthropic, openai, or gemini"`
	Instruction string `help:"File containing the editing instruction" type:"existingfile"`
	Abstract    bool   `help:"Also edit the first paragraph after the Abstract heading"`
	SkipShort   bool   `name:"skip-short-lines" help:"Treat short dot-free body lines as section titles and leave them alone"`
	Concurrency int    `help:"Parallel model calls (default MAX_CONCURRENT)"`
}

func (c *EditCmd) Run() error {
	if c.Provider != "" {
		cfg.Provider = c.Provider
	}
	if c.Instruction != "" {
		cfg.InstructionFile = c.Instruction
	}
	if c.Abstract {
		cfg.EditAbstract = true
	}
	if c.SkipShort {
		cfg.SkipShortLines = true
	}
	if c.Concurrency > 0 {
		cfg.MaxConcurrent = c.Concurrency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	instruction, err := correct.ResolveInstruction(cfg.Instruction, cfg.InstructionFile)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	corrector, err := correct.ForProvider(ctx, cfg, instruction)
	if err != nil {
		return err
	}
	defer corrector.Close()

	out := c.Out
	if out == "" {
		out = derivePath(c.Input, "edited")
	}
	redlineOut := c.Redline
	if redlineOut == "" {
		redlineOut = derivePath(c.Input, "redline")
	}
	if c.NoRedline {
		redlineOut = ""
	}

	stats := correct.NewStats(time.Hour)
	ed := pipeline.NewEditor(corrector, stats, logger, os.Stdout, cfg.MaxConcurrent, cfg.MaxRetries)

	rep, err := pipeline.Run(ctx, ed, logger, pipeline.RunInput{
		InputPath:      c.Input,
		CleanPath:      out,
		RedlinePath:    redlineOut,
		Author:         cfg.Author,
		EditAbstract:   cfg.EditAbstract,
		SkipShortLines: cfg.SkipShortLines,
	})
	if err != nil {
		return err
	}

	snap := stats.Snapshot()
	logger.Info("run complete",
		"edited", rep.Edited,
		"skipped", rep.Skipped,
		"failed", rep.Failed,
		"calls", snap.Count,
		"avg_ms", snap.AvgMs,
	)
	if rep.Failed > 0 {
		return fmt.Errorf("%d paragraph(s) failed and were left unmodified", rep.Failed)
	}
	return nil
}

// CompareCmd builds a redline from two saved documents without model calls.
type CompareCmd struct {
	Original string `arg:"" help:"Original document" type:"existingfile"`
	Edited   string `arg:"" help:"Edited document" type:"existingfile"`
	Out      string `help:"Redline output path (default: <original>_redline.<ext>)" type:"path"`
}

func (c *CompareCmd) Run() error {
	out := c.Out
	if out == "" {
		out = derivePath(c.Original, "redline")
	}
	cmp, err := redline.ForFile(c.Original, cfg.Author)
	if err != nil {
		return err
	}
	if err := cmp.Compare(c.Original, c.Edited, out); err != nil {
		return err
	}
	logger.Info("redline saved", "path", out)
	return nil
}

// ServeCmd runs the HTTP editing service.
type ServeCmd struct {
	Port string `help:"Listen port (default PORT)"`
}

func (c *ServeCmd) Run() error {
	if c.Port != "" {
		cfg.Port = c.Port
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := correct.NewStats(time.Hour)
	factory := func(ctx context.Context, instruction string) (correct.Corrector, error) {
		return correct.ForProvider(ctx, cfg, instruction)
	}

	orch := pipeline.NewOrchestrator(cfg, factory, stats, logger)
	orch.Start(ctx)

	srv := api.NewServer(orch, logger, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting redline service", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("redline %s\n", version)
	return nil
}

// derivePath turns path/paper.docx into path/paper_suffix.docx.
func derivePath(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_" + suffix + ext
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
