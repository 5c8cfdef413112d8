package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/conorfennell/chapterdeck/internal/config"
	"github.com/conorfennell/chapterdeck/internal/logger"
	"github.com/conorfennell/chapterdeck/internal/storage"
	"github.com/conorfennell/chapterdeck/internal/study"
	"github.com/spf13/pflag"
)

const usage = `Usage: chapterdeck <command> [flags]

Commands:
  serve     Run the HTTP API
  import    Import card files into a deck (--deck, --dir)
  review    Rate a card (--deck, --card, --rating again|hard|good|easy)
  queue     List a deck in study order (--deck, --limit)
  stats     Show deck statistics (--deck)
  preview   Show the interval each rating would schedule (--deck, --card)
  decks     List decks

Run "chapterdeck <command> --help" for the flags of a command.
`

// command is one subcommand. flags registers its own flags; run executes it
// against an opened application.
type command struct {
	flags func(fs *pflag.FlagSet)
	run   func(app *app, fs *pflag.FlagSet) error
}

var commands = map[string]command{
	"serve":   {run: runServe},
	"import":  {flags: importFlags, run: runImport},
	"review":  {flags: reviewFlags, run: runReview},
	"queue":   {flags: queueFlags, run: runQueue},
	"stats":   {flags: deckFlag, run: runStats},
	"preview": {flags: previewFlags, run: runPreview},
	"decks":   {run: runDecks},
}

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.Store
	study  *study.Service
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	if err := run(name, cmd, os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("Command failed", "command", name, "error", err)
		os.Exit(1)
	}
}

func run(name string, cmd command, args []string) error {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}
	log, err := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s store %s: %w", cfg.Storage.Driver, cfg.Storage.Path, err)
	}
	defer store.Close()
	log.Debug("Store opened", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	return cmd.run(&app{
		cfg:    cfg,
		logger: log,
		store:  store,
		study:  study.NewService(store, log),
	}, fs)
}
