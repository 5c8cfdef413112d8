package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/conorfennell/chapterdeck/internal/digest"
	"github.com/conorfennell/chapterdeck/internal/sm2"
	"github.com/conorfennell/chapterdeck/internal/web"
	"github.com/spf13/pflag"
)

func deckFlag(fs *pflag.FlagSet) {
	fs.String("deck", "", "Deck name")
}

func importFlags(fs *pflag.FlagSet) {
	deckFlag(fs)
	fs.String("dir", ".", "Directory to scan for .md and .xlsx card files")
}

func reviewFlags(fs *pflag.FlagSet) {
	previewFlags(fs)
	fs.String("rating", "", "Rating: again, hard, good or easy")
}

func queueFlags(fs *pflag.FlagSet) {
	deckFlag(fs)
	fs.Int("limit", 0, "Maximum number of cards, 0 for all")
}

func previewFlags(fs *pflag.FlagSet) {
	deckFlag(fs)
	fs.String("card", "", "Card ID")
}

// required returns the value of a string flag, failing when it is empty.
func required(fs *pflag.FlagSet, name string) (string, error) {
	v, err := fs.GetString(name)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return v, nil
}

func runServe(a *app, _ *pflag.FlagSet) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Digest.Enabled {
		sched := digest.New(a.study, a.logger)
		if err := sched.Start(a.cfg.Digest.At); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           web.NewServer(a.study, a.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runImport(a *app, fs *pflag.FlagSet) error {
	deck, err := required(fs, "deck")
	if err != nil {
		return err
	}
	dir, _ := fs.GetString("dir")

	result, err := a.study.Import(deck, dir)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d cards from %d files into %s: %d added, %d removed, %d errors.\n",
		result.Parsed, result.Files, deck, result.Added, result.Removed, len(result.Errors))
	if len(result.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range result.Errors {
			fmt.Printf("- %s\n", e)
		}
	}
	return nil
}

func runReview(a *app, fs *pflag.FlagSet) error {
	deck, err := required(fs, "deck")
	if err != nil {
		return err
	}
	card, err := required(fs, "card")
	if err != nil {
		return err
	}
	raw, _ := fs.GetString("rating")
	rating, err := sm2.ParseRating(raw)
	if err != nil {
		return err
	}

	rec, err := a.study.Review(deck, card, rating)
	if err != nil {
		return err
	}
	fmt.Printf("Next review in %s on %s (ease %.2f, streak %d).\n",
		sm2.FormatInterval(rec.Interval), rec.NextReview.Format(time.DateOnly), rec.Ease, rec.ConsecutiveCorrect)
	return nil
}

func runQueue(a *app, fs *pflag.FlagSet) error {
	deck, err := required(fs, "deck")
	if err != nil {
		return err
	}
	limit, _ := fs.GetInt("limit")

	entries, err := a.study.Queue(deck, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDUE\tNEXT\tINTERVAL\tQUESTION")
	for _, e := range entries {
		next, interval := "new", "-"
		if e.Record != nil {
			next = e.Record.NextReview.Format(time.DateOnly)
			interval = sm2.FormatInterval(e.Record.Interval)
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%s\n", e.Card.ID, e.Due, next, interval, e.Card.Question)
	}
	return w.Flush()
}

func runStats(a *app, fs *pflag.FlagSet) error {
	deck, err := required(fs, "deck")
	if err != nil {
		return err
	}
	stats, err := a.study.Stats(deck)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d cards, %d new, %d learning, %d review, %d due\n",
		deck, stats.Total, stats.New, stats.Learning, stats.Review, stats.Due)
	return nil
}

func runPreview(a *app, fs *pflag.FlagSet) error {
	deck, err := required(fs, "deck")
	if err != nil {
		return err
	}
	card, err := required(fs, "card")
	if err != nil {
		return err
	}
	previews, err := a.study.Preview(deck, card)
	if err != nil {
		return err
	}
	for _, p := range previews {
		fmt.Printf("%-6s %s\n", p.Rating, p.Label)
	}
	return nil
}

func runDecks(a *app, _ *pflag.FlagSet) error {
	decks, err := a.study.Decks()
	if err != nil {
		return err
	}
	for _, d := range decks {
		fmt.Println(d)
	}
	return nil
}
