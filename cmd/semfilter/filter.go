package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"semfilter/internal/filter"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var threshold float64

var filterCmd = &cobra.Command{
	Use:   "filter [text]...",
	Short: "Evaluate texts against your categories",
	Long: `Evaluate one or more texts against your category set and report which
should be filtered. Whitelisted texts are never filtered and skip
evaluation entirely.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return runFilter(cmd.Context(), a, args)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Filter lines from stdin continuously",
	Long: `Read lines from stdin and evaluate each against your category set,
printing a verdict per line. Intended for piping a text stream through
the filter. Expired category snapshots are swept periodically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Lazy expiry in the cache handles correctness; the sweeper just
		// keeps memory bounded during long watch sessions.
		c := cron.New()
		if _, err := c.AddFunc("@every 1m", func() {
			if n := a.categories.Sweep(); n > 0 && verbose {
				log.Printf("semfilter: swept %d expired category snapshots", n)
			}
		}); err != nil {
			return fmt.Errorf("schedule cache sweep: %w", err)
		}
		c.Start()
		defer c.Stop()

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := runFilter(cmd.Context(), a, []string{scanner.Text()}); err != nil {
				return err
			}
		}
		return scanner.Err()
	},
}

func init() {
	filterCmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "similarity threshold (default from config)")
	watchCmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "similarity threshold (default from config)")
}

func runFilter(ctx context.Context, a *app, texts []string) error {
	th := threshold
	if th == 0 {
		th = a.cfg.Filter.DefaultThreshold
	}

	// Whitelisted texts never reach the engine.
	whitelist, err := a.store.ListWhitelist(ctx, userID)
	if err != nil {
		return err
	}
	whitelisted := make(map[string]bool, len(whitelist))
	for _, e := range whitelist {
		whitelisted[e.Text] = true
	}

	toEvaluate := make([]string, 0, len(texts))
	for _, text := range texts {
		if !whitelisted[text] {
			toEvaluate = append(toEvaluate, text)
		}
	}

	var results []filter.Result
	if len(toEvaluate) > 0 {
		results, err = a.engine.Evaluate(ctx, userID, toEvaluate, float32(th))
		if err != nil {
			return err
		}
	}

	i := 0
	for _, text := range texts {
		if whitelisted[text] {
			fmt.Printf("PASS    %q (whitelisted)\n", text)
			continue
		}
		printResult(results[i])
		i++
	}
	return nil
}

func printResult(r filter.Result) {
	if !r.ShouldFilter {
		fmt.Printf("PASS    %q\n", r.Text)
		return
	}
	fmt.Printf("FILTER  %q\n", r.Text)
	for _, m := range r.Matches {
		fmt.Printf("        %-20s %.4f\n", m.Name, m.Score)
	}
}
