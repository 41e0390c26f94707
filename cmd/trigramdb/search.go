package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iishyfishyy/trigramdb/internal/config"
	"github.com/iishyfishyy/trigramdb/internal/entrystore"
	"github.com/iishyfishyy/trigramdb/internal/history"
	"github.com/iishyfishyy/trigramdb/internal/ui"
)

// historyMatches is how many ranked matches a history entry keeps.
const historyMatches = 5

// exploreSentences seed the explore demo.
var exploreSentences = []string{
	"Tadpoles love to eat algae and small insects such as mosquito larvae.",
	"Cats are the most popular pet in the United States.",
	"The Amazon rainforest is the largest rainforest in the world.",
	"The first person on the moon was Neil Armstrong.",
	"The Declaration of Independence was signed in 1776.",
	"The capital of the United States is Washington, D.C.",
	"The largest country in the world by area is Russia.",
	"Dogs are descended from wolves.",
	"The longest river in the world is the Nile.",
	"American football is the most popular sport in the United States.",
}

func newSearchCmd() *cobra.Command {
	var (
		iterations int
		weights    string
		limit      int
		copyTop    bool
	)

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Rank stored passages against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if iterations == 0 {
				iterations = a.store.Iterations()
			}
			w := a.store.Weights()
			if weights != "" {
				if w, err = parseWeights(weights); err != nil {
					return err
				}
			}

			a.logger.Debug("searching", "query", query, "iterations", iterations, "weights", w)
			result, err := a.store.SearchWith(query, iterations, w)
			if errors.Is(err, entrystore.ErrEmptyStore) {
				ui.ShowInfo("No passages stored yet. Add one with: trigramdb add \"some text\"")
				return nil
			}
			if errors.Is(err, entrystore.ErrDivision) {
				ui.ShowWarning("Every passage scored the same, so there is no ranking. Add more passages.")
				return nil
			}
			if err != nil {
				return err
			}

			a.recordSearch(history.NewEntry(query, result, historyMatches))

			ui.PrintResults(cmd.OutOrStdout(), result.Top(limit), a.texts())

			if copyTop {
				if err := clipboard.WriteAll(result[0].ID); err != nil {
					ui.ShowError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
				} else {
					ui.ShowSuccess("Top id copied to clipboard!")
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "Inference iterations (default from config)")
	cmd.Flags().StringVarP(&weights, "weights", "w", "", "Comma separated distance weights (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Show only the top N results")
	cmd.Flags().BoolVarP(&copyTop, "copy", "c", false, "Copy the top id to the clipboard")

	return cmd
}

// parseWeights parses a comma separated list of non-negative floats
func parseWeights(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	weights := make([]float64, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", p, err)
		}
		if w < 0 {
			return nil, fmt.Errorf("invalid weight %q: must not be negative", p)
		}
		weights = append(weights, w)
	}
	return weights, nil
}

func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Search a small built-in set of sentences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			store := entrystore.New(
				entrystore.WithIterations(cfg.Search.Iterations),
				entrystore.WithWeights(cfg.Search.Weights),
			)
			for _, sentence := range exploreSentences {
				if _, err := store.Add(sentence); err != nil {
					return err
				}
			}

			query, err := readQuery(os.Stdin, ui.IsInteractive())
			if err != nil {
				return err
			}

			result, err := store.Search(query)
			if err != nil {
				return err
			}

			texts := make(map[string]string, store.Len())
			for id, entry := range store.Entries() {
				texts[id] = entry.RawText
			}
			ui.PrintExplore(cmd.OutOrStdout(), result, texts)
			return nil
		},
	}
}

// readQuery prompts for a sentence on a terminal, otherwise reads one line
func readQuery(in io.Reader, interactive bool) (string, error) {
	if interactive {
		return ui.PromptText("Enter a sentence:")
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read sentence: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newHistoryCmd() *cobra.Command {
	var (
		clearAll bool
		count    int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetHistoryPath()
			if err != nil {
				return err
			}

			hist, err := history.Load(path)
			if err != nil {
				return err
			}

			if clearAll {
				hist.Clear()
				if err := hist.Save(); err != nil {
					return err
				}
				ui.ShowSuccess("History cleared")
				return nil
			}

			entries := hist.Last(count)
			if len(entries) == 0 {
				ui.ShowInfo("No searches yet")
				return nil
			}

			out := cmd.OutOrStdout()
			gray := color.New(color.FgHiBlack)
			for _, e := range entries {
				fmt.Fprintf(out, "%s %q\n", gray.Sprintf("%-10s", formatDuration(e.Timestamp)), e.Query)
				if e.TopID != "" {
					fmt.Fprintf(out, "           top %s (%+.4f) of %d\n", e.TopID, e.TopScore, e.Results)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all history")
	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of searches to show")

	return cmd
}

// formatDuration formats a time.Time as "X ago"
func formatDuration(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}

	days := int(duration.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
