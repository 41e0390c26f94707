package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/iishyfishyy/trigramdb/internal/scoring"
)

// PreviewLength is the number of characters shown for a passage in listings.
const PreviewLength = 50

// Preview returns the first n characters of text on a single line, with
// "..." appended when anything was cut.
func Preview(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "..."
}

// PrintResults writes one line per match: rank, id, colored score and a
// preview of the entry text looked up in texts.
func PrintResults(w io.Writer, result scoring.Result, texts map[string]string) {
	positive := color.New(color.FgGreen)
	negative := color.New(color.FgRed)

	for i, m := range result {
		score := fmt.Sprintf("%+.4f", m.Score)
		if m.Score >= 0 {
			score = positive.Sprint(score)
		} else {
			score = negative.Sprint(score)
		}
		fmt.Fprintf(w, "%3d. %s  %s | %s\n", i+1, Label(m.ID), score, Preview(texts[m.ID], PreviewLength))
	}
}

// PrintExplore writes results in the plain "id: score | text..." layout of
// the explore demo.
func PrintExplore(w io.Writer, result scoring.Result, texts map[string]string) {
	for _, m := range result {
		fmt.Fprintf(w, "%s: %v | %s\n", m.ID, m.Score, Preview(texts[m.ID], PreviewLength))
	}
}
