package usecase

import (
	"fmt"
	"io"

	"recommend/internal/domain"
)

// Ellipsis is appended to every description.
const Ellipsis = "..."

// FormatResults assigns 1-based ranks in input order and cuts each
// description to maxChars runes followed by Ellipsis.
func FormatResults(results []domain.RerankedResult, maxChars int) []domain.FormattedResult {
	formatted := make([]domain.FormattedResult, len(results))
	for i, r := range results {
		formatted[i] = domain.FormattedResult{
			Rank:        i + 1,
			Score:       r.Score,
			ID:          r.Document.ID,
			Description: truncateRunes(r.Document.Text, maxChars) + Ellipsis,
		}
	}
	return formatted
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// DisplayResults writes the human-readable listing.
func DisplayResults(w io.Writer, results []domain.FormattedResult) error {
	if _, err := fmt.Fprintln(w, "\nTop Recommended Products:"); err != nil {
		return err
	}
	for _, r := range results {
		_, err := fmt.Fprintf(w, "\nRank: %d\nScore: %.4f\nProduct ID: %s\nDescription: %s\n",
			r.Rank, r.Score, r.ID, r.Description)
		if err != nil {
			return err
		}
	}
	return nil
}
