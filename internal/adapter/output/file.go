// Package output persists formatted recommendations.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"recommend/internal/domain"
)

// WriteJSON writes results to path as a two-space indented JSON array,
// replacing any existing file. An empty result set is written as [].
func WriteJSON(path string, results []domain.FormattedResult) error {
	if results == nil {
		results = []domain.FormattedResult{}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode results: %w", domain.ErrOutput, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", domain.ErrOutput, path, err)
	}
	return nil
}
