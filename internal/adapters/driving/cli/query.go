package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/services"
)

var (
	queryTopK         int
	queryThreshold    float64
	queryJSON         bool
	queryNoSimilarity bool
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Find indexed messages similar to a query",
	Long: `Embeds the query and returns the nearest indexed messages whose
similarity clears the threshold, best match first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "n-results", "n", 0, "maximum number of nearest messages (default from config)")
	queryCmd.Flags().Float64Var(&queryThreshold, "threshold", 0, "minimum similarity in [0, 1] (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().BoolVar(&queryNoSimilarity, "no-similarity", false, "hide similarity scores")
	rootCmd.AddCommand(queryCmd)
}

// queryResult is the JSON shape of one query result.
type queryResult struct {
	ID         string   `json:"id"`
	Message    string   `json:"message"`
	Similarity *float64 `json:"similarity,omitempty"`
	URL        string   `json:"url,omitempty"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	query := strings.Join(args, " ")

	topK := defaultTopK
	if queryTopK > 0 {
		topK = queryTopK
	}
	threshold := defaultThreshold
	if cmd.Flags().Changed("threshold") {
		if queryThreshold < 0 || queryThreshold > 1 {
			return fmt.Errorf("threshold %.2f: %w: must be within [0, 1]", queryThreshold, domain.ErrInvalidInput)
		}
		threshold = queryThreshold
	}

	results, err := retrievalService.Retrieve(cmd.Context(), query, topK, threshold)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}

	outputQueryText(cmd, results)
	return nil
}

func outputQueryJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	out := make([]queryResult, len(results))
	for i := range results {
		out[i] = queryResult{
			ID:      results[i].ID,
			Message: services.CleanDocument(results[i].Document),
			URL:     results[i].URL(),
		}
		if !queryNoSimilarity {
			similarity := results[i].Similarity
			out[i].Similarity = &similarity
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, results []domain.RetrievalResult) {
	if len(results) == 0 {
		cmd.Println("No relevant messages found.")
		return
	}

	cmd.Println(render(cmd, headingStyle, "Results:"))
	cmd.Println()
	for i := range results {
		// Format: [N] (similarity%) then the indented message
		header := fmt.Sprintf("  [%d]", i+1)
		if !queryNoSimilarity {
			header += " " + render(cmd, similarityStyle, formatSimilarity(results[i].Similarity))
		}
		cmd.Println(header)

		for _, line := range strings.Split(services.CleanDocument(results[i].Document), "\n") {
			cmd.Printf("      %s\n", line)
		}
		if url := results[i].URL(); url != "" {
			cmd.Printf("      %s\n", render(cmd, linkStyle, url))
		}
		cmd.Println()
	}
}

// formatSimilarity renders a similarity in [0, 1] as a percentage.
func formatSimilarity(similarity float64) string {
	return fmt.Sprintf("%.1f%%", similarity*100)
}
