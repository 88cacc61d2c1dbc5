package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	Long: `Lists every collection with its message count and vector dimensions,
and checks that the embedding service is reachable.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

// statsReport is the JSON shape of the stats command.
type statsReport struct {
	Collections []domain.CollectionStats `json:"collections"`
	Embedding   string                   `json:"embedding"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	stats, err := statsService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}
	if stats == nil {
		stats = []domain.CollectionStats{}
	}

	health := "not checked"
	healthy := false
	if pingEmbedding != nil {
		if pingErr := pingEmbedding(cmd.Context()); pingErr != nil {
			health = pingErr.Error()
		} else {
			health, healthy = "ok", true
		}
	}

	if statsJSON {
		data, err := json.MarshalIndent(statsReport{Collections: stats, Embedding: health}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(stats) == 0 {
		cmd.Println("No collections yet. Run 'threadrag sync' first.")
	} else {
		cmd.Println(render(cmd, headingStyle, fmt.Sprintf("%-24s %10s %10s", "COLLECTION", "MESSAGES", "DIMENSIONS")))
		for _, s := range stats {
			cmd.Printf("%-24s %10d %10d\n", s.Name, s.Records, s.Dimensions)
		}
	}

	cmd.Println()
	style := failStyle
	if healthy {
		style = okStyle
	}
	cmd.Printf("Embedding service: %s\n", render(cmd, style, health))
	return nil
}
