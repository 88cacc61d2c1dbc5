package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources [name]",
	Short: "List configured sources",
	Long: `Lists the sources from the configuration file.
If a source name is provided, lists the channels, streams or repositories
its connector can see instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	if len(args) > 0 {
		channels, err := sourceService.Channels(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("listing channels failed: %w", err)
		}
		if len(channels) == 0 {
			cmd.Printf("Source %s sees no channels.\n", args[0])
			return nil
		}
		for _, ch := range channels {
			cmd.Printf("  %s\n", ch)
		}
		return nil
	}

	sources := sourceService.Sources()
	if len(sources) == 0 {
		cmd.Println("No sources configured.")
		return nil
	}

	cmd.Println(render(cmd, headingStyle, "Sources:"))
	for i := range sources {
		src := &sources[i]
		cmd.Printf("  %-16s %-8s %s -> %s\n", src.Name, src.Type, src.Channel, src.CollectionName())
	}
	return nil
}
