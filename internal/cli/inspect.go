package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Store string
}

// InteractionSummary describes one recorded interaction.
type InteractionSummary struct {
	Position    int    `json:"position"`
	Fingerprint string `json:"fingerprint"`
	Protocol    string `json:"protocol"`
	Action      string `json:"action"`
	Target      string `json:"target"`
	Chunks      int    `json:"chunks"`
	Bytes       int    `json:"bytes"`
}

// InspectResult holds the complete inspect output.
type InspectResult struct {
	Path         string               `json:"path"`
	Interactions int                  `json:"interactions"`
	Entries      []InteractionSummary `json:"entries"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <cassette>",
		Short: "Summarize a cassette's recorded interactions",
		Long: `Load a cassette and print one line per recorded interaction:
position, fingerprint, protocol, action, target, and chunk count.

Examples:
  interpose inspect testdata/users.json
  interpose inspect recordings.db --store sqlite --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "store kind (json|yaml|sqlite); inferred from extension when omitted")

	return cmd
}

func runInspect(opts *InspectOptions, cmd *cobra.Command, path string) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	store, closeStore, err := openStore(path, opts.Store, false)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer closeStore()

	cassette, err := store.Load(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load cassette", err)
	}

	result := InspectResult{
		Path:         path,
		Interactions: cassette.Len(),
	}
	for i, interaction := range cassette.Interactions() {
		bytes := 0
		for _, chunk := range interaction.ResponseChunks {
			bytes += len(chunk.Data)
		}
		result.Entries = append(result.Entries, InteractionSummary{
			Position:    i,
			Fingerprint: interaction.Fingerprint.Value(),
			Protocol:    interaction.Request.Protocol,
			Action:      interaction.Request.Action,
			Target:      interaction.Request.Target,
			Chunks:      len(interaction.ResponseChunks),
			Bytes:       bytes,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d interaction(s)\n", path, result.Interactions)
	for _, entry := range result.Entries {
		fmt.Fprintf(out, "  [%d] %s %s %s %s (%d chunk(s), %d byte(s))\n",
			entry.Position, entry.Fingerprint[:12], entry.Protocol, entry.Action, entry.Target, entry.Chunks, entry.Bytes)
	}
	return nil
}
