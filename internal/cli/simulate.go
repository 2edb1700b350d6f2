package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splicekit/splicekit/internal/config"
	"github.com/splicekit/splicekit/internal/harness"
)

// NewSimulateCommand creates the simulate subcommand. It runs a scripted
// playback scenario against a fully wired engine and prints the trace.
func NewSimulateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a playback scenario and print its trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := harness.Load(args[0])
			if err != nil {
				return err
			}

			defaults, err := config.Load()
			if err != nil {
				return err
			}

			result, err := harness.RunWith(scenario, harness.RunOptions{
				GraceWindow:   defaults.GraceWindow(),
				MaxFrameDelta: defaults.MaxFrameDelta(),
			})
			if err != nil {
				return err
			}

			switch opts.Format {
			case "json":
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			default:
				printTraceText(cmd, result)
			}
			return nil
		},
	}
}

func printTraceText(cmd *cobra.Command, result *harness.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s\n", result.Scenario)
	for _, ev := range result.Trace {
		playing := "paused"
		if ev.IsPlaying {
			playing = "playing"
		}
		fmt.Fprintf(out, "%6dms  %-14s t=%.3fs/%.3fs rate=%.2f %s loop=%v\n",
			ev.AtMS, ev.Op, ev.CurrentTime, ev.Duration, ev.Rate, playing, ev.Loop)
	}
	fmt.Fprintf(out, "final: t=%.3fs playing=%v | store: t=%.3fs playing=%v\n",
		result.Final.CurrentTime, result.Final.IsPlaying,
		result.Store.CurrentTime, result.Store.IsPlaying)
}
