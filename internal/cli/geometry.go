package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splicekit/splicekit/internal/geometry"
	"github.com/splicekit/splicekit/internal/timeline"
)

// NewGeometryCommand creates the geometry subcommand. It prints where a
// clip lands on screen for a given zoom, useful for debugging layout math
// without a frontend.
func NewGeometryCommand(opts *RootOptions) *cobra.Command {
	var (
		zoom      float64
		inSec     float64
		sourceIn  float64
		sourceOut float64
		speed     float64
	)

	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Compute a clip's on-screen rectangle",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := timeline.ClipRange{SourceInSec: sourceIn, SourceOutSec: sourceOut}
			place := timeline.ClipPlace{
				TimelineInSec: inSec,
				DurationSec:   geometry.ClipDuration(rng, speed),
			}
			rect := geometry.ClipRect(place, rng, speed, zoom)

			switch opts.Format {
			case "json":
				data, err := json.MarshalIndent(map[string]any{
					"left_px":      rect.Left,
					"width_px":     rect.Width,
					"duration_sec": place.DurationSec,
					"end_sec":      place.TimelineOutSec(),
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			default:
				fmt.Fprintf(cmd.OutOrStdout(),
					"clip [%.3fs..%.3fs] at %.3fs speed %.2f zoom %.2f -> left=%.1fpx width=%.1fpx\n",
					sourceIn, sourceOut, inSec, speed, zoom, rect.Left, rect.Width)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&zoom, "zoom", 100, "pixels per timeline second")
	cmd.Flags().Float64Var(&inSec, "in", 0, "timeline position in seconds")
	cmd.Flags().Float64Var(&sourceIn, "source-in", 0, "source in-point in seconds")
	cmd.Flags().Float64Var(&sourceOut, "source-out", 10, "source out-point in seconds")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "playback speed multiplier")

	return cmd
}
