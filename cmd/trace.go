package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iveel36/spacetime-sim-2020/app"
)

var traceOut string

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Convert simulator logs into CSV tables",
}

func init() {
	traceCmd.PersistentFlags().StringVarP(&traceOut, "out", "o", "", "table file to write, JSON when it ends in .json and CSV otherwise (default: log path with a .csv extension)")
	traceCmd.AddCommand(traceKindCmd(app.KindSteps, "Flatten an emission log into one row per vehicle and timestep"))
	traceCmd.AddCommand(traceKindCmd(app.KindTrips, "Convert a tripinfo log into one row per trip"))
	rootCmd.AddCommand(traceCmd)
}

func traceKindCmd(kind app.Kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " <log.xml>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *app.Service) error {
				res, err := svc.RunTrace(ctx, kind, args[0], traceOut)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "run %s: kept %d of %d entries -> %s\n",
					res.RunID, res.Stats.Kept, res.Stats.Seen, res.Output)
				return nil
			})
		},
	}
}
