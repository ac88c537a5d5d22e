package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iveel36/spacetime-sim-2020/app"
	"github.com/iveel36/spacetime-sim-2020/config"
)

var demandFlags struct {
	network    string
	out        string
	seed       int64
	mode       string
	count      int
	horizon    int
	stdDev     float64
	collisions string
	routes     []string
	hist       bool
	noHist     bool
	histDir    string
	publish    bool
}

var demandCmd = &cobra.Command{
	Use:   "demand",
	Short: "Sample vehicle departures and write a routes file",
	Args:  cobra.NoArgs,
	RunE:  runDemand,
}

func init() {
	f := demandCmd.Flags()
	f.StringVar(&demandFlags.network, "network", "", "network name, used for the output and histogram file names")
	f.StringVarP(&demandFlags.out, "out", "o", "", "routes file to write (default <network>.rou.xml)")
	f.Int64Var(&demandFlags.seed, "seed", 0, "random seed, 0 picks one from the clock")
	f.StringVar(&demandFlags.mode, "mode", "", "depart time distribution: uniform or peak")
	f.IntVarP(&demandFlags.count, "count", "n", 0, "number of vehicles to sample")
	f.IntVar(&demandFlags.horizon, "horizon", 0, "simulation horizon in seconds")
	f.Float64Var(&demandFlags.stdDev, "std-dev", 0, "peak spread in seconds")
	f.StringVar(&demandFlags.collisions, "collisions", "", "same-second departures: keep or overwrite")
	f.StringArrayVarP(&demandFlags.routes, "route", "r", nil, "candidate route as origin:destination, repeatable")
	f.BoolVar(&demandFlags.hist, "hist", false, "write the depart time histogram")
	f.BoolVar(&demandFlags.noHist, "no-hist", false, "skip the depart time histogram")
	f.StringVar(&demandFlags.histDir, "hist-dir", "", "histogram directory")
	f.BoolVar(&demandFlags.publish, "publish", false, "publish the schedule over MQTT")
	demandCmd.MarkFlagsMutuallyExclusive("hist", "no-hist")
	rootCmd.AddCommand(demandCmd)
}

// applyDemandFlags overrides configuration values with the flags set on cmd.
func applyDemandFlags(cmd *cobra.Command, dc *config.DemandConfig) error {
	f := cmd.Flags()
	if f.Changed("network") {
		dc.Network = demandFlags.network
		if !f.Changed("out") {
			dc.Output = dc.Network + ".rou.xml"
		}
	}
	if f.Changed("out") {
		dc.Output = demandFlags.out
	}
	if f.Changed("seed") {
		dc.Seed = demandFlags.seed
	}
	if f.Changed("mode") {
		dc.Mode = demandFlags.mode
	}
	if f.Changed("count") {
		dc.Count = demandFlags.count
	}
	if f.Changed("horizon") {
		dc.HorizonSeconds = demandFlags.horizon
	}
	if f.Changed("std-dev") {
		dc.StdDevSeconds = demandFlags.stdDev
	}
	if f.Changed("collisions") {
		dc.Collisions = demandFlags.collisions
	}
	if f.Changed("route") {
		dc.Routes = nil
		for _, s := range demandFlags.routes {
			r, err := config.ParseRoute(s)
			if err != nil {
				return err
			}
			dc.Routes = append(dc.Routes, r)
		}
	}
	if f.Changed("hist") {
		dc.Histogram.Enabled = demandFlags.hist
	}
	if f.Changed("no-hist") {
		dc.Histogram.Enabled = !demandFlags.noHist
	}
	if f.Changed("hist-dir") {
		dc.Histogram.Dir = demandFlags.histDir
	}
	if f.Changed("publish") {
		dc.MQTT.Enabled = demandFlags.publish
	}
	dc.SetDefaults()
	return dc.Validate()
}

func runDemand(cmd *cobra.Command, _ []string) error {
	dc := cfg.Demand
	if err := applyDemandFlags(cmd, &dc); err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		res, err := svc.RunDemand(ctx, dc)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run %s (seed %d): %d vehicles over %d depart times -> %s\n",
			res.RunID, res.Seed, res.Stats.Retained, res.Stats.DistinctTimes, res.RoutesPath)
		if res.HistogramPath != "" {
			fmt.Fprintf(out, "histogram: %s\n", res.HistogramPath)
		}
		return nil
	})
}
