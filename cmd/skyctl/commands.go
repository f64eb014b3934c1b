package main

import (
	"github.com/spf13/cobra"

	"github.com/large-farva/skywatch/internal/ctl"
)

// Query commands.

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon state, tracked satellite, and latest position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.Status(host, jsonOut)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the daemon is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.Health(host, jsonOut)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI and daemon version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.VersionInfo(host, jsonOut)
	},
}

var elementsCmd = &cobra.Command{
	Use:     "elements",
	Aliases: []string{"el"},
	Short:   "Show the tracked element set and its TLE rendering",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.ShowElements(host, jsonOut)
	},
}

var positionAt string

var positionCmd = &cobra.Command{
	Use:     "position",
	Aliases: []string{"pos"},
	Short:   "Show the latest look angles, or compute them for --at",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.Position(host, positionAt, jsonOut)
	},
}

var passOpts ctl.PassesOptions

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List upcoming passes over the observer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		passOpts.JSON = jsonOut
		return ctl.Passes(host, passOpts)
	},
}

var logOpts ctl.LogsOptions

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent daemon log messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logOpts.JSON = jsonOut
		return ctl.Logs(host, logOpts)
	},
}

// Element commands.

var submitCmd = &cobra.Command{
	Use:   "submit FILE",
	Short: "Submit an element set for tracking (\"-\" reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.Submit(host, args[0], jsonOut)
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode FILE",
	Short: "Detect, validate, and decode an element set locally",
	Long: `decode runs the same ingestion pipeline as the daemon without
contacting it, then prints the canonical record and its TLE rendering.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.Decode(args[0], jsonOut)
	},
}

// Control commands.

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause live recomputation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.Pause(host, jsonOut)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume live recomputation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.Resume(host, jsonOut)
	},
}

var clearTime bool

var timeCmd = &cobra.Command{
	Use:   "time [RFC3339]",
	Short: "Pin recomputation to a fixed time, or return to live with --clear",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if clearTime {
			return ctl.ClearTime(host, jsonOut)
		}
		if len(args) == 0 {
			return cmd.Usage()
		}
		return ctl.SetTime(host, args[0], jsonOut)
	},
}

var obsOpts ctl.ObserverOptions

var observerCmd = &cobra.Command{
	Use:     "observer",
	Aliases: []string{"obs"},
	Short:   "Show or set the ground observer",
	Long: `Without flags, observer prints the current ground observer. With
--lat and --lon it replaces it; with --gpsd the daemon asks gpsd for a fix.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		obsOpts.JSON = jsonOut
		f := cmd.Flags()
		if !obsOpts.GPSD && !f.Changed("lat") && !f.Changed("lon") {
			return ctl.ShowObserver(host, jsonOut)
		}
		return ctl.SetObserver(host, obsOpts)
	},
}

// Live streaming.

var watchFilter []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live events from the daemon (Ctrl-C to stop)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctl.Watch(host, ctl.WatchOptions{Filter: watchFilter, JSON: jsonOut})
	},
}

func init() {
	positionCmd.Flags().StringVar(&positionAt, "at", "", "Compute for this RFC 3339 time instead of the latest result")

	passesCmd.Flags().IntVar(&passOpts.Count, "count", 0, "Limit number of passes shown")
	passesCmd.Flags().StringVar(&passOpts.From, "from", "", "Search from this RFC 3339 time (default now)")

	logsCmd.Flags().StringVar(&logOpts.Level, "level", "", "Filter by log level (debug, info, warn, error)")
	logsCmd.Flags().IntVar(&logOpts.Limit, "limit", 0, "Limit number of log entries shown")
	logsCmd.Flags().BoolVar(&logOpts.Tail, "tail", false, "Stream live log events (like watch --filter log)")

	timeCmd.Flags().BoolVar(&clearTime, "clear", false, "Return to wall-clock time and resume live updates")

	observerCmd.Flags().StringVar(&obsOpts.Name, "name", "", "Observer name")
	observerCmd.Flags().Float64Var(&obsOpts.Latitude, "lat", 0, "Geodetic latitude in degrees")
	observerCmd.Flags().Float64Var(&obsOpts.Longitude, "lon", 0, "Geodetic longitude in degrees")
	observerCmd.Flags().Float64Var(&obsOpts.HeightKm, "height", 0, "Height above the ellipsoid in km")
	observerCmd.Flags().BoolVar(&obsOpts.GPSD, "gpsd", false, "Locate the observer from the daemon's gpsd")
	observerCmd.MarkFlagsRequiredTogether("lat", "lon")
	observerCmd.MarkFlagsMutuallyExclusive("gpsd", "lat")

	watchCmd.Flags().StringSliceVar(&watchFilter, "filter", nil, "Event types to show (e.g. --filter position,state)")

	rootCmd.AddCommand(
		statusCmd, healthCmd, versionCmd, elementsCmd, positionCmd, passesCmd, logsCmd,
		submitCmd, decodeCmd,
		pauseCmd, resumeCmd, timeCmd, observerCmd,
		watchCmd,
	)
}
