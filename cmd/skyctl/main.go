// Skyctl is the command-line client for a running skywatchd. It submits
// element sets, steers the live recompute loop, and streams events over
// WebSocket. The decode command runs the ingestion pipeline locally.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host    string
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "skyctl",
	Short: "control CLI for the skywatch tracking daemon",
	Long: `skyctl talks to skywatchd over HTTP and WebSocket.

Element sets may be Two-Line Element text, OMM JSON, or OMM KVN; the
daemon detects the format. Times are RFC 3339.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&host, "host", "H", "http://127.0.0.1:8080", "skywatchd URL (e.g. http://192.168.8.1:8080)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output raw JSON instead of formatted text")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
