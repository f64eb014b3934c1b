package ctl

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is set via -ldflags; otherwise the module version from the
// build info is used.
var Version = "dev"

func cliVersion() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

// VersionInfo prints the CLI version next to what GET /api/version reports.
// An unreachable daemon is shown, not returned as an error.
func VersionInfo(baseURL string, jsonOutput bool) error {
	var daemon struct {
		Version   string `json:"version"`
		GoVersion string `json:"go_version"`
		BuiltAt   string `json:"built_at"`
	}
	daemonErr := getJSON(baseURL, "/api/version", &daemon)
	cli := map[string]string{"version": cliVersion(), "go_version": runtime.Version()}

	if jsonOutput {
		out := map[string]any{"cli": cli}
		if daemonErr != nil {
			out["daemon_error"] = daemonErr.Error()
		} else {
			out["daemon"] = daemon
		}
		return printJSON(out)
	}

	fmt.Println()
	fmt.Println(header("  SKYWATCH VERSION"))
	fmt.Println(divider(38))
	row("CLI", fmt.Sprintf("%s (%s)", cli["version"], cli["go_version"]))
	switch {
	case daemonErr != nil:
		row("Daemon", colorize(red, "unreachable: "+daemonErr.Error()))
	default:
		row("Daemon", fmt.Sprintf("%s (%s)", daemon.Version, daemon.GoVersion))
		if daemon.BuiltAt != "" {
			row("Built", daemon.BuiltAt)
		}
	}
	fmt.Println()
	return nil
}
