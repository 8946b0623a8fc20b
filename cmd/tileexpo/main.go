package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/1broseidon/tileexpo/internal/ipc"
	"github.com/1broseidon/tileexpo/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: tileexpo daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: tileexpo daemon")
			os.Exit(2)
		}
		os.Exit(runDaemon())
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "select":
		os.Exit(runSelect(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tileexpo <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the tileexpo daemon (foreground)")
	fmt.Fprintln(w, "  toggle              Zoom out to the overview, or back in")
	fmt.Fprintln(w, "  select X Y          Zoom into the workspace at column X, row Y")
	fmt.Fprintln(w, "  status              Show overview status")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive workspace picker")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tileexpo <command> --help' for command-specific options.")
}

// parseFlags parses a no-option subcommand and reports the exit code to use
// when parsing stops the command.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func newFlagSet(name, usage, desc string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, desc)
	}
	return fs
}

func runToggle(args []string) int {
	fs := newFlagSet("toggle", "tileexpo toggle", "Zoom out to the workspace overview, or back into the selected workspace.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "toggle takes no arguments")
		fs.Usage()
		return 2
	}
	if err := ipc.NewClient().Toggle(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSelect(args []string) int {
	fs := newFlagSet("select", "tileexpo select X Y", "Zoom into the workspace at column X, row Y while the overview is shown.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	x, y, err := parseCoord(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}
	if err := ipc.NewClient().Select(x, y); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseCoord reads a non-negative column and row.
func parseCoord(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("select requires X and Y")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil || x < 0 {
		return 0, 0, fmt.Errorf("invalid column %q", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil || y < 0 {
		return 0, 0, fmt.Errorf("invalid row %q", args[1])
	}
	return x, y, nil
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "tileexpo status", "Show overview status via IPC.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, st *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running: %v\n", st.DaemonRunning)
	fmt.Fprintf(w, "state:          %s\n", st.StateName)
	fmt.Fprintf(w, "grid:           %s\n", st.Grid)
	fmt.Fprintf(w, "active:         %s\n", st.Active)
	fmt.Fprintf(w, "return:         %s\n", st.Return)
	fmt.Fprintf(w, "step:           %d/%d\n", st.Step, st.MaxSteps)
	fmt.Fprintf(w, "scale:          %.3f x %.3f\n", st.Params.ScaleX, st.Params.ScaleY)
	fmt.Fprintf(w, "uptime_seconds: %d\n", st.UptimeSeconds)
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "tileexpo reload", "Ask the daemon to re-read its configuration.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runTUI(args []string) int {
	fs := newFlagSet("tui", "tileexpo tui", "Open the interactive workspace picker.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := tui.Run(client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
