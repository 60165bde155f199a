// Package meetctl is a command line client for a running meetglobe server.
package meetctl

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/okian/meetglobe/pkg/logger"
)

// Defaults for the command line flags.
const (
	DefaultURL      = "http://localhost:9080"
	defaultTimeout  = 30 * time.Second
	defaultMeetings = 100
	defaultSize     = 8
)

const usage = `meetctl talks to a running meetglobe server.

Usage:
  meetctl create -title TITLE [-file ROSTER]   create a meeting from "Name, City" lines (stdin by default)
  meetctl viz -id ID                           print a meeting's visualization
  meetctl delete -id ID                        delete a meeting
  meetctl load [-meetings N] [-size N]         create meetings concurrently and verify their arcs

Every command accepts -url (default ` + DefaultURL + `) and -timeout.
`

// Main runs the command in args and returns the process exit code.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = io.WriteString(stderr, usage)
		return 2
	}
	var err error
	switch args[0] {
	case "create":
		err = runCreate(ctx, args[1:], stdin, stdout, stderr)
	case "viz":
		err = runViz(ctx, args[1:], stdout, stderr)
	case "delete":
		err = runDelete(ctx, args[1:], stderr)
	case "load":
		err = runLoad(ctx, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		_, _ = io.WriteString(stdout, usage)
		return 0
	default:
		err = fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, ErrUsage):
		_, _ = fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
		return 2
	default:
		_, _ = fmt.Fprintf(stderr, "meetctl: %v\n", err)
		return 1
	}
}

type commonFlags struct {
	url     string
	timeout time.Duration
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	c := &commonFlags{}
	fs.StringVar(&c.url, "url", DefaultURL, "Base URL of the service")
	fs.DurationVar(&c.timeout, "timeout", defaultTimeout, "HTTP request timeout")
	return fs, c
}

func runCreate(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("create", stderr)
	title := fs.String("title", "", "Meeting title")
	file := fs.String("file", "", "Roster file with one \"Name, City\" per line (default stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return fmt.Errorf("%w: -title is required", ErrUsage)
	}

	var (
		data []byte
		err  error
	)
	if *file == "" || *file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}

	res, err := NewClient(c.url, c.timeout).CreateFromRoster(ctx, *title, string(data))
	if err != nil {
		return err
	}
	return writeJSON(stdout, res)
}

func runViz(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("viz", stderr)
	id := fs.String("id", "", "Meeting ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}
	v, err := NewClient(c.url, c.timeout).Visualization(ctx, *id)
	if err != nil {
		return err
	}
	return writeJSON(stdout, v)
}

func runDelete(ctx context.Context, args []string, stderr io.Writer) error {
	fs, c := newFlagSet("delete", stderr)
	id := fs.String("id", "", "Meeting ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}
	return NewClient(c.url, c.timeout).DeleteMeeting(ctx, *id)
}

func runLoad(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("load", stderr)
	cfg := &Config{}
	fs.IntVar(&cfg.Meetings, "meetings", defaultMeetings, "Number of meetings to create")
	fs.IntVar(&cfg.Size, "size", defaultSize, "Participants per meeting")
	fs.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "Number of concurrent requests")
	fs.Uint64Var(&cfg.Seed, "seed", uint64(time.Now().UnixNano()), "Roster generator seed")
	fs.BoolVar(&cfg.Cleanup, "cleanup", false, "Delete the created meetings afterwards")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Log every rejected meeting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.BaseURL = c.url
	cfg.Timeout = c.timeout

	log, err := logger.New(stderr, logger.FormatText)
	if err != nil {
		return err
	}
	stats, err := Run(ctx, cfg, log.Named("meetctl"))
	if stats != nil {
		WriteStats(stdout, stats)
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
