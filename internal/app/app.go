// Package app wires the lsport command line to the scanner, formatters and
// interactive view.
package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pranshuparmar/lsport/internal/config"
	"github.com/pranshuparmar/lsport/internal/output"
	"github.com/pranshuparmar/lsport/internal/tui"
	"github.com/pranshuparmar/lsport/pkg/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

// SetVersionBuildCommitString records the values injected at link time.
func SetVersionBuildCommitString(v, c, d string) {
	version, commit, buildDate = v, c, d
}

func versionString() string {
	v := version
	if v == "" {
		v = "dev"
	}
	if commit != "" {
		v += " (" + commit
		if buildDate != "" {
			v += ", " + buildDate
		}
		v += ")"
	}
	return v
}

// options is the merged result of config file and flags.
type options struct {
	configPath   string
	format       string
	output       string
	sort         string
	method       string
	snapshot     string
	procRoot     string
	interval     time.Duration
	servicesFile string
	verbose      bool
	logFile      string

	cfg *config.Config

	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	runTUI     func(tui.Options, []model.PortInfo) error
}

func defaultOptions() *options {
	return &options{
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTerminal: func() bool {
			fd := os.Stdout.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
		runTUI: tui.Start,
	}
}

// NewRootCmd builds the lsport command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultOptions())
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsport",
		Short: "List listening TCP ports and the processes that own them",
		Long: `lsport reads the kernel's TCP socket tables, finds the process holding each
listening socket and shows port, PID, user, command line, working directory
and well-known service name.

Without --format and on a terminal it starts an interactive view.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&opts.method, "method", "local", "where to read sockets and processes: local or snapshot")
	pf.StringVar(&opts.snapshot, "snapshot", "", "snapshot file read by --method snapshot")
	pf.StringVar(&opts.procRoot, "proc-root", "", "procfs mount point (default /proc)")
	pf.StringVar(&opts.servicesFile, "services-file", "", "service dataset replacing the built-in one")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug details to stderr")
	pf.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "", "output format: text, json, md or tree")
	f.StringVarP(&opts.output, "output", "o", "", "write output to this file instead of stdout")
	f.StringVar(&opts.sort, "sort", "none", "sort order: none, port or pid")
	f.DurationVar(&opts.interval, "interval", config.DefaultInterval, "refresh interval of the interactive view")

	cmd.SetVersionTemplate("lsport {{.Version}}\n")
	cmd.AddCommand(newCaptureCmd(opts), newServicesCmd(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads the config file and lets explicitly set flags override it.
func (o *options) load(cmd *cobra.Command) error {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	o.configPath = path
	o.cfg = cfg

	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}
	if cmd.Flags().Lookup("format") != nil && !changed("format") {
		o.format = cfg.Format
	}
	if cmd.Flags().Lookup("output") != nil && !changed("output") {
		o.output = cfg.Output
	}
	if !changed("sort") && cfg.Sort != "" {
		o.sort = cfg.Sort
	}
	if !changed("method") && cfg.Method != "" {
		o.method = cfg.Method
	}
	if !changed("snapshot") {
		o.snapshot = cfg.Snapshot
	}
	if !changed("proc-root") {
		o.procRoot = cfg.ProcRoot
	}
	if !changed("interval") && cfg.Interval > 0 {
		o.interval = time.Duration(cfg.Interval)
	}
	if !changed("services-file") {
		o.servicesFile = cfg.ServicesFile
	}
	return nil
}

func (o *options) run() error {
	sortKey, err := output.ParseSortKey(o.sort)
	if err != nil {
		return err
	}

	interactive := o.format == "" && o.output == "" && o.isTerminal()

	logOut := o.stderr
	if interactive {
		logOut = io.Discard
	}
	log, closeLog, err := o.newLogger(logOut)
	if err != nil {
		return err
	}
	defer closeLog()

	scanner, err := o.newScanner(log)
	if err != nil {
		return err
	}

	ports, err := scanner.Scan()
	if err != nil {
		return err
	}
	log.WithField("count", len(ports)).Debug("scan complete")

	if interactive {
		return o.runTUI(tui.Options{
			Version:        versionString(),
			Scan:           scanner.Scan,
			Interval:       o.interval,
			Sort:           sortKey,
			Favorites:      o.cfg.Favorites,
			ToggleFavorite: o.toggleFavorite,
			Log:            log,
		}, ports)
	}

	format := output.FormatText
	if o.format != "" {
		if format, err = output.ParseFormat(o.format); err != nil {
			return err
		}
	}

	output.Sort(ports, sortKey)

	var buf bytes.Buffer
	if err := output.Render(&buf, format, ports, output.Options{Color: o.colorEnabled()}); err != nil {
		return err
	}
	return o.write(buf.Bytes())
}

func (o *options) colorEnabled() bool {
	return o.output == "" && os.Getenv("NO_COLOR") == "" && o.isTerminal()
}

// write sends rendered output to --output or stdout.
func (o *options) write(data []byte) error {
	if o.output == "" {
		_, err := o.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(o.output, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (o *options) toggleFavorite(port int) (bool, error) {
	on := o.cfg.ToggleFavorite(port)
	if err := config.Save(o.configPath, o.cfg); err != nil {
		o.cfg.ToggleFavorite(port)
		return !on, fmt.Errorf("save favorites: %w", err)
	}
	return on, nil
}

// newLogger builds the logger for one run. Logs go to --log-file when set,
// otherwise to fallback.
func (o *options) newLogger(fallback io.Writer) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetOutput(fallback)

	level := logrus.WarnLevel
	if o.cfg != nil && o.cfg.LogLevel != "" {
		l, err := logrus.ParseLevel(o.cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	if o.verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	closeFn := func() {}
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		log.SetOutput(f)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
		closeFn = func() { f.Close() }
	}
	return log, closeFn, nil
}
