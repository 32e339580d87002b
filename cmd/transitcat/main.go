// Command transitcat reads a request document describing a bus network and
// a list of queries, and writes the answers as a JSON array.
//
//	transitcat -in requests.json -out answers.json
//	transitcat -gtfs feed.zip -metrics-file run.prom < requests.json.gz
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/klauspost/compress/gzip"

	"github.com/busnet/transitcat/internal/app"
	"github.com/busnet/transitcat/internal/appconf"
	"github.com/busnet/transitcat/internal/clock"
	"github.com/busnet/transitcat/internal/gtfsload"
	"github.com/busnet/transitcat/internal/jsondoc"
	"github.com/busnet/transitcat/internal/logging"
	"github.com/busnet/transitcat/internal/requests"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type options struct {
	in          string
	out         string
	configPath  string
	envFile     string
	env         string
	logLevel    string
	metricsFile string
	gtfsPath    string
	indent      int
	dump        bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var opts options
	fs := flag.NewFlagSet("transitcat", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.in, "in", "-", "Request document path, - for stdin (.gz is decompressed)")
	fs.StringVar(&opts.out, "out", "-", "Response document path, - for stdout (.gz is compressed)")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.envFile, "env-file", ".env", "File of TRANSITCAT_* variables loaded into the environment")
	fs.StringVar(&opts.env, "env", "", "Environment (development|test|production)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	fs.StringVar(&opts.gtfsPath, "gtfs", "", "GTFS static zip merged into the network before base requests")
	fs.IntVar(&opts.indent, "indent", 0, "Indent the response by this many spaces")
	fs.BoolVar(&opts.dump, "dump", false, "Dump the loaded network to stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	if fs.NArg() > 0 {
		return options{}, nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, fs, nil
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *appconf.Config, opts options, fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "env":
			var env appconf.Environment
			if env, err = appconf.EnvFromString(opts.env); err == nil {
				cfg.Env = env
			}
		case "log-level":
			cfg.LogLevel = strings.ToLower(opts.logLevel)
		case "metrics-file":
			cfg.MetricsFile = opts.metricsFile
		case "gtfs":
			cfg.GTFSPath = opts.gtfsPath
		case "indent":
			cfg.Indent = opts.indent
		}
	})
	return err
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	cfg, err := appconf.Load(appconf.Sources{DotEnvPath: opts.envFile, ConfigPath: opts.configPath})
	if err == nil {
		err = applyFlags(&cfg, opts, fs)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitFailure
	}

	application, err := BuildApplication(cfg, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	ctx := logging.WithLogger(context.Background(), application.Logger)

	if err := process(ctx, application, opts, stdin, stdout, stderr); err != nil {
		logging.LogError(application.Logger, "run_failed", err,
			slog.String("component", "main"))
		return exitFailure
	}

	if cfg.MetricsFile != "" {
		if err := application.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return exitFailure
		}
	}
	return exitOK
}

func process(ctx context.Context, application *app.Application, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := logging.FromContext(ctx)
	start := application.Clock.Now()

	data, err := readInput(opts.in, stdin, logger)
	if err != nil {
		return err
	}
	doc, err := jsondoc.Parse(data)
	if err != nil {
		return err
	}
	in, err := requests.ReadInput(doc)
	if err != nil {
		return fmt.Errorf("invalid request document: %w", err)
	}

	if path := application.Config.GTFSPath; path != "" {
		feed, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read GTFS feed: %w", err)
		}
		if _, err := gtfsload.Load(feed, application.Catalogue, logger); err != nil {
			return err
		}
	}

	if _, err := requests.Prepare(application, in); err != nil {
		return err
	}

	if opts.dump {
		dumpNetwork(stderr, application)
	}

	results, err := requests.NewHandler(application).HandleAll(in.Stats)
	if err != nil {
		return err
	}
	out, err := requests.Encode(results)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.out, stdout, out, application.Config.Indent); err != nil {
		return err
	}

	logging.LogOperation(logger, "run_complete",
		slog.String("component", "main"),
		slog.Int("requests", len(results)),
		slog.Duration("duration", clock.Since(application.Clock, start)))
	return nil
}

func readInput(path string, stdin io.Reader, logger *slog.Logger) ([]byte, error) {
	var r io.Reader = stdin
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open request document: %w", err)
		}
		defer logging.SafeCloseWithLogging(f, logger, "close_input")
		r = f
	}

	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer logging.SafeCloseWithLogging(zr, logger, "close_gzip_input")
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read request document: %w", err)
	}
	return data, nil
}

func writeOutput(path string, stdout io.Writer, v any, indent int) (err error) {
	var w io.Writer = stdout
	if path != "-" && path != "" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return fmt.Errorf("failed to create response document: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close response document: %w", cerr)
			}
		}()
		w = f
	}

	bw := bufio.NewWriter(w)
	var enc io.Writer = bw
	var zw *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		zw = gzip.NewWriter(bw)
		enc = zw
	}

	if err := jsondoc.Encode(enc, v, indent); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write response document: %w", err)
	}
	return nil
}

func dumpNetwork(w io.Writer, application *app.Application) {
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
		MaxDepth:                3,
	}
	stops, routes, distances := application.Catalogue.Counts()
	fmt.Fprintf(w, "network: %d stops, %d routes, %d distances\n", stops, routes, distances)
	cfg.Fdump(w, application.Catalogue.Routes())
}
