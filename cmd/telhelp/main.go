package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/auxspace/telhelp/internal/buildinfo"
	"github.com/auxspace/telhelp/pkg/config"
	"github.com/auxspace/telhelp/pkg/format"
	"github.com/auxspace/telhelp/pkg/pipeline"
	"github.com/auxspace/telhelp/pkg/tui/plot"
)

// stdoutSymbol selects standard output as the output target.
const stdoutSymbol = "-"

var (
	cfgPath    string
	timebase   float64
	epochStr   string
	dataFormat string
	outputPath string
	filterExpr string
	inPlace    bool
	showOnly   bool
	noShow     bool
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "telhelp <input-file>",
	Short: "Rebase relative telemetry timestamps and convert line protocol data",
	Long: "Telhelp converts the relative timestamps of InfluxDB line protocol telemetry\n" +
		"to absolute ones and re-serializes the records as line protocol, CSV,\n" +
		"multi-CSV, JSON or JSON Lines. It can also plot the data in the terminal.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "config file (default telhelp.yaml if present)")
	rootCmd.Flags().Float64Var(&timebase, "timebase", 0, "raw timestamp units per second; 0 converts formats without rebasing")
	rootCmd.Flags().StringVar(&epochStr, "epoch", "", "absolute start of the relative timestamps, RFC 3339; empty aligns the newest record with now")
	rootCmd.Flags().StringVar(&dataFormat, "data-format", "", "output format: influxdb-lines, csv, multi-csv, json, json-lines")
	rootCmd.Flags().StringVarP(&outputPath, "output-file", "o", "", "output path; '-' or empty writes to stdout")
	rootCmd.Flags().StringVar(&filterExpr, "filter", "", "record predicate, e.g. 'measurement == \"bno08x\" && fields.accel_z > 0'")
	rootCmd.Flags().BoolVar(&inPlace, "in-place", false, "also rewrite the input file with the converted data")
	rootCmd.Flags().BoolVar(&showOnly, "show-only", false, "only plot the data, don't convert it; conflicts with --no-show")
	rootCmd.Flags().BoolVar(&noShow, "no-show", false, "do not plot the data; conflicts with --show-only")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(formatsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "telhelp %s (%s) built %s\n",
			buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported output data formats",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range format.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Checked after layering so no_show from the config file or the
	// environment conflicts the same way the flag does.
	if showOnly && cfg.NoShow {
		return fmt.Errorf("--show-only conflicts with --no-show (or a no_show setting), choose one")
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "config:", e)
		}
		return fmt.Errorf("invalid configuration")
	}

	logger := newLogger(cfg.LogLevel)

	epoch, err := cfg.EpochTime()
	if err != nil {
		return err
	}
	outFormat, err := format.Parse(cfg.Format)
	if err != nil {
		return err
	}

	tb := cfg.Timebase
	if showOnly {
		// Plot the input as-is, no timestamp correction.
		tb = 0
	}

	p, err := pipeline.New(pipeline.Options{
		Epoch:    epoch,
		Timebase: tb,
		Format:   outFormat,
		Filter:   cfg.Filter,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	inputPath := args[0]
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	recs, sum, err := p.Process(in)
	in.Close()
	if err != nil {
		return err
	}

	if !showOnly {
		var buf bytes.Buffer
		if err := p.Encode(&buf, recs); err != nil {
			return err
		}
		if err := writeOutputs(cfg.Output, inputPath, buf.Bytes()); err != nil {
			return err
		}
		logSummary(logger, sum)
	}

	if !cfg.NoShow {
		return plot.Show(recs)
	}
	return nil
}

// loadConfig layers the YAML file, environment and explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgPath
	optional := path == ""
	if optional {
		path = config.DefaultFile
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("timebase") {
		cfg.Timebase = timebase
	}
	if epochStr != "" {
		cfg.Epoch = epochStr
	}
	if dataFormat != "" {
		cfg.Format = dataFormat
	}
	if outputPath != "" {
		cfg.Output = outputPath
	}
	if filterExpr != "" {
		cfg.Filter = filterExpr
	}
	if noShow {
		cfg.NoShow = true
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// writeOutputs sends the encoded data to the configured target: a
// file, stdout for "-" or empty, and additionally the input file when
// --in-place is set.
func writeOutputs(output, inputPath string, data []byte) error {
	targets := make([]string, 0, 2)
	switch {
	case output == stdoutSymbol:
		targets = append(targets, stdoutSymbol)
	case output == "":
		if !inPlace {
			targets = append(targets, stdoutSymbol)
		}
	default:
		targets = append(targets, output)
	}
	if inPlace {
		targets = append(targets, inputPath)
	}

	for _, target := range targets {
		if target == stdoutSymbol {
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
			continue
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

func logSummary(logger *slog.Logger, sum pipeline.Summary) {
	if sum.Records == 0 {
		logger.Warn("no records in input")
		return
	}
	if sum.Rebased {
		logger.Info("processed telemetry",
			"records", sum.Records,
			"span", sum.Span().String(),
			"earliest", time.Unix(0, sum.Earliest).UTC().Format(time.RFC3339),
			"latest", time.Unix(0, sum.Latest).UTC().Format(time.RFC3339),
		)
		return
	}
	logger.Info("processed telemetry",
		"records", sum.Records,
		"earliest", sum.Earliest,
		"latest", sum.Latest,
	)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
