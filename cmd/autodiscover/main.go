package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	sprintfLogging "github.com/core-tools/hsu-core/pkg/logging/sprintf"

	"github.com/core-tools/hsu-autodiscovery/pkg/agent"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/metrics"
	"github.com/core-tools/hsu-autodiscovery/pkg/probe"
	"github.com/core-tools/hsu-autodiscovery/pkg/probes"

	flags "github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type flagOptions struct {
	Config          string        `long:"config" description:"path to the agent configuration file"`
	Probes          []string      `long:"probe" description:"run only the named probe (repeatable)"`
	Services        bool          `long:"services" description:"also discover services under found servers"`
	Output          string        `long:"output" choice:"yaml" choice:"json" description:"report format"`
	Interval        time.Duration `long:"interval" description:"repeat discovery at this interval until interrupted"`
	LogLevel        string        `long:"log-level" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"log level"`
	LogFormat       string        `long:"log-format" choice:"console" choice:"json" default:"console" description:"zap log encoding"`
	LogBackend      string        `long:"log-backend" choice:"zap" choice:"std" default:"zap" description:"logging backend"`
	MetricsTextfile string        `long:"metrics-textfile" description:"write cycle metrics to this file after every cycle"`
	List            bool          `long:"list" description:"list the built-in probes and exit"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s , ", module)
}

func main() {
	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	var err error
	_, err = parser.ParseArgs(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	if opts.List {
		for _, name := range probes.Names() {
			fmt.Println(name)
		}
		return
	}

	config := agent.DefaultConfig()
	if opts.Config != "" {
		config, err = agent.LoadConfigFromFile(opts.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	}
	applyFlags(config, opts)

	if err := agent.ValidateConfig(config); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation failed: %v\n", err)
		os.Exit(1)
	}

	logger, sync, err := newLogger(opts.LogBackend, config.Agent.LogLevel, opts.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer sync()

	if err := run(config, opts, logger); err != nil {
		logger.Errorf("Discovery failed: %v", err)
		sync()
		os.Exit(1)
	}
}

func applyFlags(config *agent.Config, opts flagOptions) {
	if opts.LogLevel != "" {
		config.Agent.LogLevel = opts.LogLevel
	}
	if opts.Output != "" {
		config.Agent.Output = agent.OutputFormat(opts.Output)
	}
	if opts.Interval != 0 {
		config.Agent.Interval = opts.Interval
	}
	if opts.Services {
		services := true
		config.Agent.Services = &services
	}
}

// newLogger returns the logger plus a function flushing it.
func newLogger(backend, level, format string) (logging.Logger, func(), error) {
	if backend == "std" {
		std := sprintfLogging.NewStdSprintfLogger()
		return logging.NewLogger(logPrefix("autodiscovery"), logging.LogFuncs{
			Debugf: std.Debugf,
			Infof:  std.Infof,
			Warnf:  std.Warnf,
			Errorf: std.Errorf,
		}), func() {}, nil
	}

	zapLogger, err := logging.NewZapLogger(logging.ZapConfig{Level: level, Format: format})
	if err != nil {
		return nil, nil, err
	}
	sugar := zapLogger.With(zap.Int("pid", os.Getpid())).Sugar()
	return logging.FromZap(logPrefix("autodiscovery"), sugar), func() { _ = zapLogger.Sync() }, nil
}

func run(config *agent.Config, opts flagOptions, logger logging.Logger) error {
	selected, err := agent.SelectProbes(config, opts.Probes, logger)
	if err != nil {
		return err
	}
	logger.Infof("Probes selected: %d", len(selected))

	var collector *metrics.Collector
	if opts.MetricsTextfile != "" {
		collector = metrics.NewCollector()
	}

	runner := agent.NewRunner(agent.RunnerOptions{
		Probes: selected,
		Host: probe.HostContext{
			PlatformName:   config.Agent.PlatformName,
			PlatformConfig: config.PlatformConfig(),
		},
		Metrics: collector,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	if runtime.GOOS == "windows" {
		signal.Notify(sig) // Unix signals not implemented on Windows
	} else {
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	}
	defer signal.Stop(sig)

	go func() {
		select {
		case receivedSignal := <-sig:
			logger.Infof("Received signal: %v", receivedSignal)
			cancel()
		case <-ctx.Done():
		}
	}()

	cycle := agent.CycleOptions{Services: config.ServicesEnabled()}
	return runner.Run(ctx, config.Agent.Interval, cycle, func(report *agent.Report) error {
		if err := agent.WriteReport(os.Stdout, report, config.Agent.Output); err != nil {
			return err
		}
		if collector != nil {
			if err := collector.WriteTextfile(opts.MetricsTextfile); err != nil {
				return err
			}
			logger.Debugf("Metrics written to %s", opts.MetricsTextfile)
		}
		return nil
	})
}
