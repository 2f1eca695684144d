// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chihaya/incstats/format"
	httpfrontend "github.com/chihaya/incstats/frontend/http"
	"github.com/chihaya/incstats/ingest"
	"github.com/chihaya/incstats/pkg/log"
	"github.com/chihaya/incstats/pkg/metrics"
	"github.com/chihaya/incstats/pkg/stop"
	"github.com/chihaya/incstats/storage"
)

// stdinName is the file argument that reads samples from standard input.
const stdinName = "-"

func loadConfig(cmd *cobra.Command) (Config, error) {
	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return Config{}, err
	}

	configFile, err := ParseConfigFile(configFilePath)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config")
	}

	return configFile.Incstats, nil
}

// signalContext returns a context that is canceled by the first shutdown
// signal.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, ShutdownSignals...)
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()

	return ctx, cancel
}

// openSources opens every named file. The caller closes the returned
// closers.
func openSources(names []string, stdin io.Reader) ([]ingest.Source, []io.Closer, error) {
	if len(names) == 0 {
		names = []string{stdinName}
	}

	var (
		sources []ingest.Source
		closers []io.Closer
	)
	for _, name := range names {
		if name == stdinName {
			sources = append(sources, ingest.Source{Name: "<stdin>", Reader: stdin})
			continue
		}

		f, err := os.Open(name)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, nil, err
		}
		sources = append(sources, ingest.Source{Name: name, Reader: f})
		closers = append(closers, f)
	}

	return sources, closers, nil
}

// runReport summarizes the samples of every named file and writes the report
// to stdout.
func runReport(ctx context.Context, cfg Config, names []string, stdin io.Reader, stdout io.Writer) error {
	ingestCfg, err := cfg.Ingest.Validate()
	if err != nil {
		return err
	}

	sources, closers, err := openSources(names, stdin)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	acc, err := ingest.ScanAll(ctx, sources, ingestCfg)
	if err != nil {
		return err
	}
	log.Debug("summarized samples", log.Fields{
		"sources":  len(sources),
		"count":    acc.Count(),
		"distinct": acc.Distinct(),
	})

	return format.Write(stdout, cfg.Report.Format, acc.Report(), cfg.Report.Options)
}

// ReportCmdFunc implements a Cobra command that prints the statistics of the
// samples read from files or standard input.
func ReportCmdFunc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Report.Format, _ = flags.GetString("format")
	}
	if flags.Changed("precision") {
		cfg.Report.Precision, _ = flags.GetInt("precision")
	}
	if flags.Changed("prefix") {
		cfg.Report.Prefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("terminator") {
		cfg.Report.Terminator, _ = flags.GetString("terminator")
	}
	if flags.Changed("group-digits") {
		cfg.Report.GroupDigits, _ = flags.GetBool("group-digits")
	}
	if flags.Changed("workers") {
		cfg.Ingest.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("skip-invalid") {
		cfg.Ingest.SkipInvalid, _ = flags.GetBool("skip-invalid")
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	return runReport(ctx, cfg, args, os.Stdin, cmd.OutOrStdout())
}

// Server ties a Store to the frontends serving it.
type Server struct {
	store    storage.Store
	stoppers *stop.Group
}

// NewServer creates the Store, registers its metrics and starts serving the
// HTTP API and, if configured, the standalone metrics endpoint.
func NewServer(cfg Config, reg prometheus.Registerer, g prometheus.Gatherer) (*Server, error) {
	log.Debug("starting incstats", cfg)

	store, err := storage.NewStore(cfg.Storage.Name, cfg.Storage.Config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create store")
	}

	if err := reg.Register(metrics.NewCollector(cfg.Namespace, store)); err != nil {
		store.Stop().Wait()
		return nil, errors.Wrap(err, "failed to register metrics")
	}

	s := &Server{store: store, stoppers: stop.NewGroup()}

	frontend, err := httpfrontend.NewFrontend(store, g, cfg.HTTPConfig)
	if err != nil {
		store.Stop().Wait()
		return nil, errors.Wrap(err, "failed to start HTTP frontend")
	}
	s.stoppers.Add(frontend)

	if cfg.MetricsAddr != "" {
		log.Info("starting metrics server", log.Fields{"addr": cfg.MetricsAddr})
		s.stoppers.Add(metrics.NewServer(cfg.MetricsAddr, g))
	}

	return s, nil
}

// Stop shuts down the frontends before the Store they serve.
func (s *Server) Stop() []error {
	errs := s.stoppers.Stop().Wait()
	return append(errs, s.store.Stop().Wait()...)
}

// ServeCmdFunc implements a Cobra command that runs the HTTP API until a
// shutdown signal arrives.
func ServeCmdFunc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
		cfg.HTTPConfig.Addr = addr
	}
	if addr, _ := cmd.Flags().GetString("metrics-addr"); cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = addr
	}

	s, err := NewServer(cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()
	<-ctx.Done()

	log.Info("shutting down")
	if errs := s.Stop(); len(errs) != 0 {
		for _, err := range errs {
			log.Error("failed while shutting down", log.Err(err))
		}
		return errors.New("failed to shut down cleanly")
	}

	return nil
}

// PreRunCmdFunc handles command line flags for the logger.
func PreRunCmdFunc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	if debugLog, _ := cmd.Flags().GetBool("debug"); debugLog {
		log.SetDebug(true)
		log.Info("enabled debug logging")
	}

	if jsonLog, _ := cmd.Flags().GetBool("json"); jsonLog {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.Info("enabled JSON logging")
	}

	return nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "incstats",
		Short:             "Incremental summary statistics",
		Long:              "Summary statistics over streams of numeric samples",
		PersistentPreRunE: PreRunCmdFunc,
		SilenceUsage:      true,
	}

	rootCmd.PersistentFlags().String("config", "", "location of configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "enable json logging")

	reportCmd := &cobra.Command{
		Use:   "report [files...]",
		Short: "Print summary statistics",
		Long:  `Reads whitespace, "," or ";" separated samples from files ("-" is stdin) and prints their summary statistics`,
		RunE:  ReportCmdFunc,
	}
	reportCmd.Flags().StringP("format", "f", format.Text, "output format: text, json or yaml")
	reportCmd.Flags().IntP("precision", "p", -1, "decimals to round values to, negative for no rounding")
	reportCmd.Flags().String("prefix", "", "text written before every line")
	reportCmd.Flags().String("terminator", "\n", "text written after every line")
	reportCmd.Flags().Bool("group-digits", false, "separate thousands in the sample count")
	reportCmd.Flags().IntP("workers", "w", 0, "number of parsing workers, 0 for one per CPU")
	reportCmd.Flags().Bool("skip-invalid", false, "skip tokens that are not finite numbers")
	rootCmd.AddCommand(reportCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTTP API for streaming samples",
		Long:  "Collects samples posted over HTTP and serves their summary statistics",
		RunE:  ServeCmdFunc,
	}
	serveCmd.Flags().String("addr", "", "address of the HTTP API")
	serveCmd.Flags().String("metrics-addr", "", "address of the standalone metrics server")
	rootCmd.AddCommand(serveCmd)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal("failed when executing root cobra command: " + err.Error())
	}
}
