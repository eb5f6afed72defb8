package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stoik/phishguard/internal/adapters/fetch"
	"github.com/stoik/phishguard/internal/adapters/htmlparse"
	"github.com/stoik/phishguard/internal/adapters/storage"
	"github.com/stoik/phishguard/internal/application"
	"github.com/stoik/phishguard/internal/config"
	"github.com/stoik/phishguard/internal/domain/detection"
	"github.com/stoik/phishguard/internal/observability"
	"github.com/stoik/phishguard/internal/ports"
	"go.uber.org/zap"
)

// app holds the state shared by every subcommand once the root command has
// loaded configuration
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "phishguard",
		Short:         "Detect pages impersonating legitimate sites",
		Long:          "phishguard checks a web page for links to typosquatted domains and for content copied from known legitimate sites.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./phishguard.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("logger.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newAnalyzeCmd(a), newServeCmd(a), newReportsCmd(a))
	return root
}

// initialize reads the config file and environment, then starts logging
func (a *app) initialize() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("phishguard")
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment only
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = observability.Setup(cfg.Logger)
	a.logger.Debug("Configuration loaded",
		zap.String("config_file", a.v.ConfigFileUsed()),
		zap.Strings("legitimate_domains", cfg.LegitimateDomains),
		zap.String("domain_reducer", cfg.Analysis.DomainReducer),
	)
	return nil
}

// openStore connects to the report database, or returns nil when persistence is disabled
func (a *app) openStore(ctx context.Context) (ports.ReportStore, error) {
	if a.cfg.Database.URL == "" {
		return nil, nil
	}

	store, err := storage.NewPostgresStore(ctx, a.cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	a.logger.Info("Connected to PostgreSQL")
	return store, nil
}

// newService wires the analysis service from configuration
func (a *app) newService(store ports.ReportStore) (*application.AnalysisService, error) {
	reducer, err := detection.ReducerFor(a.cfg.Analysis.DomainReducer)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewClient(fetch.Config{
		Timeout:      a.cfg.Fetch.Timeout,
		UserAgent:    a.cfg.Fetch.UserAgent,
		MaxBodyBytes: a.cfg.Fetch.MaxBodyBytes,
	}, a.logger)

	opts := []application.Option{
		application.WithWorkers(a.cfg.Analysis.Workers),
		application.WithLogger(a.logger),
	}
	if store != nil {
		opts = append(opts, application.WithReportStore(store))
	}

	return application.NewAnalysisService(
		fetcher,
		htmlparse.NewExtractor(),
		detection.NewTyposquattingDetector(reducer),
		detection.NewContentSimilarityDetector(nil),
		a.cfg.LegitimateDomains,
		opts...,
	), nil
}
