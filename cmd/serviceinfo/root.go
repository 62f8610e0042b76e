package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mdotservice/serviceinfo/modules/inventory/infrastructure/serviceapi"
	"github.com/mdotservice/serviceinfo/modules/inventory/services"
	"github.com/mdotservice/serviceinfo/pkg/configuration"
	"github.com/mdotservice/serviceinfo/pkg/eventbus"
	"github.com/mdotservice/serviceinfo/pkg/formapi"
	"github.com/mdotservice/serviceinfo/pkg/metrics"
)

type globalOptions struct {
	baseURL     string
	metricsFile string
	envFiles    []string
}

// app is built once per invocation, before any subcommand runs.
type app struct {
	opts globalOptions

	cfg *configuration.Configuration
	log *logrus.Entry
	api *serviceapi.Client
	bus eventbus.EventBusWithError
}

func (a *app) init() error {
	cfg, err := configuration.New(a.opts.envFiles)
	if err != nil {
		return withCode(exitUsage, err)
	}
	a.cfg = cfg
	if u := strings.TrimSpace(a.opts.baseURL); u != "" {
		cfg.Service.URL = u
		if err := cfg.Service.Validate(); err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --base-url: %w", err))
		}
	}
	if f := strings.TrimSpace(a.opts.metricsFile); f != "" {
		cfg.MetricsTextfile = f
	}

	a.log = logrus.NewEntry(cfg.Logger())
	client, err := formapi.NewClient(formapi.Options{
		URL:             cfg.Service.URL,
		Timeout:         cfg.Service.Timeout,
		RequestIDHeader: cfg.Service.RequestIDHeader,
		Logger:          a.log,
	})
	if err != nil {
		return withCode(exitUsage, err)
	}
	a.api = serviceapi.New(client)
	a.bus = eventbus.New(a.log)
	return nil
}

// close flushes metrics and releases the log file. Safe before init.
func (a *app) close() {
	if a.cfg == nil {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsTextfile, nil); err != nil {
		a.log.WithError(err).Warn("failed to write metrics textfile")
	}
	a.cfg.Unload()
}

func (a *app) catalog() *services.CatalogService {
	return services.NewCatalogService(a.api, a.log)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "serviceinfo",
		Short:         "Service info catalog client: browse items and import quantities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	cmd.PersistentFlags().StringVar(&a.opts.baseURL, "base-url", "", "Service info endpoint (overrides SERVICE_INFO_URL)")
	cmd.PersistentFlags().StringVar(&a.opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile on exit (overrides METRICS_TEXTFILE)")

	cmd.AddCommand(newCategoriesCmd(a))
	cmd.AddCommand(newItemsCmd(a))
	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newUpdateCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newMoveToHistoryCmd(a))
	cmd.AddCommand(newDelistCmd(a))
	cmd.AddCommand(newResetAllCmd(a))
	cmd.AddCommand(newDatesCmd(a))
	return cmd
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	a := &app{opts: globalOptions{envFiles: configuration.DefaultEnvFiles}}
	defer a.close()
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	return cmd.ExecuteContext(ctx)
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	cancel()
	if err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
