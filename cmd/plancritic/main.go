// Command plancritic runs the plan, execute and critique agent as an
// interactive console.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/martinemde/plancritic/completion"
	"github.com/martinemde/plancritic/internal/app"
	"github.com/martinemde/plancritic/internal/config"
	"github.com/martinemde/plancritic/internal/console"
	"github.com/martinemde/plancritic/internal/observability"
)

// errReported marks failures already printed to the user.
var errReported = errors.New("reported")

type options struct {
	configFile    string
	model         string
	provider      string
	maxIterations int
	logLevel      string
	prompt        string
	example       bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "plancritic",
		Short: "Plan, execute and critique agent",
		Long: `plancritic answers each request with a three stage loop: a planner
drafts a plan, an executor carries it out and a critic decides whether the
answer is good enough, should be revised, or needs a new plan.

Without --prompt it starts an interactive console; type 'salir' to quit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model id for every stage")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Provider name (openai, anthropic, ollama, ...)")
	cmd.Flags().IntVar(&opts.maxIterations, "max-iterations", 0, "Maximum critique iterations per request")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "Run a single request and exit")
	cmd.Flags().BoolVar(&opts.example, "example", false, "Run the built-in example before the console")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, &cfg)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		var cfgErr *completion.ConfigurationError
		if !errors.As(err, &cfgErr) {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "❌ Error: %s\n", cfgErr.Message)
		if errors.Is(err, config.ErrMissingAPIKey) && cfg.Provider == "openai" {
			fmt.Fprintln(out, "Obtén tu API key en: https://platform.openai.com/api-keys")
		}
		return errReported
	}

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer("plancritic", cfg.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}
	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr, logger)
	}

	a, err := app.Build(cfg, app.WithLogger(logger))
	if err != nil {
		return err
	}
	defer a.Close()

	interactive := console.IsTerminal(os.Stdin)
	c := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), a.Session, console.WithInteractive(interactive))
	a.Session.Subscribe(c.Listener())

	if opts.prompt != "" {
		if _, err := c.Ask(ctx, opts.prompt); err != nil {
			return fmt.Errorf("%w: %v", errReported, err)
		}
		return nil
	}
	if opts.example {
		if err := c.Example(ctx); err != nil {
			return err
		}
	}
	c.Banner()
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// applyFlags overrides cfg with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.ModelID = opts.model
	}
	if flags.Changed("provider") {
		cfg.SetProvider(opts.provider)
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = opts.maxIterations
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}
