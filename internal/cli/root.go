package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	campaignbridge "github.com/opengovern/campaign-bridge"
	"github.com/opengovern/campaign-bridge/adapters"
	"github.com/opengovern/campaign-bridge/auth"
	"github.com/opengovern/campaign-bridge/internal/config"
	"github.com/opengovern/campaign-bridge/mock"
	"github.com/opengovern/campaign-bridge/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// globalFlags are bound to the root command's persistent flags.
type globalFlags struct {
	configPath string
	envFile    string
	mock       bool
	debug      bool
	output     string
}

// app is what every subcommand works with once the root pre-run has built the client.
type app struct {
	flags    globalFlags
	cfg      *config.Config
	sdk      *campaignbridge.CampaignBridge
	svc      *services.Services
	registry *prometheus.Registry
	out      io.Writer

	// newAdapter lets tests replace the transport.
	newAdapter func(cfg *config.Config) (campaignbridge.ProviderAdapter, error)
}

// NewRootCmd builds the campaignctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "campaignctl",
		Short: "Command-line client for the email-marketing API",
		Long: `campaignctl manages contacts, campaigns and templates and reads delivery stats.

Every call goes through the resilient client: bounded per-attempt timeouts, exponential
backoff on transient failures and Ctrl-C cancellation.

Get started:
  campaignctl --mock contacts list       Browse the built-in demo data
  campaignctl -c campaignctl.yaml stats overview
  campaignctl campaigns schedule cp_005 --in 24h`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", version, buildTime, gitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.dumpMetrics(cmd.ErrOrStderr())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "Path to configuration file")
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "Path to a .env file loaded before the config")
	pf.BoolVar(&a.flags.mock, "mock", false, "Serve requests from the in-memory demo backend")
	pf.BoolVar(&a.flags.debug, "debug", false, "Log every attempt, retry and backoff")
	pf.StringVarP(&a.flags.output, "output", "o", outputTable, "Output format: table or json")

	root.AddCommand(
		a.contactsCmd(),
		a.campaignsCmd(),
		a.templatesCmd(),
		a.statsCmd(),
	)
	return root
}

// setup loads configuration and wires the client, adapter and services.
func (a *app) setup() error {
	if a.flags.output != outputTable && a.flags.output != outputJSON {
		return fmt.Errorf("unknown output format %q", a.flags.output)
	}
	if err := config.LoadEnv(a.flags.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	newAdapter := a.newAdapter
	if newAdapter == nil {
		newAdapter = a.buildAdapter
	}
	adapter, err := newAdapter(cfg)
	if err != nil {
		return err
	}

	defaults := campaignbridge.NewDefaults()
	defaults.BasePath = cfg.API.BasePath
	defaults.Timeout = cfg.API.Timeout
	defaults.Retries = cfg.Retry.Retries
	defaults.RetryDelay = cfg.Retry.Delay
	defaults.MaxRetryDelay = cfg.Retry.MaxDelay
	for k, v := range cfg.API.Headers {
		defaults.Headers[k] = v
	}
	if n := cfg.RateLimit.MaxRequestsOverride; n > 0 {
		defaults.MaxRequestsOverride = &n
	}

	opts := []campaignbridge.Option{
		campaignbridge.WithName("campaignctl"),
		campaignbridge.WithDefaults(defaults),
	}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		opts = append(opts, campaignbridge.WithMetrics(campaignbridge.NewMetrics(a.registry)))
	}
	if a.flags.debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		opts = append(opts, campaignbridge.WithLogger(logger))
	}

	a.sdk = campaignbridge.New(adapter, opts...)
	a.svc = services.New(a.sdk)
	return nil
}

func (a *app) buildAdapter(cfg *config.Config) (campaignbridge.ProviderAdapter, error) {
	var signer *auth.Signer
	if cfg.Auth.Secret != "" {
		s, err := auth.NewSigner([]byte(cfg.Auth.Secret), cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create token signer: %w", err)
		}
		signer = s
	}

	if a.flags.mock {
		m := mock.NewAdapter()
		m.Prefix = cfg.API.BasePath
		m.Latency = cfg.Mock.Latency
		if cfg.Mock.MaxRequests > 0 {
			m.SetRateLimitDefaults(cfg.Mock.MaxRequests, cfg.Mock.WindowSecs)
		}
		if signer == nil {
			return m, nil
		}
		m.Verifier = signer
		return &tokenAdapter{Adapter: m, source: signer.TokenSource(cfg.Auth.Subject, cfg.Auth.AccountID)}, nil
	}

	opts := []adapters.RESTOption{adapters.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)}
	if signer != nil {
		opts = append(opts, adapters.WithTokenSource(signer.TokenSource(cfg.Auth.Subject, cfg.Auth.AccountID)))
	}
	return adapters.NewRESTAdapter(cfg.API.BaseURL, opts...), nil
}

// dumpMetrics writes the collected metrics in the Prometheus text format.
func (a *app) dumpMetrics(w io.Writer) error {
	if a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// commandContext is cancelled on SIGINT or SIGTERM so an in-flight call stops promptly.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		os.Exit(1)
	}
}

// SetVersion sets the version info.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// SetGitCommit sets the commit the binary was built from.
func SetGitCommit(c string) {
	gitCommit = c
}
