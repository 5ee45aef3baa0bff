package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/preston-bernstein/replicawatch/internal/config"
	"github.com/preston-bernstein/replicawatch/internal/logging"
	"github.com/preston-bernstein/replicawatch/internal/providers"
	"github.com/preston-bernstein/replicawatch/internal/providers/deployment"
)

const (
	flagURL     = "url"
	flagToken   = "token"
	flagTimeout = "timeout"
	flagVerbose = "verbose"
)

type rootOptions struct {
	url     string
	token   string
	timeout time.Duration
	verbose bool
}

// Root returns the replicactl command tree.
func Root() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "replicactl",
		Short:         "Inspect the replicas of a deployment",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.applyConfig(cmd)
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.url, flagURL, "", "Deployment URL (default from DEPLOYMENT_URL)")
	flags.StringVar(&opts.token, flagToken, "", "Session token (default from DEPLOYMENT_SESSION_TOKEN)")
	flags.DurationVar(&opts.timeout, flagTimeout, 0, "HTTP timeout per request (default from DEPLOYMENT_TIMEOUT)")
	flags.BoolVarP(&opts.verbose, flagVerbose, "v", false, "Log poller activity to stderr")

	cmd.AddCommand(listCommand(opts), watchCommand(opts))
	return cmd
}

// applyConfig fills every flag the user did not set from the environment or config file.
func (o *rootOptions) applyConfig(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return xerrors.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if !flags.Changed(flagURL) {
		o.url = cfg.Deployment.URL
	}
	if !flags.Changed(flagToken) {
		o.token = cfg.Deployment.SessionToken
	}
	if !flags.Changed(flagTimeout) {
		o.timeout = cfg.Deployment.Timeout
	}
	return nil
}

func (o *rootOptions) provider() providers.ReplicaProvider {
	return deployment.NewClient(deployment.Config{
		BaseURL:      o.url,
		SessionToken: o.token,
		Timeout:      o.timeout,
	})
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.Config{
		Level:   level,
		Service: "replicactl",
		Output:  cmd.ErrOrStderr(),
	})
}
