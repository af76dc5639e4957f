package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"microcms-mcp-server/internal/application"
	"microcms-mcp-server/internal/domain"
	"microcms-mcp-server/internal/infrastructure"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the microcms-mcp-server command.
func newRootCommand() *cobra.Command {
	var (
		configPath string
		transport  string
	)

	cmd := &cobra.Command{
		Use:   "microcms-mcp-server",
		Short: "MCP server exposing microCMS search and content lookup as tools",
		Long: "microcms-mcp-server serves the SearchMicroCMS and GetMicroCMSContent tools over MCP.\n\n" +
			"Required environment variables: " + domain.EnvAPIKey + ", " + domain.EnvServiceDomain + ", " + domain.EnvEndpoint + ".",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := run(ctx, options{
				configPath: configPath,
				transport:  transport,
				lookup:     os.LookupEnv,
				in:         cmd.InOrStdin(),
				out:        cmd.OutOrStdout(),
			})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to an optional YAML configuration file")
	cmd.Flags().StringVar(&transport, "transport", "", "Transport to serve on: stdio or http (overrides the configuration file)")

	return cmd
}

// options carries everything run needs from the process.
type options struct {
	configPath string
	transport  string
	lookup     domain.LookupFunc
	in         io.Reader
	out        io.Writer
	logger     *application.StructuredLogger
}

// run configures the server and serves until the transport stops.
func run(ctx context.Context, opts options) error {
	server, err := bootstrap(opts)
	if err != nil {
		return err
	}
	return server.Serve(ctx, opts.in, opts.out)
}

// bootstrap loads configuration and wires the client, handlers, router and
// server together. Nothing is registered unless configuration is complete.
func bootstrap(opts options) (*application.Server, error) {
	logger := opts.logger
	if logger == nil {
		logger = application.NewStructuredLogger()
	}
	lookup := opts.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	// Load configuration
	config, err := domain.LoadConfigWithEnv(opts.configPath, lookup)
	if err != nil {
		return nil, err
	}
	if opts.transport != "" {
		config.Transport.Type = opts.transport
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	logger.LogInfo("configuration loaded", map[string]any{
		"service_domain": config.MicroCMS.ServiceDomain,
		"endpoint":       config.MicroCMS.Endpoint,
		"transport":      config.Transport.Type,
	})

	// Create the microCMS client
	client, err := infrastructure.NewMicroCMSClient(config.MicroCMS)
	if err != nil {
		return nil, err
	}

	// Create handlers for each tool
	mapper := domain.NewResponseMapper()
	searchHandler, err := application.NewSearchHandler(client, mapper, config.MicroCMS.Endpoint, logger)
	if err != nil {
		return nil, err
	}
	contentHandler, err := application.NewContentHandler(client, mapper, logger)
	if err != nil {
		return nil, err
	}

	observer, err := application.NewGlobalToolObserver()
	if err != nil {
		return nil, fmt.Errorf("failed to create tool observer: %w", err)
	}

	// Create request router with all handlers
	router, err := application.NewRequestRouter(
		[]domain.ToolHandler{searchHandler, contentHandler},
		application.WithLogger(logger),
		application.WithObserver(observer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return application.NewServer(router, config, logger)
}
