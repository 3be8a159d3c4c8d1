package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fatsecret-mcp/internal/fatsecret"

	"github.com/spf13/cobra"
)

// Supported server transports.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

var (
	version         string
	serverTransport string
	listenAddr      string
	verbose         bool
	noColor         bool
	traceHTTP       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fatsecret-mcp",
	Short: "FatSecret nutrition MCP server",
	Long: `fatsecret-mcp exposes the FatSecret nutrition platform as an MCP
(Model Context Protocol) server.

It provides tools for searching the food and recipe databases, looking up
foods by barcode, and - once a FatSecret account is connected - reading and
writing the user's food diary and weight history.

Public catalog tools work with just the API consumer credentials
(FATSECRET_CONSUMER_KEY and FATSECRET_CONSUMER_SECRET). Personal tools
require a connected account: either run the start_authentication /
complete_authentication tools from an MCP client, or use the "auth"
subcommand to complete the OAuth handshake from the terminal.

By default the server speaks MCP over stdio for integration with AI
assistants. Use --transport streamable-http to serve HTTP instead; the
endpoint path is fixed to /mcp.

On cloud platforms (Railway, Render) a local token file would not survive
restarts, so the OAuth flow is disabled there; supply a previously obtained
token via FATSECRET_USER_TOKEN and FATSECRET_USER_TOKEN_SECRET instead.`,
	RunE: runServer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version for the application
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&traceHTTP, "trace-http", false, "Log API requests and responses")

	rootCmd.Flags().StringVar(&serverTransport, "transport", transportStdio, "Transport protocol for the MCP server (stdio, streamable-http)")
	rootCmd.Flags().StringVar(&listenAddr, "listen-addr", ":8080", "Listen address for streamable-http server (path is fixed to /mcp)")

	// Add subcommands
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

// validateTransport validates the transport configuration
func validateTransport() error {
	if serverTransport != transportStdio && serverTransport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport '%s' (stdio, streamable-http)", serverTransport)
	}
	return nil
}

// setupSignalHandler sets up graceful shutdown on interrupt signals
func setupSignalHandler(cancel context.CancelFunc, logger *fatsecret.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()
}

// newTokenStore selects the token backend: the environment on cloud
// deployments, a local file everywhere else.
func newTokenStore(settings *fatsecret.Settings) (fatsecret.TokenStore, error) {
	if fatsecret.IsCloudDeployment() {
		return fatsecret.EnvTokenStore{}, nil
	}
	store, err := fatsecret.NewFileTokenStore(settings.TokenStoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}
	return store, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := validateTransport(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger := fatsecret.NewLogger(verbose, !noColor, traceHTTP)
	setupSignalHandler(cancel, logger)

	settings, err := fatsecret.LoadSettings()
	if err != nil {
		return err
	}

	store, err := newTokenStore(settings)
	if err != nil {
		return err
	}

	// No OAuth handshake on cloud deployments: tokens come from the
	// environment and cannot be written back.
	var flow *fatsecret.FlowManager
	if !fatsecret.IsCloudDeployment() {
		flow = fatsecret.NewFlowManager(settings, store, logger)
	} else {
		logger.InfoVerbose("Cloud deployment detected, using environment token store")
	}

	server, err := fatsecret.NewMCPServer(settings, store, flow, serverTransport, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger.InfoVerbose("Starting fatsecret-mcp server (transport: %s)...", serverTransport)
	if serverTransport == transportStreamableHTTP {
		addr := listenAddr
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		logger.Info("Listening on %s%s", addr, "/mcp")
	}

	if err := server.Start(ctx, listenAddr); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
