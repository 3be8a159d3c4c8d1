package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"fatsecret-mcp/internal/fatsecret"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var authCallback string

// newAuthCmd creates the command that runs the OAuth handshake from the
// terminal, as an alternative to the start_authentication and
// complete_authentication MCP tools.
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Connect a FatSecret account from the terminal",
		Long: `Runs the OAuth 1.0a handshake interactively: prints the authorization
URL, waits for the verification code, and stores the resulting user token
for the MCP server to pick up.`,
		RunE: runAuth,
	}
	cmd.Flags().StringVar(&authCallback, "callback", fatsecret.CallbackOutOfBand, "OAuth callback URL (\"oob\" for out-of-band)")
	return cmd
}

func runAuth(cmd *cobra.Command, args []string) error {
	logger := fatsecret.NewLogger(verbose, !noColor, traceHTTP)

	settings, err := fatsecret.LoadSettings()
	if err != nil {
		return err
	}
	if fatsecret.IsCloudDeployment() {
		return errors.New("the OAuth flow is not available on cloud deployments; " +
			"run auth locally and copy the token via FATSECRET_USER_TOKEN and FATSECRET_USER_TOKEN_SECRET")
	}

	store, err := fatsecret.NewFileTokenStore(settings.TokenStoragePath)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	flow := fatsecret.NewFlowManager(settings, store, logger)

	ctx := cmd.Context()

	requestToken, err := flow.GetRequestToken(ctx, authCallback)
	if err != nil {
		return err
	}

	logger.Info("Visit this URL to authorize access to your FatSecret account:")
	logger.Info("")
	logger.Info("  %s", flow.AuthorizationURL(requestToken))
	logger.Info("")
	logger.Info("Then enter the verification code shown after you authorize.")

	verifier, err := promptVerifier()
	if err != nil {
		return err
	}

	if _, err := flow.ExchangeForAccessToken(ctx, verifier); err != nil {
		return err
	}

	logger.Success("FatSecret account connected. Token stored in %s", store.Path())
	return nil
}

// promptVerifier reads the verification code interactively.
func promptVerifier() (string, error) {
	rl, err := readline.New("Verifier> ")
	if err != nil {
		return "", fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer func() { _ = rl.Close() }()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return "", errors.New("authentication cancelled")
		}
		if err != nil {
			return "", fmt.Errorf("readline error: %w", err)
		}
		if verifier := strings.TrimSpace(line); verifier != "" {
			return verifier, nil
		}
	}
}
