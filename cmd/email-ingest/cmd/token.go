package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

var callbackPort int

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Obtain a Gmail refresh token via the OAuth2 authorization flow",
	Long: `Runs the OAuth2 authorization-code flow against Google and stores the
resulting token where the ingest service expects it.

Requires GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET to be set (or provided
via --config). The command prints an authorization URL, captures the
redirect on a local callback server, exchanges the code, writes the token
to the configured GMAIL_TOKEN_FILE, and prints the environment variables
to export for headless runs.`,
	RunE: runTokenSetup,
}

func init() {
	tokenCmd.Flags().IntVar(&callbackPort, "callback-port", 8090, "local port for the OAuth2 redirect")
	rootCmd.AddCommand(tokenCmd)
}

func runTokenSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Gmail.ClientID,
		ClientSecret: cfg.Gmail.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/oauth/callback", callbackPort),
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	// AccessTypeOffline is what yields a refresh token; without it the
	// ingest service would stop authenticating once the access token expires.
	authURL := oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL to authorize mailbox access:\n\n%s\n\n", authURL)
	fmt.Fprintln(cmd.OutOrStdout(), "Waiting for the redirect on the local callback server...")

	code, err := waitForAuthCode(cmd.Context(), callbackPort)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("no refresh token in response; revoke prior grants at https://myaccount.google.com/permissions and retry")
	}

	if err := saveToken(cfg.Gmail.TokenFile, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nToken saved to %s\n", cfg.Gmail.TokenFile)
	fmt.Fprintln(cmd.OutOrStdout(), "\nExport these for headless runs:")
	fmt.Fprintf(cmd.OutOrStdout(), "GMAIL_REFRESH_TOKEN=%s\n", token.RefreshToken)
	fmt.Fprintf(cmd.OutOrStdout(), "GMAIL_ACCESS_TOKEN=%s\n", token.AccessToken)
	return nil
}

// waitForAuthCode serves a single OAuth2 redirect on the given port and
// returns the authorization code it carries.
func waitForAuthCode(ctx context.Context, port int) (string, error) {
	codes := make(chan string, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			errs <- fmt.Errorf("redirect carried no authorization code")
			return
		}
		fmt.Fprintln(w, "Authorization received. You can close this window.")
		codes <- code
	})

	server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()
	defer server.Shutdown(context.Background())

	select {
	case code := <-codes:
		return code, nil
	case err := <-errs:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func saveToken(path string, token *oauth2.Token) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewEncoder(file).Encode(token)
}
