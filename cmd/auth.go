package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mhewitt/strider/internal/config"
	"github.com/mhewitt/strider/internal/output"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage Strava authentication",
	GroupID: "system",
}

var (
	authCode         string
	authClientID     string
	authClientSecret string
)

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange an authorization code for tokens",
	Long: `Exchange a one-time Strava authorization code for an access/refresh token
pair and store it under ~/.config/strider.

Obtain the code by visiting the Strava OAuth authorize URL for your API
application (scope: activity:read_all) and copying the "code" query
parameter from the redirect.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID := authClientID
		if clientID == "" {
			clientID = config.GetClientID()
		}
		clientSecret := authClientSecret
		if clientSecret == "" {
			clientSecret = config.GetClientSecret()
		}
		if clientID == "" || clientSecret == "" {
			return fmt.Errorf("client id and secret required (flags, STRIDER_CLIENT_ID/STRIDER_CLIENT_SECRET, or config.json)")
		}

		code := strings.TrimSpace(authCode)
		if code == "" {
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Authorization code").
					Description("From the redirect URL after approving the app").
					Value(&code).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("code required")
						}
						return nil
					}),
			))
			if err := form.Run(); err != nil {
				return fmt.Errorf("read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
		}

		tok, err := newClient("").ExchangeCode(clientID, clientSecret, code)
		if err != nil {
			output.Error("exchange code: %v", err)
			return err
		}
		if tok.Scope != "" {
			output.Info("Accepted scope: %s", tok.Scope)
		}

		if err := config.SaveCredentials(&config.Credentials{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiresAt:    tok.ExpiresAt,
		}); err != nil {
			output.Error("save credentials: %v", err)
			return err
		}

		// Remember the client pair so later refreshes don't need flags.
		cfg, err := config.Load()
		if err == nil {
			cfg.ClientID = clientID
			cfg.ClientSecret = clientSecret
			if err := config.Save(cfg); err != nil {
				output.Warning("save config: %v", err)
			}
		}

		output.Success("Logged in; tokens saved for future use")
		return nil
	},
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.LoadCredentials()
		if err != nil {
			output.Error("load credentials: %v", err)
			return err
		}
		if creds == nil || creds.RefreshToken == "" {
			output.Error("not logged in (run: strider auth login)")
			return fmt.Errorf("not authenticated")
		}

		if _, err := refreshCredentials(creds); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Access token refreshed")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.LoadCredentials()
		if err != nil {
			output.Error("load credentials: %v", err)
			return err
		}
		if creds == nil || creds.AccessToken == "" {
			fmt.Println("Not logged in.")
			return nil
		}

		tokPrefix := creds.AccessToken
		if len(tokPrefix) > 8 {
			tokPrefix = tokPrefix[:8] + "..."
		}
		fmt.Printf("Token:   %s\n", tokPrefix)
		if creds.ExpiresAt > 0 {
			expires := time.Unix(creds.ExpiresAt, 0)
			state := "valid"
			if creds.Expired(time.Now()) {
				state = "expired"
			}
			fmt.Printf("Expires: %s (%s)\n", expires.Format(time.RFC1123), state)
		}
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearCredentials(); err != nil {
			output.Error("logout: %v", err)
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	authLoginCmd.Flags().StringVar(&authCode, "code", "", "authorization code (prompted for when omitted)")
	authLoginCmd.Flags().StringVar(&authClientID, "client-id", "", "Strava API client ID")
	authLoginCmd.Flags().StringVar(&authClientSecret, "client-secret", "", "Strava API client secret")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRefreshCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}
