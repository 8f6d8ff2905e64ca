package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
	timeout   time.Duration
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "travelguide",
	Short: "Terminal client for the travel assistant API",
	Long: `Talk to a running travel assistant from the terminal.

Every command except "session start" needs a session token. Pass it with
--token or export TRAVELGUIDE_TOKEN.

Quick Start:
  travelguide session start                       # prints a token
  travelguide chat "what is the weather in Paris"  # routed to the weather tool
  travelguide places "restaurants in Los Angeles" --add 1,2
  travelguide itinerary generate`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("TRAVELGUIDE_SERVER", "http://localhost:8000"), "Travel assistant base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("TRAVELGUIDE_TOKEN"), "Session token")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "Request timeout")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// sessionClient returns a client bound to the configured token.
func sessionClient() (*apiClient, error) {
	if token == "" {
		return nil, fmt.Errorf("no session token: run `travelguide session start` and pass --token")
	}
	return newAPIClient(serverURL, token, timeout), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
