// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command acadamist-sync follows the shared votes and calendar from a
// terminal, using the same online/offline rules as the site.
//
//	acadamist-sync watch
//	acadamist-sync vote "Alice"
//	acadamist-sync events add March-5-2025 "Lunch" --time "12:00 PM"
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcthuva007/Acadamist/syncclient"
)

var (
	serverURL string
	localFile string
	timeout   time.Duration
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "acadamist-sync",
	Short: "Follow and edit the shared Acadamist votes and calendar",
	Long: `acadamist-sync connects to an Acadamist server over its real-time channel.
When the server cannot be reached every command works on a local JSON file
instead; those offline changes are never sent to the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	defaultServer := os.Getenv("ACADAMIST_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:3000"
	}

	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "Server URL (or set ACADAMIST_SERVER)")
	rootCmd.PersistentFlags().StringVar(&localFile, "local-file", syncclient.DefaultFallbackPath, "Offline storage file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout for one-shot commands")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	eventsCmd.AddCommand(eventsListCmd, eventsAddCmd, eventsDeleteCmd)
	rootCmd.AddCommand(watchCmd, voteCmd, eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openAgent creates an agent and tries to connect it. A failed connection
// is reported on stderr and the agent carries on offline.
func openAgent(ctx context.Context, cmd *cobra.Command) (*syncclient.Agent, error) {
	agent, err := syncclient.New(ctx, syncclient.Options{
		BaseURL:      serverURL,
		FallbackPath: localFile,
	})
	if err != nil {
		return nil, err
	}

	if err := agent.Connect(ctx); err != nil {
		cmd.PrintErrf("offline: %v (using %s)\n", err, localFile)
	} else if agent.Local() {
		cmd.PrintErrf("offline: server fetch failed (using %s)\n", localFile)
	}
	return agent, nil
}
