// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mcthuva007/Acadamist/models"
	"github.com/mcthuva007/Acadamist/syncclient"
)

var (
	eventTime      string
	eventDesc      string
	reconnectEvery time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the shared state every time it changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		agent, err := syncclient.New(ctx, syncclient.Options{
			BaseURL:      serverURL,
			FallbackPath: localFile,
			Reconnect:    reconnectEvery,
		})
		if err != nil {
			return err
		}
		defer agent.Close()

		out := cmd.OutOrStdout()
		agent.OnChange(func(doc models.Document) {
			fmt.Fprintf(out, "--- %s\n", agent.State())
			printVotes(out, doc.CrushVotes)
			printEvents(out, doc.CalendarEvents)
		})

		if err := agent.Connect(ctx); err != nil {
			if reconnectEvery <= 0 {
				return err
			}
			cmd.PrintErrf("offline: %v (retrying every %s)\n", err, reconnectEvery)
			printVotes(out, agent.Votes())
			printEvents(out, agent.Events())
		}

		<-ctx.Done()
		return nil
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote NAME",
	Short: "Cast one vote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAgent(cmd, func(ctx context.Context, agent *syncclient.Agent) error {
			votes, err := agent.Vote(ctx, args[0])
			if err != nil {
				return err
			}
			printVotes(cmd.OutOrStdout(), votes)
			return nil
		})
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List and edit calendar events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAgent(cmd, func(ctx context.Context, agent *syncclient.Agent) error {
			printEvents(cmd.OutOrStdout(), agent.Events())
			return nil
		})
	},
}

var eventsAddCmd = &cobra.Command{
	Use:   "add KEY TITLE",
	Short: "Add an event to the day KEY (e.g. March-5-2025)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		event := models.Event{Title: args[1], Time: eventTime, Desc: eventDesc}
		return withAgent(cmd, func(ctx context.Context, agent *syncclient.Agent) error {
			events, err := agent.AddEvent(ctx, args[0], event)
			if err != nil {
				return err
			}
			printEvents(cmd.OutOrStdout(), models.Calendar{args[0]: events[args[0]]})
			return nil
		})
	},
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete KEY INDEX",
	Short: "Delete the event at INDEX on the day KEY",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[1], err)
		}
		return withAgent(cmd, func(ctx context.Context, agent *syncclient.Agent) error {
			events, err := agent.DeleteEvent(ctx, args[0], index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d events left\n", args[0], len(events[args[0]]))
			return nil
		})
	},
}

func init() {
	eventsAddCmd.Flags().StringVar(&eventTime, "time", "", `Event time, e.g. "12:00 PM"`)
	eventsAddCmd.Flags().StringVar(&eventDesc, "desc", "", "Event description")
	watchCmd.Flags().DurationVar(&reconnectEvery, "reconnect", 2*time.Second, "Delay between reconnect attempts (0 disables)")
}

// withAgent runs fn against a freshly connected agent within the command
// timeout.
func withAgent(cmd *cobra.Command, fn func(ctx context.Context, agent *syncclient.Agent) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	agent, err := openAgent(ctx, cmd)
	if err != nil {
		return err
	}
	defer agent.Close()

	return fn(ctx, agent)
}

func printVotes(w io.Writer, votes models.Tally) {
	names := make([]string, 0, len(votes))
	for name := range votes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if votes[names[i]] != votes[names[j]] {
			return votes[names[i]] > votes[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) == 0 {
		fmt.Fprintln(w, "no votes")
	}
	for _, name := range names {
		fmt.Fprintf(w, "%-20s %s\n", name, humanize.Comma(int64(votes[name])))
	}
}

func printEvents(w io.Writer, events models.Calendar) {
	keys := make([]string, 0, len(events))
	for key := range events {
		keys = append(keys, key)
	}
	sortDateKeys(keys)

	if len(keys) == 0 {
		fmt.Fprintln(w, "no events")
	}
	for _, key := range keys {
		fmt.Fprintln(w, key)
		for i, e := range events[key] {
			fmt.Fprintf(w, "  [%d] %-10s %s - %s\n", i, e.Time, e.Title, e.Desc)
		}
	}
}

// sortDateKeys orders calendar dates chronologically, followed by any keys
// that are not dates in string order.
func sortDateKeys(keys []string) {
	type dated struct {
		key  string
		date time.Time
		ok   bool
	}
	items := make([]dated, len(keys))
	for i, key := range keys {
		date, err := models.ParseDateKey(key)
		items[i] = dated{key: key, date: date, ok: err == nil}
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok && !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		return a.key < b.key
	})

	for i := range items {
		keys[i] = items[i].key
	}
}
