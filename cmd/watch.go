package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eventfeed/internal/config"
	"eventfeed/internal/feed"
	"eventfeed/internal/view"
)

var (
	watchInterval time.Duration
	watchOrdering string
	watchNoClear  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously show the current events",
	Long: `Fetches the event list immediately and then on every interval, replacing
the table each time. With --json every refresh is printed as one JSON array
per line instead.`,
	Example: `  eventfeed watch
  eventfeed watch --interval 10s --ordering last-completed`,
	Run: func(cmd *cobra.Command, args []string) {
		s := loadSettings()
		if cmd.Flags().Changed("interval") {
			s.Interval = watchInterval
		}
		if cmd.Flags().Changed("ordering") {
			s.Ordering = watchOrdering
		}
		if err := config.CheckInterval(s.Interval); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ordering, err := feed.ParseOrdering(s.Ordering)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var target feed.View
		var onResult func(feed.Result)
		if jsonOutput {
			target = view.NewJSONLines(os.Stdout)
		} else {
			screen := view.NewScreen(os.Stdout, view.NewTable(nil), !watchNoClear)
			target = screen
			onResult = func(r feed.Result) {
				if r.Outcome != feed.Stale {
					screen.SetStatus(r.Started, r.Err)
				}
			}
		}

		f := feed.New(newClient(s), target, feed.Options{
			Interval: s.Interval,
			Ordering: ordering,
			OnResult: onResult,
			Logger:   newLogger(s.LogLevel, os.Stderr),
		})

		if err := runFeed(ctx, f); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// runFeed polls until ctx is cancelled.
func runFeed(ctx context.Context, f *feed.Feed) error {
	if err := f.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	f.Stop()
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", feed.DefaultInterval, "Poll interval")
	watchCmd.Flags().StringVar(&watchOrdering, "ordering", "latest-issued", "Overlapping refreshes: latest-issued or last-completed")
	watchCmd.Flags().BoolVar(&watchNoClear, "no-clear", false, "Do not clear the terminal between refreshes")
}
