package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventfeed/internal/feed"
	"eventfeed/internal/view"
	"eventfeed/pkg/models"
)

var eventID string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect detection events",
	Long:  `List the backend's current detection events or show a single event.`,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List current events once",
	Run: func(cmd *cobra.Command, args []string) {
		s := loadSettings()
		api := newClient(s)

		table := view.NewTable(nil)
		f := feed.New(api, table, feed.Options{
			Interval: s.Interval,
			Logger:   newLogger(s.LogLevel, os.Stderr),
		})

		res := f.Refresh(contextOf(cmd))
		if res.Err != nil {
			fmt.Printf("Error fetching events: %v\n", res.Err)
			os.Exit(1)
		}

		if ok, err := writeStructured(os.Stdout, res.Events); ok {
			if err != nil {
				fmt.Printf("Error encoding output: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if table.Len() == 0 {
			fmt.Println("No events.")
			return
		}
		if err := table.Render(os.Stdout); err != nil {
			fmt.Printf("Error writing table: %v\n", err)
			os.Exit(1)
		}
	},
}

var eventsGetCmd = &cobra.Command{
	Use:     "get",
	Short:   "Show a single event",
	Example: `  eventfeed events get --id 42`,
	Run: func(cmd *cobra.Command, args []string) {
		s := loadSettings()
		api := newClient(s)

		event, err := api.GetEvent(contextOf(cmd), eventID)
		if err != nil {
			fmt.Printf("Error fetching event %s: %v\n", eventID, err)
			os.Exit(1)
		}

		if ok, err := writeStructured(os.Stdout, event); ok {
			if err != nil {
				fmt.Printf("Error encoding output: %v\n", err)
				os.Exit(1)
			}
			return
		}
		printEventDetail(event)
	},
}

func printEventDetail(e models.Event) {
	row := view.FormatRow(e, nil)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	for i, h := range view.Headers {
		fmt.Fprintf(w, "%s\t%s\n", h, row[i])
	}
	fmt.Fprintf(w, "OBJECT\t%s\n", e.ObjectType)
	fmt.Fprintf(w, "BBOX\t%s\n", e.BBox)
	if e.DurationSec != nil {
		fmt.Fprintf(w, "DURATION\t%gs\n", *e.DurationSec)
	}
	fmt.Fprintf(w, "SNAPSHOT\t%s\n", e.SnapshotPath)
	w.Flush()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsGetCmd)

	eventsGetCmd.Flags().StringVar(&eventID, "id", "", "ID of the event")
	_ = eventsGetCmd.MarkFlagRequired("id")
}
