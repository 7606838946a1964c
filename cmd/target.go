package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"eventfeed/internal/client"
	"eventfeed/internal/config"
)

var targetHost string

// targetCmd represents the target command
var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Point eventfeed at a backend",
	Long: `Checks that the backend answers its health endpoint and saves its
address locally for future commands.

Example:
  eventfeed target --url "http://10.0.0.5:8000"`,
	Run: func(cmd *cobra.Command, args []string) {
		host := strings.TrimRight(targetHost, "/")

		fmt.Printf("Checking %s ...\n", host)

		api := client.New(client.ClientConfig{BaseURL: host})
		h, err := api.GetHealth(contextOf(cmd))
		if err != nil {
			log.Fatalf("Fatal: backend check failed: %v", err)
		}
		if !h.OK() {
			log.Fatalf("Fatal: backend reports status %q", h.Status)
		}

		fmt.Println("Backend is healthy. Saving configuration...")

		if err := config.SaveBaseURL(host); err != nil {
			log.Fatalf("Failed to save configuration file: %v", err)
		}

		fmt.Printf("Saved. You can now run commands like 'eventfeed watch'.\n")
	},
}

func init() {
	rootCmd.AddCommand(targetCmd)

	targetCmd.Flags().StringVar(&targetHost, "url", "", "Backend base URL (e.g. http://127.0.0.1:8000)")
	_ = targetCmd.MarkFlagRequired("url")
}
