package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Run: func(cmd *cobra.Command, args []string) {
		s := loadSettings()
		api := newClient(s)

		h, err := api.GetHealth(contextOf(cmd))
		if err != nil {
			fmt.Printf("Error checking %s: %v\n", s.BaseURL, err)
			os.Exit(1)
		}

		if ok, err := writeStructured(os.Stdout, h); ok {
			if err != nil {
				fmt.Printf("Error encoding output: %v\n", err)
				os.Exit(1)
			}
			return
		}

		fmt.Printf("%s: %s\n", s.BaseURL, h.Status)
		if !h.OK() {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
