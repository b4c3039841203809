package main

import (
	"errors"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wmverify",
		Short: "wmverify",
		Long:  `A bounded, solver-backed weak-memory verifier for ring-buffer style producer/consumer traces.`,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newListCmd())

	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, errUnknown):
			os.Exit(2)
		case errors.Is(err, errMismatch):
			os.Exit(1)
		default:
			log.WithError(err).Error("wmverify failed")
			os.Exit(1)
		}
	}
}
