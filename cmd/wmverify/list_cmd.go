package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ringmodel/wmverify/internal/scenario"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bundled scenarios and their expected outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range scenario.All() {
				fmt.Printf("%-28s mode=%-7s expected=%s\n", s.Name, s.Mode, s.Expected)
			}
			return nil
		},
	}
}
