package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <collection-file>...",
		Short: "Check collection files for configuration errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				c, err := loadCollection(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s, %d cards)\n", path, c.ID, len(c.Cards))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d collection files are invalid", failed, len(args))
			}
			return nil
		},
	}
}
