package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a pool and print its geometry",
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, provider, region, err := buildPool("slabctl-create")
			if err != nil {
				return err
			}
			defer provider.Release(region)

			pool := lp.Pool()
			fmt.Fprintf(cmd.OutOrStdout(), "page size:   %d bytes\n", pool.PageSize())
			fmt.Fprintf(cmd.OutOrStdout(), "data zone:   [%#x, %#x)\n", pool.Start(), pool.End())
			fmt.Fprintf(cmd.OutOrStdout(), "free pages:  %d\n", pool.PFree())
			return nil
		},
	}
}
