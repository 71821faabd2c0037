package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func statCmd() *cobra.Command {
	var sampleAllocSizes []int
	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Create a pool, carve a few sample allocations, and print per-class stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, provider, region, err := buildPool("slabctl-stat")
			if err != nil {
				return err
			}
			defer provider.Release(region)

			for _, size := range sampleAllocSizes {
				if _, err := lp.Alloc(size); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHUNK\tTOTAL\tUSED\tREQS\tFAILS")
			for _, s := range lp.Pool().Stats() {
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\n", s.ChunkSize, s.Total, s.Used, s.Requests, s.Failures)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntSliceVar(&sampleAllocSizes, "alloc", []int{16, 64, 256, 1024}, "sample allocation sizes to carve before reporting")
	return cmd
}
