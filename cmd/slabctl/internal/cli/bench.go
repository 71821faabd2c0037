package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LLHFWT/nginx/container/list"
	"github.com/LLHFWT/nginx/palloc"
)

func benchCmd() *cobra.Command {
	var workers int
	var rounds int
	var size int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Hammer a pool concurrently and report per-worker timings",
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, provider, region, err := buildPool("slabctl-bench")
			if err != nil {
				return err
			}
			defer provider.Release(region)

			// Each worker keeps its own palloc.Pool and list of recorded
			// durations: both are per-process bump structures with no
			// internal synchronization, so sharing one across goroutines
			// would race exactly the way slab.Pool would without the
			// lock LockedPool provides.
			totals := make([]time.Duration, workers)
			counts := make([]int, workers)

			g, _ := errgroup.WithContext(context.Background())
			for w := 0; w < workers; w++ {
				w := w
				g.Go(func() error {
					scratch := palloc.New(rounds * 16)
					defer scratch.Destroy()
					durations := list.New[time.Duration](scratch, rounds)

					for r := 0; r < rounds; r++ {
						start := time.Now()
						off, err := lp.Alloc(size)
						if err != nil {
							return err
						}
						if err := lp.Free(off); err != nil {
							return err
						}
						durations.Push(time.Since(start))
					}

					var total time.Duration
					n := 0
					durations.Each(func(d time.Duration) {
						total += d
						n++
					})
					totals[w] = total
					counts[w] = n
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			var total time.Duration
			n := 0
			for w := range totals {
				total += totals[w]
				n += counts[w]
			}
			if n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d alloc/free pairs across %d workers, average %v\n", n, workers, total/time.Duration(n))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 8, "concurrent goroutines")
	cmd.Flags().IntVar(&rounds, "rounds", 1000, "alloc/free rounds per worker")
	cmd.Flags().IntVar(&size, "size", 64, "allocation size in bytes")
	return cmd
}
