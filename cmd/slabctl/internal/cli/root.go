package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LLHFWT/nginx/shmregion"
	"github.com/LLHFWT/nginx/shmtx"
	"github.com/LLHFWT/nginx/slab"
	"github.com/LLHFWT/nginx/slablog"
)

var (
	verbose    bool
	regionSize int
	pageShift  uint
	minShift   uint
	provider   string
)

// Execute runs the slabctl root command.
func Execute() error {
	return rootCmd().Execute()
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slabctl",
		Short: "Exercise a shared-memory slab pool from the command line",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().IntVar(&regionSize, "region-size", 1<<22, "backing region size in bytes")
	root.PersistentFlags().UintVar(&pageShift, "page-shift", 12, "log2 of the data page size")
	root.PersistentFlags().UintVar(&minShift, "min-shift", 4, "log2 of the smallest chunk size")
	root.PersistentFlags().StringVar(&provider, "provider", "aligned", "region backing: aligned|mmap")

	root.AddCommand(createCmd(), benchCmd(), statCmd())
	return root
}

func newLogger() *slablog.Logrus {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return slablog.New(log)
}

func newProvider() shmregion.Provider {
	if provider == "mmap" {
		return shmregion.NewMmap()
	}
	return shmregion.NewAligned()
}

// buildPool wires a fresh region, a process-local atomic mutex (spin-only,
// no semaphore: slabctl is a single-process demo harness, so there is
// never a second locker to hand a semaphore key to), and a slab.Pool over
// it, in the same order a real embedder would.
func buildPool(name string) (*slab.LockedPool, shmregion.Provider, []byte, error) {
	p := newProvider()
	region, err := p.Acquire(name, regionSize)
	if err != nil {
		return nil, nil, nil, err
	}

	mutexState := region[:8]
	poolRegion := region[8:]

	mu, err := shmtx.NewAtomicMutex(mutexState, nil, 2048, 1)
	if err != nil {
		return nil, nil, nil, err
	}

	pool, err := slab.New(poolRegion, minShift, pageShift, mu, newLogger())
	if err != nil {
		return nil, nil, nil, err
	}
	return slab.NewLockedPool(pool), p, region, nil
}
