// Command slabctl drives a slab.Pool end to end from the command line:
// it wires a shmregion.Provider, a shmtx.Mutex, and a slablog.Logrus
// logger together exactly the way a long-running daemon embedding this
// module would, for manual testing and benchmarking without writing Go.
package main

import (
	"fmt"
	"os"

	"github.com/LLHFWT/nginx/cmd/slabctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
