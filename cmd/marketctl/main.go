// Command marketctl runs operator tasks against the marketplace database:
// schema migrations, feed imports on behalf of a shop, order status changes,
// archived feed lookups and operator account creation.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
