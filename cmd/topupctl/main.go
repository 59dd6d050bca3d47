// Command topupctl is the operator CLI for the storefront's order store.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(defaultCLI()).Execute(); err != nil {
		os.Exit(1)
	}
}
