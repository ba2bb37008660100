package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bobmcallan/fathom/internal/cli"
)

func main() {
	// Load .env if present; real environment variables still win.
	_ = godotenv.Load()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
