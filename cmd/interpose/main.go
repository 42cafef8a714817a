package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/interposehq/interpose/internal/cli"
)

func main() {
	// Optional .env for INTERPOSE_* settings; absence is fine.
	_ = godotenv.Load()

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
