package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonwraymond/discordops/internal/cli"
)

// Set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.Version = version
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "discordops:", err)
		os.Exit(1)
	}
}
