package main

import (
	"fmt"
	"os"

	"github.com/shaharia-lab/buildnotify/cmd"
	"github.com/shaharia-lab/buildnotify/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cmd.Execute(cfg)
}
