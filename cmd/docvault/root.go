package main

import (
	"context"
	"os"

	"github.com/sandevgo/docvault/internal/config"
	"github.com/sandevgo/docvault/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "docvault",
	Short: "DocVault — chat with your documents",
	Long:  `DocVault uploads documents to a remote RAG provider and serves a grounded chat API over them.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
