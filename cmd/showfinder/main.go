package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Belphemur/ShowFinder/internal/client"
	"github.com/Belphemur/ShowFinder/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(config.GetConfig()).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "showfinder",
		Short:        "Search TV shows and list their episodes",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(cfg),
		newSearchCmd(cfg),
		newEpisodesCmd(cfg),
	)
	return root
}

// withCatalog opens the catalog client for the duration of fn.
func withCatalog(cfg *config.Config, fn func(client.Catalog) error) error {
	catalog, err := client.NewClient(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			config.GetLogger().Warn().Err(err).Msg("Failed to close catalog client")
		}
	}()
	return fn(catalog)
}
