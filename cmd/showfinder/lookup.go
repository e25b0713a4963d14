package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Belphemur/ShowFinder/internal/client"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/widget"
)

func newSearchCmd(cfg *config.Config) *cobra.Command {
	var asJSON, asHTML bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search shows by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cfg, func(catalog client.Catalog) error {
				wg, err := widget.New(catalog, cfg.DefaultImageURL)
				if err != nil {
					return err
				}

				if asJSON {
					shows, err := wg.ShowsFor(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd, shows)
				}

				if err := wg.Submit(cmd.Context(), args[0]); err != nil {
					return err
				}
				if asHTML {
					shows, err := wg.ShowsHTML()
					if err != nil {
						return err
					}
					cmd.Println(shows)
					return nil
				}

				cards := wg.Cards()
				if len(cards) == 0 {
					cmd.Println("No shows found.")
					return nil
				}
				for _, card := range cards {
					cmd.Printf("%d\t%s\n", card.ShowID, card.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the shows as JSON")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the rendered show cards")
	cmd.MarkFlagsMutuallyExclusive("json", "html")
	return cmd
}

func newEpisodesCmd(cfg *config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "episodes <show-id>",
		Short: "List the episodes of a show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			showID, err := strconv.Atoi(args[0])
			if err != nil || showID <= 0 {
				return fmt.Errorf("invalid show id %q", args[0])
			}

			return withCatalog(cfg, func(catalog client.Catalog) error {
				wg, err := widget.New(catalog, cfg.DefaultImageURL)
				if err != nil {
					return err
				}

				if asJSON {
					episodes, err := wg.EpisodesFor(cmd.Context(), showID)
					if err != nil {
						return err
					}
					return printJSON(cmd, episodes)
				}

				if err := wg.Episodes().HandleEpisodesClick(cmd.Context(), showID); err != nil {
					return err
				}
				for _, line := range wg.EpisodeLines() {
					cmd.Println(line)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the episodes as JSON")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
