package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "mapserver",
		Short:        "Tabletop grid map editor server",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "server.toml", "TOML config file")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(generateEdgesCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(terrainCmd())
	rootCmd.AddCommand(listCmd(&configPath))
	rootCmd.AddCommand(deleteCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	var mapName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the websocket editor server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath, mapName)
		},
	}

	cmd.Flags().StringVarP(&mapName, "map", "m", "", "stored map to open at startup")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [in-file] [out-file]",
		Short: "Convert a version 1 map document to the edge list format",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runMigrate(args[0], args[1])
		},
	}
}

func generateEdgesCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "generate-edges [map-file]",
		Short: "Rebuild all edges of a map document from cell passability",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if out == "" {
				out = args[0]
			}
			return runGenerateEdges(args[0], out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: overwrite input)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [map-file]",
		Short: "Print cell and edge counts of a map document",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runStats(args[0])
		},
	}
}

func terrainCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "terrain",
		Short: "Print the terrain catalog",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTerrain(file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to check instead of the built-in one")
	return cmd
}

func listCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List maps in the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList(*configPath)
		},
	}
}

func deleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Remove a map from the configured storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runDelete(*configPath, args[0])
		},
	}
}
