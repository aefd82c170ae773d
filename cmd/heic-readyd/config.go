package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"heic-readyd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or update the daemon's configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the running configuration as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg config.Config
		if err := clientGet("/config", &cfg); err != nil {
			return err
		}
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var (
	setWatchFolders []string
	setRecursive    bool
	setPolicy       string
	setQuality      int
	setRescanSecs   int
	setLocale       string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the running configuration",
	Long: `Fetches the current config, applies any flags given, and submits the
result to the daemon for validation and persistence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg config.Config
		if err := clientGet("/config", &cfg); err != nil {
			return err
		}

		if cmd.Flags().Changed("watch-folder") {
			cfg.WatchFolders = setWatchFolders
		}
		if cmd.Flags().Changed("recursive") {
			cfg.RecursiveWatch = setRecursive
		}
		if cmd.Flags().Changed("policy") {
			cfg.OutputPolicy = config.OutputPolicy(setPolicy)
		}
		if cmd.Flags().Changed("quality") {
			cfg.JPEGQuality = setQuality
		}
		if cmd.Flags().Changed("rescan-interval") {
			cfg.RescanIntervalSecs = setRescanSecs
		}
		if cmd.Flags().Changed("locale") {
			cfg.Locale = config.Locale(setLocale)
		}

		var result struct {
			Config  config.Config `json:"config"`
			Warning string        `json:"warning"`
		}
		if err := clientPost("/config", cfg, &result); err != nil {
			return err
		}
		if result.Warning != "" {
			fmt.Println(styleWarn.Render(result.Warning))
		}
		fmt.Println(styleOK.Render("config updated"))
		return nil
	},
}

func init() {
	configSetCmd.Flags().StringSliceVar(&setWatchFolders, "watch-folder", nil, "watch folder (repeatable)")
	configSetCmd.Flags().BoolVar(&setRecursive, "recursive", false, "watch folders recursively")
	configSetCmd.Flags().StringVar(&setPolicy, "policy", "", "output policy: coexist or replace")
	configSetCmd.Flags().IntVar(&setQuality, "quality", 0, "JPEG quality 0-100")
	configSetCmd.Flags().IntVar(&setRescanSecs, "rescan-interval", 0, "rescan interval in seconds")
	configSetCmd.Flags().StringVar(&setLocale, "locale", "", "UI locale: en or ja")

	configCmd.AddCommand(configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
