package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"heic-readyd/internal/activitylog"
	"heic-readyd/internal/applog"
	"heic-readyd/internal/config"
	"heic-readyd/internal/daemon"
	"heic-readyd/internal/trash"
	"heic-readyd/internal/transcode"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the daemon in the foreground",
	Long: `Start watching the configured folders and converting HEIC/HEIF photos
to JPEG as they appear.

The daemon loads its configuration from the OS application-config directory,
applies it, and serves a local command surface at --addr for the tray UI and
for the other heic-readyd subcommands. Press Ctrl+C to stop.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	appConfigDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("resolve user config directory: %w", err)
	}

	logger, err := applog.New(applog.Options{
		FilePath: filepath.Join(appConfigDir, "heic-ready", "heic-readyd.log"),
		Verbose:  true,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	trashDir, _ := os.UserHomeDir()
	if trashDir != "" {
		trashDir = filepath.Join(trashDir, ".Trash")
	}
	store := config.NewStore(config.FilePath(appConfigDir), trashDir)
	warning, err := store.LoadOrInit()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if warning != "" {
		logger.Warn("config load warning", "warning", warning)
	}

	devOverridesPath := filepath.Join(appConfigDir, "heic-ready", "dev-overrides.toml")
	if overrides, err := config.LoadDevOverrides(devOverridesPath); err != nil {
		logger.Warn("dev overrides not applied", "error", err)
	} else {
		applied := overrides.ApplyTo(store.Snapshot())
		if _, _, err := store.Replace(applied); err != nil {
			logger.Warn("dev overrides rejected", "error", err)
		}
	}

	mover, err := trash.Default()
	if err != nil {
		return fmt.Errorf("init trash mover: %w", err)
	}
	transcoder, err := transcode.Default()
	if err != nil {
		return fmt.Errorf("init transcoder: %w", err)
	}

	ring := activitylog.New(logger)
	ctrl := daemon.New(store, ring, transcoder, mover, logger)
	server := daemon.NewCommandServer(ctrl, daemonAddr)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start command surface: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("heic-readyd listening on %s\n", server.Addr())
	runErr := make(chan error, 1)
	go func() { runErr <- ctrl.Run(ctx) }()

	<-ctx.Done()
	fmt.Println("shutting down...")

	if err := server.Stop(); err != nil {
		logger.Warn("command surface shutdown error", "error", err)
	}
	return <-runErr
}
