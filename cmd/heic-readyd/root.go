package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleErr  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func init() {
	// Piped/redirected stdout isn't a terminal; force the plain-ASCII
	// profile so escape codes don't end up in a log file or another tool's
	// pipe input.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

var daemonAddr string

var rootCmd = &cobra.Command{
	Use:   "heic-readyd",
	Short: "Background daemon that converts HEIC/HEIF photos to JPEG in place",
	Long: `heic-readyd watches configured folders and transparently converts
HEIC/HEIF image files into JPEGs alongside them.

Run "heic-readyd run" to start the daemon. The other subcommands are thin
clients against the running daemon's local command surface.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&daemonAddr, "addr", "127.0.0.1:8787", "daemon command-surface address")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
