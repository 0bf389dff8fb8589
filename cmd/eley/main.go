// Command eley is a voice-style question-answering assistant that learns
// facts, falls back to a knowledge service within a query budget, and
// handles small talk.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xcro3dile/eley-go/internal/config"
	"github.com/0xcro3dile/eley-go/internal/logging"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	// Global flags
	configPath string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "eley",
	Short: "ELEY - a question-answering assistant that learns",
	Long: `ELEY answers questions from its knowledge base, falls back to a
knowledge service (Wolfram|Alpha or a local Ollama model) within a query
budget, and handles small talk, jokes, web searches and a serial device.

Run without arguments to start a chat session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if debug {
			cfg.Log.Level = "debug"
			cfg.Log.Development = true
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Development)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runChat,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "eley %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./eley.yaml or ~/.config/eley/eley.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging to stderr")

	rootCmd.AddCommand(chatCmd, askCmd, serveCmd, teachCmd, importCmd, factsCmd, quotaCmd, vocabularyCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
