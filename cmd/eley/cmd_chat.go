package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/0xcro3dile/eley-go/internal/adapters/speech"
)

var (
	chatSpeak bool
	askSpeak  bool
)

// chatCmd runs the interactive session
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session",
	Long: `Reads one utterance per line from standard input and answers it.
Say the quit word (default "quit") or close the input to end the session.

With --speak (or speech.enabled in the config) replies are also spoken.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

// askCmd answers a single question
var askCmd = &cobra.Command{
	Use:   "ask [utterance]",
	Short: "Answer a single utterance and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	chatCmd.Flags().BoolVar(&chatSpeak, "speak", false, "speak replies aloud")
	rootCmd.Flags().BoolVar(&chatSpeak, "speak", false, "speak replies aloud")
	askCmd.Flags().BoolVar(&askSpeak, "speak", false, "speak the reply aloud")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	assistant, err := a.newAssistant(ctx, assistantOptions{
		speak:  chatSpeak || cfg.Speech.Enabled,
		device: true,
		output: cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	input := speech.NewConsoleInput(cmd.InOrStdin(), cmd.OutOrStdout())

	g, gctx := errgroup.WithContext(ctx)
	sessionCtx, endSession := context.WithCancel(gctx)
	g.Go(func() error {
		defer endSession()
		return assistant.Run(sessionCtx, input)
	})
	g.Go(func() error {
		return a.watchVocabulary(sessionCtx, assistant)
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	assistant, err := a.newAssistant(ctx, assistantOptions{
		speak:  askSpeak,
		device: true,
		output: cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	reply := assistant.Respond(ctx, strings.Join(args, " "))
	assistant.Say(ctx, reply.Text)
	return nil
}
