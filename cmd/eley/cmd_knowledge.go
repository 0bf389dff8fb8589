package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/eley-go/internal/adapters/loader"
	"github.com/0xcro3dile/eley-go/internal/adapters/vocabulary"
	"github.com/0xcro3dile/eley-go/internal/domain/usecases"
)

var factsJSON bool

var teachCmd = &cobra.Command{
	Use:     "teach [question] [answer]",
	Short:   "Teach ELEY a fact",
	Example: `  eley teach "what is the capital of france" "Paris"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.resolver.Teach(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Learned: %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Teach every fact in JSON or YAML files",
	Long: `Imports facts in bulk. Accepted formats:

  .json        {"questions": [{"question": "...", "answer": "..."}]} or a bare list
  .yaml, .yml  a list of {question, answer} mappings, or a questions: list

Facts with a blank question or answer are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ingest := usecases.NewIngestUseCase(loader.NewMultiLoader(), a.resolver, logger)
		for _, path := range args {
			result, err := ingest.Ingest(ctx, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d added, %d skipped\n", path, result.Added, result.Skipped)
		}
		return nil
	},
}

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "List known facts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		facts := a.resolver.Facts()
		out := cmd.OutOrStdout()
		if factsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(map[string]interface{}{"questions": facts})
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "QUESTION\tANSWER")
		for _, f := range facts {
			fmt.Fprintf(tw, "%s\t%s\n", f.Question, f.Answer)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d facts\n", len(facts))
		return nil
	},
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show fallback query usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		count, limit := a.resolver.Quota()
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fallback queries: %d of %d used, %d remaining\n", count, limit, remaining)
		return nil
	},
}

var vocabularyCmd = &cobra.Command{
	Use:   "vocabulary",
	Short: "Print the built-in vocabulary as a starting point for edits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(vocabulary.DefaultYAML())
		return err
	},
}

func init() {
	factsCmd.Flags().BoolVar(&factsJSON, "json", false, "print the knowledge document as JSON")
}
