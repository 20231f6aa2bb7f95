package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nlpd/internal/lang"
	"nlpd/internal/manager"
)

// withManager runs fn against a manager built from the resolved config.
// Logs go to stderr so command output stays clean.
func withManager(cmd *cobra.Command, root *rootOptions, fn func(*manager.Manager) error) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	log, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	mgr, err := newManager(cfg, log)
	if err != nil {
		return err
	}
	defer mgr.Close()
	return fn(mgr)
}

func newModelsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Print the model catalog as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, root, func(m *manager.Manager) error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(m.Models())
			})
		},
	}
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported language codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLanguages(cmd.OutOrStdout())
		},
	}
}

func printLanguages(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME")
	for _, c := range lang.All() {
		fmt.Fprintf(tw, "%s\t%s\n", c, c.Name())
	}
	return tw.Flush()
}

func newTranslateCmd(root *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:     "translate TEXT...",
		Short:   "Translate text once and print the result",
		Example: "  nlpd translate --from nl --to en hallo wereld",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, root, func(m *manager.Manager) error {
				out, err := m.Translate(cmd.Context(), from, to, strings.Join(args, " "))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source language code")
	cmd.Flags().StringVar(&to, "to", "", "Target language code")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newEmbedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "embed TEXT...",
		Short: "Print the sentence embedding of a text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, root, func(m *manager.Manager) error {
				vec, err := m.SentenceEmbeddings(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), vec)
				return err
			})
		},
	}
}
