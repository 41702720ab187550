package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"giftora/internal/editable"
)

func newTransformCmd() *cobra.Command {
	var (
		language string
		scope    string
		output   string
		elements bool
	)

	cmd := &cobra.Command{
		Use:   "transform [file]",
		Short: "Add editable markers to an HTML or component source",
		Long: "Reads a source from file (or stdin when omitted or \"-\") and writes\n" +
			"it back with data-elyx-* markers on every editable text and image.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := editable.Language(language)
			switch lang {
			case "", editable.LanguageFragment, editable.LanguageDocument, editable.LanguageComponent:
			default:
				return fmt.Errorf("unknown language %q", language)
			}

			src, err := readSource(cmd, args)
			if err != nil {
				return err
			}

			doc, err := editable.Transform(src, editable.Options{Language: lang, Scope: scope})
			var warn *editable.Warning
			if errors.As(err, &warn) {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warn)
			} else if err != nil {
				return err
			}

			if elements {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(doc.Elements)
			}
			return writeOutput(cmd, output, doc.Source)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Source language: html-fragment, full-html-document or component-source (detected when empty)")
	cmd.Flags().StringVarP(&scope, "scope", "s", "", "Value for data-elyx-scope, usually the template id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().BoolVar(&elements, "elements", false, "Print the editable elements as JSON instead of the source")

	return cmd
}

func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(b), nil
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
