package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"giftora/internal/compose"
	"giftora/internal/editable"
)

// manifest describes a template on disk. Code paths are relative to the
// manifest file.
type manifest struct {
	Name         string                       `yaml:"name"`
	HTML         string                       `yaml:"html"`
	CSS          string                       `yaml:"css"`
	JS           string                       `yaml:"js"`
	Translations map[string]map[string]string `yaml:"translations"`
	Language     string                       `yaml:"language"`
	Editable     bool                         `yaml:"editable"`
}

func loadManifest(path string) (*manifest, compose.Parts, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, compose.Parts{}, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, compose.Parts{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.HTML == "" {
		return nil, compose.Parts{}, fmt.Errorf("manifest %s: html is required", path)
	}

	dir := filepath.Dir(path)
	read := func(rel string) (string, error) {
		if rel == "" {
			return "", nil
		}
		b, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", rel, err)
		}
		return string(b), nil
	}

	p := compose.Parts{Name: m.Name, Language: m.Language}
	if p.HTML, err = read(m.HTML); err != nil {
		return nil, p, err
	}
	if p.CSS, err = read(m.CSS); err != nil {
		return nil, p, err
	}
	if p.JS, err = read(m.JS); err != nil {
		return nil, p, err
	}
	if len(m.Translations) > 0 {
		if p.Translations, err = json.Marshal(m.Translations); err != nil {
			return nil, p, fmt.Errorf("encode translations: %w", err)
		}
	}
	return &m, p, nil
}

func newComposeCmd() *cobra.Command {
	var (
		output   string
		language string
	)

	cmd := &cobra.Command{
		Use:   "compose <manifest.yaml>",
		Short: "Compose a template manifest into a standalone HTML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, parts, err := loadManifest(args[0])
			if err != nil {
				return err
			}
			if language != "" {
				parts.Language = language
			}
			if m.Editable {
				doc, err := editable.Transform(parts.HTML, editable.Options{Language: editable.MarkupLanguage(parts.HTML)})
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
				}
				parts.HTML = doc.Source
			}

			doc, err := compose.Compose(parts)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, doc)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().StringVarP(&language, "lang", "l", "", "Preview language, overriding the manifest")

	return cmd
}
