package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/config"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// AddConfigCommand adds the config command and its show subcommand.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect eebuilder configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective configuration after merging, in order of precedence:
  - EEBUILDER_* environment variables
  - the file given with --config
  - .eebuilder/config.yaml in the working directory
  - ~/.eebuilder/config.yaml (or $EEBUILDER_HOME/config.yaml)
  - built-in defaults

The GitHub token is never printed; only whether it is set.

Examples:
  eebuilder config show
  eebuilder config show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	})

	root.AddCommand(configCmd)
}

// configView is what `config show` prints.
type configView struct {
	config.Config `yaml:",inline"`

	TokenSet bool `yaml:"token_set"`
}

// runConfigShow executes the config show command.
func runConfigShow(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cfg, err := config.LoadFile(ctx, flags.ConfigFile)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	view := configView{Config: *cfg, TokenSet: cfg.GitHub.Token() != ""}

	data, err := yaml.Marshal(view)
	if err != nil {
		return errors.Wrap(err, "failed to encode configuration")
	}

	switch flags.Output {
	case OutputJSON:
		// Round-trip through YAML so keys and durations match the file format.
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return errors.Wrap(err, "failed to encode configuration")
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case OutputText:
		r := lipgloss.NewRenderer(w)
		header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D7FF"))
		if _, err := fmt.Fprintln(w, header.Render("eebuilder configuration")); err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("%w: %s", errors.ErrInvalidOutputFormat, flags.Output)
	}
}
