package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kraftysprouts/pinmaker"
	"github.com/kraftysprouts/pinmaker/model"
	"github.com/kraftysprouts/pinmaker/template"
)

func newTemplateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Generate and edit templates",
	}
	cmd.AddCommand(newTemplateGenerateCmd(flags))
	cmd.AddCommand(newTemplateUpdateCmd(flags))
	cmd.AddCommand(newTemplateShowCmd(flags))
	return cmd
}

func newTemplateGenerateCmd(flags *rootFlags) *cobra.Command {
	var (
		style  string
		width  int
		height int
		out    string
	)

	cmd := &cobra.Command{
		Use:   "generate <analysis-id>",
		Short: "Synthesize a template from an analysis result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			tpl, err := svc.GenerateTemplate(cmd.Context(), args[0], pinmaker.TemplateOptions{
				Style:  style,
				Width:  width,
				Height: height,
			})
			if err != nil {
				return err
			}

			if out != "" {
				if err := os.WriteFile(out, []byte(tpl.Document), 0o644); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s v%d (%d elements)\n", tpl.ID, tpl.Version, len(tpl.Elements))
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "modern", "Style preset: "+strings.Join(template.PresetNames(), ", "))
	cmd.Flags().IntVar(&width, "width", 0, "Template width (default: source image width)")
	cmd.Flags().IntVar(&height, "height", 0, "Template height (default: source image height)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the generated document to a file")
	return cmd
}

func newTemplateUpdateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <template-id> <element.field=value>...",
		Short: "Apply customizations to a template",
		Long: `Apply one or more field updates to template elements, producing
a new template version. Examples:

  pinmaker template update <id> text_0.content="New Title"
  pinmaker template update <id> text_0.color=#ff0000 text_1.font_size=32`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mutation, err := parseMutation(args[1:])
			if err != nil {
				return err
			}

			svc, err := newService(flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			tpl, err := svc.UpdateTemplate(cmd.Context(), args[0], mutation)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s now at v%d (%d overrides)\n", tpl.ID, tpl.Version, len(tpl.Overrides))
			return nil
		},
	}
	return cmd
}

func newTemplateShowCmd(flags *rootFlags) *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "show <template-id>",
		Short: "Print a template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			var tpl *model.Template
			if version >= 0 {
				tpl, err = svc.GetTemplateVersion(cmd.Context(), args[0], version)
			} else {
				tpl, err = svc.GetTemplate(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tpl)
		},
	}

	cmd.Flags().IntVar(&version, "version", -1, "Show a specific version instead of the latest")
	return cmd
}

// parseMutation turns "element.field=value" arguments into a Mutation.
func parseMutation(args []string) (pinmaker.Mutation, error) {
	mutation := pinmaker.Mutation{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected element.field=value, got %q", arg)
		}
		target, field, ok := strings.Cut(key, ".")
		if !ok || target == "" || field == "" {
			return nil, fmt.Errorf("expected element.field=value, got %q", arg)
		}
		if mutation[target] == nil {
			mutation[target] = map[string]string{}
		}
		mutation[target][field] = value
	}
	return mutation, nil
}
