package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kraftysprouts/pinmaker"
	"github.com/kraftysprouts/pinmaker/format"
)

func newPreviewCmd(flags *rootFlags) *cobra.Command {
	var (
		out      string
		formatAs string
		quality  int
		width    int
		height   int
		bindArgs []string
	)

	cmd := &cobra.Command{
		Use:   "preview <template-id>",
		Short: "Render a template preview with sample content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings := pinmaker.Binding{}
			for _, arg := range bindArgs {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected element=value, got %q", arg)
				}
				bindings[key] = value
			}

			var f format.Format
			switch strings.ToLower(formatAs) {
			case "png":
				f = format.PNG
			case "jpeg", "jpg":
				f = format.JPEG
			default:
				return fmt.Errorf("unsupported format %q", formatAs)
			}

			svc, err := newService(flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			art, err := svc.GeneratePreview(cmd.Context(), args[0], bindings, pinmaker.PreviewOptions{
				Format:  f,
				Quality: quality,
				Width:   width,
				Height:  height,
			})
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = "preview-" + art.ID + art.Format.Extension()
			}
			if err := os.WriteFile(path, art.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preview %s (%dx%d) written to %s\n", art.ID, art.Width, art.Height, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: preview-<id>.<ext>)")
	cmd.Flags().StringVar(&formatAs, "format", "png", "Output format: png or jpeg")
	cmd.Flags().IntVar(&quality, "quality", 85, "JPEG quality (1-100)")
	cmd.Flags().IntVar(&width, "width", 0, "Output width (default: template width)")
	cmd.Flags().IntVar(&height, "height", 0, "Output height (default: template height)")
	cmd.Flags().StringArrayVar(&bindArgs, "bind", nil, "Bind sample content: element=value (repeatable)")
	return cmd
}

func newFetchCmd(flags *rootFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "fetch <artifact-id>",
		Short: "Fetch a previously rendered preview artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			data, err := svc.FetchArtifact(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
