package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze an image for text, colors, and layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(flags)
			if err != nil {
				return err
			}
			defer svc.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			res, err := svc.AnalyzeImage(cmd.Context(), data)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Analysis %s (confidence %.2f)\n%s\n", res.ID, res.Confidence, res.Summary())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full analysis result as JSON")
	return cmd
}
