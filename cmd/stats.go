package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats [annotations.json]",
	Short: "Print summary statistics for a COCO annotation file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := coco.Load(args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(metrics.Summarize(doc))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
