package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/services/convert"
)

var (
	convertSplits []string
	convertTag    string
)

var convertCmd = &cobra.Command{
	Use:   "convert [voc-root] [output-dir]",
	Short: "Convert a VOC dataset to COCO format",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		converter := convert.New(args[0], args[1], convertTag, convertSplits)
		return converter.Run()
	},
}

func init() {
	convertCmd.Flags().StringSliceVar(&convertSplits, "splits", []string{"train", "val"}, "Image set splits to convert")
	convertCmd.Flags().StringVar(&convertTag, "tag", "2024", "Year tag appended to split names")
	rootCmd.AddCommand(convertCmd)
}
