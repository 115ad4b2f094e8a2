package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/services/prelabel"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
)

var prelabelMinScore float64

var prelabelCmd = &cobra.Command{
	Use:   "prelabel [image-dir] [output.json]",
	Short: "Bootstrap COCO annotations with Google Cloud Vision object localization",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := prelabel.New(prelabelMinScore)
		doc, err := service.BuildDocument(args[0])
		if err != nil {
			return err
		}
		if err := coco.Write(args[1], doc); err != nil {
			return err
		}
		fmt.Printf("Wrote %d images, %d annotations, %d categories to %s\n",
			len(doc.Images), len(doc.Annotations), len(doc.Categories), args[1])
		return nil
	},
}

func init() {
	prelabelCmd.Flags().Float64Var(&prelabelMinScore, "min-score", 0.5, "Minimum detection confidence to keep")
	rootCmd.AddCommand(prelabelCmd)
}
