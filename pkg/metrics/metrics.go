package metrics

import (
	"fmt"
	"sort"

	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
)

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DatasetSummary struct {
	Images      int             `json:"images"`
	Annotations int             `json:"annotations"`
	Categories  int             `json:"categories"`
	Unannotated int             `json:"unannotated"`
	MinBoxes    int             `json:"min_boxes"`
	MaxBoxes    int             `json:"max_boxes"`
	MeanBoxes   float64         `json:"mean_boxes"`
	PerCategory []CategoryCount `json:"per_category"`
}

// Summarize computes box density statistics for a document, counting the
// annotations actually attached to an image. Category counts cover the whole
// category table, so unused classes show up with a zero.
func Summarize(doc *coco.Document) DatasetSummary {
	records := doc.BuildIndex()

	summary := DatasetSummary{
		Images:     len(records),
		Categories: len(doc.Categories),
	}

	byCategory := make(map[int]int, len(doc.Categories))
	for i, rec := range records {
		n := len(rec.Annotations)
		summary.Annotations += n
		if n == 0 {
			summary.Unannotated++
		}
		if i == 0 || n < summary.MinBoxes {
			summary.MinBoxes = n
		}
		if n > summary.MaxBoxes {
			summary.MaxBoxes = n
		}
		for _, ann := range rec.Annotations {
			byCategory[ann.CategoryID]++
		}
	}
	if summary.Images > 0 {
		summary.MeanBoxes = float64(summary.Annotations) / float64(summary.Images)
	}

	counted := make(map[int]bool, len(doc.Categories))
	for _, cat := range doc.Categories {
		summary.PerCategory = append(summary.PerCategory, CategoryCount{
			Name:  cat.Name,
			Count: byCategory[cat.ID],
		})
		counted[cat.ID] = true
	}
	// Annotations referencing an ID missing from the table still count.
	for id, count := range byCategory {
		if !counted[id] {
			summary.PerCategory = append(summary.PerCategory, CategoryCount{
				Name:  fmt.Sprintf("category %d", id),
				Count: count,
			})
		}
	}
	sort.Slice(summary.PerCategory, func(i, j int) bool {
		if summary.PerCategory[i].Count != summary.PerCategory[j].Count {
			return summary.PerCategory[i].Count > summary.PerCategory[j].Count
		}
		return summary.PerCategory[i].Name < summary.PerCategory[j].Name
	})

	return summary
}
