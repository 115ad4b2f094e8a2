package review

import (
	"log/slog"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/models"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
)

// Display renders the record the cursor points at. Implementations overlay
// each annotation's box and category label on the image, scaled to fit the
// display region.
type Display interface {
	Show(rec coco.ImageRecord) error
}

// Navigator drives one review session: a cursor over the ordered image
// records, the classification map, and the current label selection. The
// record sequence is read-only; only the cursor, selection and map mutate.
type Navigator struct {
	session *models.ReviewSession
	display Display
}

func New(session *models.ReviewSession, display Display) *Navigator {
	if session.Classifications == nil {
		session.Classifications = make(models.ClassificationMap)
	}
	return &Navigator{session: session, display: display}
}

// Current returns the record at the cursor, or false when the session has
// no records at all.
func (n *Navigator) Current() (coco.ImageRecord, bool) {
	if len(n.session.Records) == 0 {
		return coco.ImageRecord{}, false
	}
	return n.session.Records[n.session.Cursor], true
}

// Advance moves the cursor forward one record. At the last record it stays
// put but still resyncs the selection and re-renders, like the original
// arrow-key handlers.
func (n *Navigator) Advance() {
	if n.session.Cursor < len(n.session.Records)-1 {
		n.session.Cursor++
	}
	n.syncSelection()
	n.Render()
}

// Retreat moves the cursor back one record, clamped at the first.
func (n *Navigator) Retreat() {
	if n.session.Cursor > 0 {
		n.session.Cursor--
	}
	n.syncSelection()
	n.Render()
}

// Classify selects label for the current record and applies it to the
// classification map: sparse or dense overwrite the entry, none clears it.
// The single-label selection makes a both-selected state unrepresentable.
func (n *Navigator) Classify(label models.Label) {
	rec, ok := n.Current()
	if !ok {
		return
	}
	n.session.Selection = label
	n.commit(rec.FileName)
}

// QuickClassify is the keyboard-accelerated path (1 for sparse, 2 for
// dense): select and persist in one step.
func (n *Navigator) QuickClassify(label models.Label) {
	n.Classify(label)
}

// SaveAndAdvance commits whatever is currently selected, then moves on.
// This is the space-bar path.
func (n *Navigator) SaveAndAdvance() {
	if rec, ok := n.Current(); ok {
		n.commit(rec.FileName)
	}
	n.Advance()
}

// Merge folds an imported classification map into the live one, imported
// values winning on conflict, then refreshes the current view.
func (n *Navigator) Merge(imported models.ClassificationMap) {
	for name, label := range imported {
		n.session.Classifications[name] = label
	}
	n.syncSelection()
	n.Render()
}

// Progress reports how many images carry a label out of the total.
func (n *Navigator) Progress() (classified, total int) {
	return len(n.session.Classifications), len(n.session.Records)
}

// Render pushes the current record to the display collaborator. A display
// failure is logged and otherwise ignored so navigation always proceeds.
func (n *Navigator) Render() {
	rec, ok := n.Current()
	if !ok || n.display == nil {
		return
	}
	if err := n.display.Show(rec); err != nil {
		slog.Warn("Unable to display image", "file", rec.FileName, "err", err)
	}
}

func (n *Navigator) commit(fileName string) {
	if n.session.Selection == models.LabelNone {
		delete(n.session.Classifications, fileName)
	} else {
		n.session.Classifications[fileName] = n.session.Selection
	}
}

func (n *Navigator) syncSelection() {
	if rec, ok := n.Current(); ok {
		n.session.Selection = n.session.Classifications[rec.FileName]
	} else {
		n.session.Selection = models.LabelNone
	}
}
