package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
)

var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

var fontData = draw2d.FontData{Name: "goregular"}

var fontOnce sync.Once

func registerFont() {
	fontOnce.Do(func() {
		font, err := truetype.Parse(goregular.TTF)
		if err != nil {
			slog.Error("Unable to parse embedded font", "err", err)
			return
		}
		draw2d.RegisterFont(fontData, font)
	})
}

// Renderer composes review frames: the source image with every annotation
// box and its category label drawn on top, scaled to fit the display region.
type Renderer struct {
	width  int
	height int
}

func New(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// RenderRecord draws rec's annotations over its image file and returns the
// frame fitted to the display region. Unknown category IDs are labeled with
// the raw ID.
func (r *Renderer) RenderRecord(imageDir string, rec coco.ImageRecord, names map[int]string) (image.Image, error) {
	path := filepath.Join(imageDir, rec.FileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)

	registerFont()
	gc := draw2dimg.NewGraphicContext(canvas)
	gc.SetFontData(fontData)
	gc.SetFontSize(12)
	gc.SetStrokeColor(boxColor)
	gc.SetFillColor(boxColor)
	gc.SetLineWidth(2)

	for _, ann := range rec.Annotations {
		if len(ann.BBox) != 4 {
			continue
		}
		x, y, w, h := ann.BBox[0], ann.BBox[1], ann.BBox[2], ann.BBox[3]
		gc.BeginPath()
		gc.MoveTo(x, y)
		gc.LineTo(x+w, y)
		gc.LineTo(x+w, y+h)
		gc.LineTo(x, y+h)
		gc.Close()
		gc.Stroke()

		label := names[ann.CategoryID]
		if label == "" {
			label = fmt.Sprintf("category %d", ann.CategoryID)
		}
		gc.FillStringAt(label, x, y-10)
	}

	return r.fit(canvas), nil
}

func (r *Renderer) fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := FitRect(b.Dx(), b.Dy(), r.width, r.height)
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// FitRect scales (w, h) to fill (maxW, maxH) in one dimension while
// preserving the aspect ratio, never exceeding the region in the other.
func FitRect(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := int(math.Round(float64(w) * scale))
	fh := int(math.Round(float64(h) * scale))
	if fw > maxW {
		fw = maxW
	}
	if fh > maxH {
		fh = maxH
	}
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	return fw, fh
}

// EncodePNG serializes a frame for the HTTP shell.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
