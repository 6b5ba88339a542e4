//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"ppe-inspector/internal/domain/entity"
	"ppe-inspector/internal/domain/port"
)

// Annotator рисует рамки средствами imaging, без OpenCV.
type Annotator struct {
	Quality int
}

// NewAnnotator создаёт рисовальщик с заданным качеством JPEG.
func NewAnnotator(quality int) *Annotator {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Annotator{Quality: quality}
}

// Annotate рисует рамки и статусы и возвращает JPEG.
func (a *Annotator) Annotate(imageData []byte, detections []entity.Detection, cm entity.ComplianceMap) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	canvas := imaging.Clone(src)
	if canvas.Bounds().Empty() {
		return nil, errors.New("empty image")
	}

	face := basicfont.Face7x13
	textHeight := face.Metrics().Ascent.Ceil()
	for _, d := range detections {
		c := boxColor(cm, d.Label)
		rect := d.Box.Rect()
		drawRect(canvas, rect, c, strokeWidth)

		origin := labelOrigin(rect, textHeight)
		drawer := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(origin.X, origin.Y),
		}
		drawer.DrawString(cm.Status(d.Label))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(a.Quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// drawRect рисует контур прямоугольника толщиной stroke внутрь от границы.
func drawRect(img *image.NRGBA, r image.Rectangle, c color.Color, stroke int) {
	r = r.Canon()
	if r.Dx() <= 2*stroke || r.Dy() <= 2*stroke {
		draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
		return
	}
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+stroke),
		image.Rect(r.Min.X, r.Max.Y-stroke, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+stroke, r.Max.Y),
		image.Rect(r.Max.X-stroke, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

var _ port.Annotator = (*Annotator)(nil)
