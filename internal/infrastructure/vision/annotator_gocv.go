//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"errors"
	"image/jpeg"

	"gocv.io/x/gocv"

	"ppe-inspector/internal/domain/entity"
	"ppe-inspector/internal/domain/port"
)

const fontScale = 0.6

// Annotator рисует рамки через OpenCV.
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

// Annotate рисует прямоугольники вокруг объектов и подписывает статус.
func (a *Annotator) Annotate(imageData []byte, detections []entity.Detection, cm entity.ComplianceMap) ([]byte, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	for _, d := range detections {
		c := boxColor(cm, d.Label)
		rect := d.Box.Rect()
		gocv.Rectangle(&mat, rect, c, strokeWidth)

		status := cm.Status(d.Label)
		size := gocv.GetTextSize(status, gocv.FontHersheySimplex, fontScale, strokeWidth)
		gocv.PutText(&mat, status, labelOrigin(rect, size.Y), gocv.FontHersheySimplex, fontScale, c, strokeWidth)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: a.Quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

var _ port.Annotator = (*Annotator)(nil)
