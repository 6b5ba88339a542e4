package vision

import (
	"image"
	"image/color"

	"ppe-inspector/internal/domain/entity"
)

const (
	// DefaultJPEGQuality качество итоговой картинки
	DefaultJPEGQuality = 90
	strokeWidth        = 2
	labelOffset        = 10
)

var (
	colorOK        = color.RGBA{G: 255, A: 255}
	colorViolation = color.RGBA{R: 255, A: 255}
)

// boxColor: нарушения красным, всё остальное зелёным.
func boxColor(cm entity.ComplianceMap, label string) color.RGBA {
	if cm.IsViolation(label) {
		return colorViolation
	}
	return colorOK
}

// labelOrigin возвращает базовую линию подписи над рамкой.
// Если сверху не хватает места, подпись уходит внутрь рамки.
func labelOrigin(box image.Rectangle, textHeight int) image.Point {
	y := box.Min.Y - labelOffset
	if y-textHeight < 0 {
		y = box.Min.Y + textHeight + strokeWidth
	}
	x := box.Min.X
	if x < 0 {
		x = 0
	}
	return image.Pt(x, y)
}
