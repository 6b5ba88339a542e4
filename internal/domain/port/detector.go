package port

import (
	"context"

	"ppe-inspector/internal/domain/entity"
)

// ObjectDetector внешняя модель детекции
type ObjectDetector interface {
	// Detect возвращает объекты в том порядке, в котором их отдала модель.
	// Реализация должна быть безопасна для параллельных вызовов.
	Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error)
}

// Annotator рисует рамки и статусы поверх изображения
type Annotator interface {
	// Annotate возвращает JPEG с подсветкой: нарушения красным, остальное зелёным
	Annotate(imageData []byte, detections []entity.Detection, cm entity.ComplianceMap) ([]byte, error)
}
