package app

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"

	"ppe-inspector/internal/domain/entity"
	"ppe-inspector/internal/domain/port"
)

// DefaultMaxImageBytes ограничение на размер загружаемого фото
const DefaultMaxImageBytes = 20 << 20

// supportedFormats форматы, которые принимает модель
var supportedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// InspectionOptions настройки проверки
type InspectionOptions struct {
	MinConfidence float64 // детекции ниже порога отбрасываются
	MaxImageBytes int     // 0 — DefaultMaxImageBytes
}

// InspectionService управляет проверкой СИЗ на одном фото.
type InspectionService struct {
	detector   port.ObjectDetector
	annotator  port.Annotator
	describer  port.ComplianceDescriber
	aggregator *Aggregator
	opts       InspectionOptions
}

// InspectionOutput содержит сводку и картинку с подсветкой.
type InspectionOutput struct {
	Detections  []entity.Detection
	Summary     *entity.Summary
	Annotated   []byte // nil, если ничего не найдено или отрисовка не удалась
	Description *entity.AiDescription
	Format      string
	Width       int
	Height      int
}

// NewInspectionService создаёт сервис. describer может быть nil.
func NewInspectionService(detector port.ObjectDetector, annotator port.Annotator, describer port.ComplianceDescriber, aggregator *Aggregator, opts InspectionOptions) *InspectionService {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	return &InspectionService{
		detector:   detector,
		annotator:  annotator,
		describer:  describer,
		aggregator: aggregator,
		opts:       opts,
	}
}

// Compliance возвращает таблицу статусов для отображения
func (s *InspectionService) Compliance() entity.ComplianceMap {
	return s.aggregator.Compliance()
}

// MaxImageBytes возвращает предел размера фото
func (s *InspectionService) MaxImageBytes() int {
	return s.opts.MaxImageBytes
}

// ProcessPhoto запускает детектор, считает сводку и рисует рамки.
func (s *InspectionService) ProcessPhoto(ctx context.Context, photo []byte) (*InspectionOutput, error) {
	if len(photo) == 0 {
		return nil, ErrNoImage
	}
	if len(photo) > s.opts.MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(photo), s.opts.MaxImageBytes)
	}
	if s.detector == nil {
		return nil, ErrDetectorNotConfigured
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if !supportedFormats[format] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
	}

	detections, err := s.detector.Detect(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInferenceFailed, err)
	}
	detections = s.filter(detections)

	summary := s.aggregator.Aggregate(detections)
	out := &InspectionOutput{
		Detections: detections,
		Summary:    summary,
		Format:     format,
		Width:      cfg.Width,
		Height:     cfg.Height,
	}

	if !summary.NoDetections && s.annotator != nil {
		out.Annotated, err = s.annotator.Annotate(photo, detections, s.Compliance())
		if err != nil {
			log.WithError(err).Warn("annotate image")
			out.Annotated = nil
		}
	}

	if s.describer != nil {
		out.Description, err = s.describer.Describe(ctx, summary)
		if err != nil {
			log.WithError(err).Warn("describe summary")
			out.Description = nil
		}
	}

	return out, nil
}

func (s *InspectionService) filter(detections []entity.Detection) []entity.Detection {
	if s.opts.MinConfidence <= 0 {
		return detections
	}
	filtered := make([]entity.Detection, 0, len(detections))
	for _, d := range detections {
		if d.Confidence >= s.opts.MinConfidence {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
