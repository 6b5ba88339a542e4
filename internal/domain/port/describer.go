package port

import (
	"context"

	"ppe-inspector/internal/domain/entity"
)

// ComplianceDescriber интерфейс описателя результата проверки
type ComplianceDescriber interface {
	// Describe генерирует текстовое описание сводки
	Describe(ctx context.Context, summary *entity.Summary) (*entity.AiDescription, error)
}
