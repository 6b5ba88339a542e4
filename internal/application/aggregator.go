package app

import "ppe-inspector/internal/domain/entity"

// Aggregator превращает список детекций в сводку по СИЗ.
// Не хранит состояния между вызовами.
type Aggregator struct {
	compliance entity.ComplianceMap
}

// NewAggregator создаёт агрегатор поверх таблицы статусов.
func NewAggregator(cm entity.ComplianceMap) *Aggregator {
	return &Aggregator{compliance: cm}
}

// Compliance возвращает таблицу статусов, с которой работает агрегатор
func (a *Aggregator) Compliance() entity.ComplianceMap {
	return a.compliance
}

// Aggregate считает метки, выбирает основной объект и подводит итоги.
// Пустой список даёт сводку с нулями и флагом NoDetections.
func (a *Aggregator) Aggregate(detections []entity.Detection) *entity.Summary {
	summary := &entity.Summary{
		Counts:       make(map[string]int),
		Labels:       make([]string, 0),
		Total:        len(detections),
		NoDetections: len(detections) == 0,
	}
	if summary.NoDetections {
		return summary
	}

	first := detections[0]
	summary.Primary = &first

	for _, d := range detections {
		if _, seen := summary.Counts[d.Label]; !seen {
			summary.Labels = append(summary.Labels, d.Label)
		}
		summary.Counts[d.Label]++

		// Нарушение без человека невозможно: каждое считаем за работника.
		if d.Label == entity.LabelPerson || a.compliance.IsViolation(d.Label) {
			summary.Workers++
		}
	}

	for _, label := range summary.Labels {
		if a.compliance.IsViolation(label) {
			summary.Violations++
		}
		if a.compliance.IsCompliant(label) {
			summary.Compliant++
		}
	}

	return summary
}
