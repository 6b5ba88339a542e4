package app

import (
	"fmt"
	"strings"

	"ppe-inspector/internal/domain/entity"
)

// MsgNoDetections текст для пустого результата
const MsgNoDetections = "No objects detected"

var categoryIcons = map[entity.Category]string{
	entity.CategoryCompliant: "✅",
	entity.CategoryViolation: "❌",
	entity.CategoryOther:     "•",
}

// RenderReport собирает текстовую сводку для бота и HTTP-ответа.
func RenderReport(summary *entity.Summary, cm entity.ComplianceMap) string {
	if summary == nil || summary.NoDetections {
		return MsgNoDetections
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PPE compliance summary: %d object(s)\n", summary.Total)
	for _, line := range summary.Lines(cm) {
		fmt.Fprintf(&b, "%s %s (%s): %d\n", categoryIcons[line.Category], line.Status, line.Label, line.Count)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Compliant items: %d\n", summary.Compliant)
	fmt.Fprintf(&b, "Violations: %d\n", summary.Violations)
	fmt.Fprintf(&b, "Workers: %d\n", summary.Workers)
	fmt.Fprintf(&b, "Primary: %s (%.2f)", summary.Primary.Label, summary.Primary.Confidence)

	return b.String()
}
