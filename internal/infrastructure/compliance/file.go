package compliance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ppe-inspector/internal/domain/entity"
)

// LoadFile читает таблицу статусов из YAML.
// Пустой путь означает стандартную таблицу. Незаданные поля берутся из неё же.
//
//	statuses:
//	  Hardhat: Compliant
//	  NO-Hardhat: Missing Hardhat
//	compliant_labels: [Hardhat]
//	violation_marker: "NO-"
func LoadFile(path string) (entity.ComplianceMap, error) {
	if path == "" {
		return entity.DefaultComplianceMap(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return entity.ComplianceMap{}, fmt.Errorf("read compliance map: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML-таблицу статусов.
func Parse(data []byte) (entity.ComplianceMap, error) {
	var cm entity.ComplianceMap
	if err := yaml.Unmarshal(data, &cm); err != nil {
		return entity.ComplianceMap{}, fmt.Errorf("parse compliance map: %w", err)
	}

	defaults := entity.DefaultComplianceMap()
	if len(cm.Statuses) == 0 {
		cm.Statuses = defaults.Statuses
	}
	if cm.CompliantLabels == nil {
		cm.CompliantLabels = defaults.CompliantLabels
	}
	if cm.ViolationMarker == "" {
		cm.ViolationMarker = defaults.ViolationMarker
	}

	if err := cm.Validate(); err != nil {
		return entity.ComplianceMap{}, err
	}
	return cm, nil
}
