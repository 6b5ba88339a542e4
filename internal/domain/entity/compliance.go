package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Метки словаря модели.
const (
	LabelHardhat        = "Hardhat"
	LabelSafetyVest     = "Safety Vest"
	LabelMask           = "Mask"
	LabelNoHardhat      = "NO-Hardhat"
	LabelNoSafetyVest   = "NO-Safety Vest"
	LabelNoMask         = "NO-Mask"
	LabelPerson         = "Person"
	LabelMachinery      = "machinery"
	LabelVehicle        = "vehicle"
	LabelSafetyCone     = "Safety Cone"
	DefaultMarker       = "NO-"
	StatusUnknown       = "Unknown"
	PrimaryNoneSentinel = "none"
)

// Category грубая классификация метки
type Category string

const (
	CategoryCompliant Category = "compliant" // СИЗ на месте
	CategoryViolation Category = "violation" // СИЗ отсутствует
	CategoryOther     Category = "other"     // люди, техника, конусы
)

// ComplianceMap таблица соответствия метки и статуса для отображения.
// После старта не изменяется, поэтому может разделяться между запросами.
type ComplianceMap struct {
	Statuses        map[string]string `yaml:"statuses"`
	CompliantLabels []string          `yaml:"compliant_labels"`
	ViolationMarker string            `yaml:"violation_marker"`
}

// DefaultComplianceMap возвращает таблицу для стандартного словаря из 10 классов.
func DefaultComplianceMap() ComplianceMap {
	return ComplianceMap{
		Statuses: map[string]string{
			LabelHardhat:      "Compliant",
			LabelSafetyVest:   "Compliant",
			LabelMask:         "Compliant",
			LabelNoHardhat:    "Missing Hardhat",
			LabelNoSafetyVest: "Missing Vest",
			LabelNoMask:       "Missing Mask",
			LabelPerson:       "Worker",
			LabelMachinery:    "Machinery",
			LabelVehicle:      "Vehicle",
			LabelSafetyCone:   "Cone",
		},
		CompliantLabels: []string{LabelHardhat, LabelSafetyVest, LabelMask},
		ViolationMarker: DefaultMarker,
	}
}

// Status возвращает статус метки или "Unknown", если метки нет в таблице
func (c ComplianceMap) Status(label string) string {
	if status, ok := c.Statuses[label]; ok && status != "" {
		return status
	}
	return StatusUnknown
}

// IsViolation сообщает, содержит ли метка маркер отсутствующего СИЗ.
func (c ComplianceMap) IsViolation(label string) bool {
	return c.ViolationMarker != "" && strings.Contains(label, c.ViolationMarker)
}

// IsCompliant сообщает, входит ли метка в список СИЗ.
func (c ComplianceMap) IsCompliant(label string) bool {
	for _, l := range c.CompliantLabels {
		if l == label {
			return true
		}
	}
	return false
}

// Category определяет категорию метки. Нарушение проверяется первым.
func (c ComplianceMap) Category(label string) Category {
	switch {
	case c.IsViolation(label):
		return CategoryViolation
	case c.IsCompliant(label):
		return CategoryCompliant
	default:
		return CategoryOther
	}
}

// Validate проверяет, что таблицей можно пользоваться.
func (c ComplianceMap) Validate() error {
	if len(c.Statuses) == 0 {
		return errors.New("compliance map: statuses are empty")
	}
	if c.ViolationMarker == "" {
		return errors.New("compliance map: violation marker is empty")
	}
	for label, status := range c.Statuses {
		if strings.TrimSpace(label) == "" {
			return errors.New("compliance map: empty label")
		}
		if strings.TrimSpace(status) == "" {
			return fmt.Errorf("compliance map: empty status for %q", label)
		}
	}
	return nil
}
