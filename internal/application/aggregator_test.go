package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ppe-inspector/internal/domain/entity"
)

func det(label string, conf float64) entity.Detection {
	return entity.Detection{Label: label, Confidence: conf, Box: entity.BoundingBox{XMin: 1, YMin: 1, XMax: 10, YMax: 10}}
}

func TestAggregator_MixedScene(t *testing.T) {
	agg := NewAggregator(entity.DefaultComplianceMap())

	summary := agg.Aggregate([]entity.Detection{
		det("Hardhat", 0.95),
		det("NO-Safety Vest", 0.88),
		det("Person", 0.99),
	})

	require.False(t, summary.NoDetections)
	require.Equal(t, map[string]int{"Hardhat": 1, "NO-Safety Vest": 1, "Person": 1}, summary.Counts)
	require.Equal(t, 1, summary.Compliant)
	require.Equal(t, 1, summary.Violations)
	require.Equal(t, 2, summary.Workers)
	require.Equal(t, "Hardhat", summary.PrimaryLabel())
}

func TestAggregator_Empty(t *testing.T) {
	agg := NewAggregator(entity.DefaultComplianceMap())

	for _, input := range [][]entity.Detection{nil, {}} {
		summary := agg.Aggregate(input)
		require.True(t, summary.NoDetections)
		require.Empty(t, summary.Counts)
		require.Zero(t, summary.Compliant)
		require.Zero(t, summary.Violations)
		require.Zero(t, summary.Workers)
		require.Nil(t, summary.Primary)
		require.Equal(t, entity.PrimaryNoneSentinel, summary.PrimaryLabel())
	}
}

func TestAggregator_UnknownLabel(t *testing.T) {
	cm := entity.DefaultComplianceMap()
	agg := NewAggregator(cm)

	summary := agg.Aggregate([]entity.Detection{det("UnknownGear", 0.5)})

	require.Equal(t, map[string]int{"UnknownGear": 1}, summary.Counts)
	require.Zero(t, summary.Compliant)
	require.Zero(t, summary.Violations)
	require.Zero(t, summary.Workers)

	lines := summary.Lines(cm)
	require.Len(t, lines, 1)
	require.Equal(t, entity.StatusUnknown, lines[0].Status)
}

func TestAggregator_RepeatedLabels(t *testing.T) {
	agg := NewAggregator(entity.DefaultComplianceMap())

	summary := agg.Aggregate([]entity.Detection{
		det("NO-Hardhat", 0.4),
		det("Hardhat", 0.9),
		det("NO-Hardhat", 0.7),
		det("Hardhat", 0.8),
		det("Hardhat", 0.6),
		det("Person", 0.9),
		det("Mask", 0.5),
	})

	require.Equal(t, 3, summary.Counts["Hardhat"])
	require.Equal(t, 2, summary.Counts["NO-Hardhat"])
	require.Equal(t, 7, summary.Total)
	// различные метки, а не экземпляры
	require.Equal(t, 2, summary.Compliant)
	require.Equal(t, 1, summary.Violations)
	// один Person и два NO-Hardhat
	require.Equal(t, 3, summary.Workers)
	require.Equal(t, []string{"NO-Hardhat", "Hardhat", "Person", "Mask"}, summary.Labels)
}

func TestAggregator_PrimaryIsFirstNotBest(t *testing.T) {
	agg := NewAggregator(entity.DefaultComplianceMap())

	summary := agg.Aggregate([]entity.Detection{
		det("Safety Cone", 0.3),
		det("Person", 0.99),
	})

	require.Equal(t, "Safety Cone", summary.PrimaryLabel())
	require.Equal(t, 0.3, summary.Primary.Confidence)
}

func TestAggregator_CustomComplianceMap(t *testing.T) {
	cm := entity.ComplianceMap{
		Statuses: map[string]string{
			"Gloves":    "Compliant",
			"NO-Gloves": "Missing Gloves",
			"Person":    "Worker",
		},
		CompliantLabels: []string{"Gloves"},
		ViolationMarker: "NO-",
	}
	agg := NewAggregator(cm)

	summary := agg.Aggregate([]entity.Detection{
		det("Gloves", 0.9),
		det("NO-Gloves", 0.8),
		det("Hardhat", 0.8),
	})

	require.Equal(t, 1, summary.Compliant)
	require.Equal(t, 1, summary.Violations)
	require.Equal(t, 1, summary.Workers)
}
