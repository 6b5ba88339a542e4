package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComplianceMap_StatusForVocabulary(t *testing.T) {
	cm := DefaultComplianceMap()
	labels := []string{
		LabelHardhat, LabelSafetyVest, LabelMask,
		LabelNoHardhat, LabelNoSafetyVest, LabelNoMask,
		LabelPerson, LabelMachinery, LabelVehicle, LabelSafetyCone,
	}
	for _, label := range labels {
		status := cm.Status(label)
		require.NotEmpty(t, status, label)
		require.NotEqual(t, StatusUnknown, status, label)
	}
	require.Equal(t, "Compliant", cm.Status(LabelHardhat))
	require.Equal(t, "Missing Hardhat", cm.Status(LabelNoHardhat))
}

func TestComplianceMap_StatusUnknown(t *testing.T) {
	cm := DefaultComplianceMap()
	for _, label := range []string{"UnknownGear", "", "hardhat", "Helmet"} {
		require.Equal(t, StatusUnknown, cm.Status(label), label)
	}
}

func TestComplianceMap_Category(t *testing.T) {
	cm := DefaultComplianceMap()
	require.Equal(t, CategoryCompliant, cm.Category(LabelSafetyVest))
	require.Equal(t, CategoryViolation, cm.Category(LabelNoMask))
	require.Equal(t, CategoryOther, cm.Category(LabelPerson))
	require.Equal(t, CategoryOther, cm.Category("UnknownGear"))
	require.True(t, cm.IsViolation("Worker NO-Gloves"))
}

func TestComplianceMap_Validate(t *testing.T) {
	require.NoError(t, DefaultComplianceMap().Validate())

	cm := DefaultComplianceMap()
	cm.ViolationMarker = ""
	require.Error(t, cm.Validate())

	require.Error(t, ComplianceMap{ViolationMarker: "NO-"}.Validate())

	cm = DefaultComplianceMap()
	cm.Statuses = map[string]string{"Gloves": " "}
	require.Error(t, cm.Validate())
}
