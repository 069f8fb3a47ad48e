package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rushteam/premiumkit/core"
)

func TestOneHotField_EncodeValue(t *testing.T) {
	region := NewOneHotField(core.FieldRegion,
		Level{"Northwest", ColRegionNorthwest},
		Level{"Southeast", ColRegionSoutheast},
		Level{"Southwest", ColRegionSouthwest},
	)

	tests := []struct {
		name    string
		value   any
		present bool
		want    map[string]float64
	}{
		{
			name: "matching level", value: "Southeast", present: true,
			want: map[string]float64{ColRegionNorthwest: 0, ColRegionSoutheast: 1, ColRegionSouthwest: 0},
		},
		{
			name: "reference level", value: "Northeast", present: true,
			want: map[string]float64{ColRegionNorthwest: 0, ColRegionSoutheast: 0, ColRegionSouthwest: 0},
		},
		{
			name: "match is case sensitive", value: "northwest", present: true,
			want: map[string]float64{ColRegionNorthwest: 0, ColRegionSoutheast: 0, ColRegionSouthwest: 0},
		},
		{
			name: "non-string value", value: 3, present: true,
			want: map[string]float64{ColRegionNorthwest: 0, ColRegionSoutheast: 0, ColRegionSouthwest: 0},
		},
		{
			name: "absent", present: false,
			want: map[string]float64{ColRegionNorthwest: 0, ColRegionSoutheast: 0, ColRegionSouthwest: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, region.EncodeValue(tt.value, tt.present))
		})
	}
	assert.Equal(t, []string{ColRegionNorthwest, ColRegionSoutheast, ColRegionSouthwest}, region.Columns())
}

func TestOrdinalField_InsurancePlan(t *testing.T) {
	plan := NewOrdinalField(core.FieldInsurancePlan, ColInsurancePlan, InsurancePlanLevels, 1, 0)

	tests := []struct {
		name    string
		value   any
		present bool
		want    float64
	}{
		{"bronze", "Bronze", true, 1},
		{"silver", "Silver", true, 2},
		{"gold", "Gold", true, 3},
		{"unknown value defaults to bronze", "Platinum", true, 1},
		{"non-string defaults to bronze", 3, true, 1},
		{"absent stays zero", nil, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, map[string]float64{ColInsurancePlan: tt.want}, plan.EncodeValue(tt.value, tt.present))
		})
	}
}

func TestCategoricalEncoder_Encode(t *testing.T) {
	enc := NewDefaultCategoricalEncoder()

	got := enc.Encode(core.ApplicantInput{
		core.FieldGender:           "Male",
		core.FieldRegion:           "Southwest",
		core.FieldMaritalStatus:    "Married",
		core.FieldBMICategory:      "Obesity",
		core.FieldSmokingStatus:    "Regular",
		core.FieldEmploymentStatus: "Self-Employed",
		core.FieldInsurancePlan:    "Gold",
		"Favourite Colour":         "Blue",
	})

	assert.Equal(t, map[string]float64{
		ColGenderMale:             1,
		ColRegionNorthwest:        0,
		ColRegionSoutheast:        0,
		ColRegionSouthwest:        1,
		ColMaritalStatusUnmarried: 0,
		ColBMIObesity:             1,
		ColBMIOverweight:          0,
		ColBMIUnderweight:         0,
		ColSmokingOccasional:      0,
		ColSmokingRegular:         1,
		ColEmploymentSalaried:     0,
		ColEmploymentSelfEmployed: 1,
		ColInsurancePlan:          3,
	}, got)
}

func TestCategoricalEncoder_EmptyInputEncodesAllColumns(t *testing.T) {
	enc := NewDefaultCategoricalEncoder()

	got := enc.Encode(core.ApplicantInput{})
	assert.Len(t, got, len(enc.Columns()))
	for col, v := range got {
		assert.Zero(t, v, col)
	}
}

func TestCategoricalEncoder_ColumnsAreInCanonicalSchema(t *testing.T) {
	for _, col := range NewDefaultCategoricalEncoder().Columns() {
		_, ok := CanonicalSchema.Index(col)
		assert.True(t, ok, col)
	}
}
