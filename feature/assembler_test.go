package feature

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/premiumkit/core"
)

func assemble(t *testing.T, input core.ApplicantInput) *Record {
	t.Helper()
	enc := NewDefaultCategoricalEncoder()
	risk := NewDefaultRiskNormalizer()
	history, _ := input.GetString(core.FieldMedicalHistory)
	rec, err := NewDefaultAssembler().Assemble(input, enc.Encode(input), risk.Normalize(history))
	require.NoError(t, err)
	return rec
}

func TestAssembler_FixedColumnCount(t *testing.T) {
	inputs := []core.ApplicantInput{
		{core.FieldAge: 30, core.FieldMedicalHistory: "No Disease"},
		{
			core.FieldAge: 25, core.FieldNumberOfDependants: 2, core.FieldIncomeLakhs: 12.5, core.FieldGeneticalRisk: 3,
			core.FieldInsurancePlan: "Silver", core.FieldGender: "Male", core.FieldRegion: "Northwest",
			core.FieldMedicalHistory: "Diabetes",
		},
		{core.FieldAge: 40, core.FieldMedicalHistory: "none", "Unknown Field": "x"},
	}
	for _, in := range inputs {
		rec := assemble(t, in)
		assert.Equal(t, 19, rec.Len())
		assert.Equal(t, CanonicalColumns, rec.Schema().Columns())
	}
}

func TestAssembler_Values(t *testing.T) {
	rec := assemble(t, core.ApplicantInput{
		core.FieldAge:                json.Number("31"),
		core.FieldNumberOfDependants: 2,
		core.FieldIncomeLakhs:        12.5,
		core.FieldGeneticalRisk:      int64(4),
		core.FieldInsurancePlan:      "Silver",
		core.FieldBMICategory:        "Underweight",
		core.FieldMedicalHistory:     "High blood pressure",
	})

	want := map[string]float64{
		ColAge:                 31,
		ColNumberOfDependants:  2,
		ColIncomeLakhs:         12.5,
		ColInsurancePlan:       2,
		ColGeneticalRisk:       4,
		ColNormalizedRiskScore: 6.0 / 14.0,
		ColBMIUnderweight:      1,
		ColLegacyIndex:         0,
	}
	for col, v := range rec.ToMap() {
		assert.Equal(t, want[col], v, col)
	}
}

func TestAssembler_MissingAge(t *testing.T) {
	_, err := NewDefaultAssembler().Assemble(core.ApplicantInput{core.FieldMedicalHistory: "none"}, nil, 0)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
}

func TestAssembler_NonNumericPassthrough(t *testing.T) {
	_, err := NewDefaultAssembler().Assemble(core.ApplicantInput{
		core.FieldAge:         30,
		core.FieldIncomeLakhs: "twelve",
	}, nil, 0)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
}

func TestAssembler_UnknownEncodedColumn(t *testing.T) {
	_, err := NewDefaultAssembler().Assemble(core.ApplicantInput{core.FieldAge: 30},
		map[string]float64{"region_Northeast": 1}, 0)
	require.Error(t, err)
	assert.True(t, core.IsSchemaMismatch(err))
}

func TestAssembler_KeyOrderIndependent(t *testing.T) {
	a := core.ApplicantInput{}
	b := core.ApplicantInput{}
	fields := [][2]any{
		{core.FieldAge, 45}, {core.FieldGender, "Male"}, {core.FieldRegion, "Southeast"},
		{core.FieldSmokingStatus, "Occasional"}, {core.FieldMedicalHistory, "thyroid"},
	}
	for _, kv := range fields {
		a[kv[0].(string)] = kv[1]
	}
	for i := len(fields) - 1; i >= 0; i-- {
		b[fields[i][0].(string)] = fields[i][1]
	}
	assert.Equal(t, assemble(t, a).Values(), assemble(t, b).Values())
}

func TestRecord_SetUnknownColumn(t *testing.T) {
	rec := NewRecord(CanonicalSchema)
	err := rec.Set(ColIncomeLevel, 1)
	assert.True(t, core.IsSchemaMismatch(err))
}

func TestNewSchema_DuplicateColumnPanics(t *testing.T) {
	assert.Panics(t, func() { NewSchema("bad", []string{"a", "a"}) })
}
