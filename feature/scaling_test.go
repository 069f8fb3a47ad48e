package feature

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/premiumkit/core"
)

type staticResolver struct {
	artifact *ScalerArtifact
	err      error
}

func (r staticResolver) ScalerFor(float64) (*ScalerArtifact, error) {
	return r.artifact, r.err
}

func minMaxArtifact(t *testing.T, cols []string, min, scale []float64) *ScalerArtifact {
	t.Helper()
	tr, err := NewMinMaxTransformer(min, scale)
	require.NoError(t, err)
	a := &ScalerArtifact{Name: "test", Columns: cols, Transformer: tr}
	require.NoError(t, a.Validate())
	return a
}

func sampleRecord(t *testing.T) *Record {
	t.Helper()
	rec := NewRecord(CanonicalSchema)
	for col, v := range map[string]float64{
		ColAge:                 30,
		ColNumberOfDependants:  2,
		ColIncomeLakhs:         12,
		ColInsurancePlan:       3,
		ColGeneticalRisk:       3,
		ColNormalizedRiskScore: 6.0 / 14.0,
		ColGenderMale:          1,
	} {
		require.NoError(t, rec.Set(col, v))
	}
	return rec
}

func TestScalingRouter_PlaceholderInjectedAndDiscarded(t *testing.T) {
	artifact := minMaxArtifact(t,
		[]string{ColAge, ColNumberOfDependants, ColIncomeLevel, ColIncomeLakhs, ColGeneticalRisk},
		[]float64{-1, 0, 0, 1, 0},
		[]float64{0.5, 0.25, 2, 0.125, 0.25},
	)
	rec := sampleRecord(t)
	before := rec.Values()

	out, err := NewScalingRouter(staticResolver{artifact: artifact}).Scale(30, rec)
	require.NoError(t, err)
	assert.Same(t, rec, out)

	assert.Equal(t, 19, out.Len())
	_, ok := out.Get(ColIncomeLevel)
	assert.False(t, ok)

	got := out.ToMap()
	assert.Equal(t, 14.0, got[ColAge])
	assert.Equal(t, 0.5, got[ColNumberOfDependants])
	assert.Equal(t, 2.5, got[ColIncomeLakhs])
	assert.Equal(t, 0.75, got[ColGeneticalRisk])

	scaled := map[string]bool{ColAge: true, ColNumberOfDependants: true, ColIncomeLakhs: true, ColGeneticalRisk: true}
	for i, col := range CanonicalColumns {
		if scaled[col] {
			continue
		}
		v, _ := out.Get(col)
		assert.Equal(t, math.Float64bits(before[i]), math.Float64bits(v), col)
	}
}

func TestScalingRouter_DroppingPlaceholderShiftsParameters(t *testing.T) {
	min := []float64{-1, 0, 0, 1}
	scale := []float64{0.5, 0.25, 2, 0.125}

	withPlaceholder := minMaxArtifact(t, []string{ColAge, ColNumberOfDependants, ColIncomeLevel, ColIncomeLakhs}, min, scale)
	rec := sampleRecord(t)
	_, err := NewScalingRouter(staticResolver{artifact: withPlaceholder}).Scale(30, rec)
	require.NoError(t, err)
	correct, _ := rec.Get(ColIncomeLakhs)

	withoutPlaceholder := minMaxArtifact(t, []string{ColAge, ColNumberOfDependants, ColIncomeLakhs}, min[:3], scale[:3])
	rec = sampleRecord(t)
	_, err = NewScalingRouter(staticResolver{artifact: withoutPlaceholder}).Scale(30, rec)
	require.NoError(t, err)
	shifted, _ := rec.Get(ColIncomeLakhs)

	assert.Equal(t, 2.5, correct)
	assert.Equal(t, 24.0, shifted)
}

func TestScalingRouter_MissingColumns(t *testing.T) {
	tr, err := NewMinMaxTransformer(nil, nil)
	require.NoError(t, err)
	artifact := &ScalerArtifact{Name: "broken", Transformer: tr}

	_, err = NewScalingRouter(staticResolver{artifact: artifact}).Scale(30, sampleRecord(t))
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "cols_to_scale")
}

func TestScalingRouter_UnknownColumn(t *testing.T) {
	artifact := minMaxArtifact(t, []string{ColAge, "bmi"}, []float64{0, 0}, []float64{1, 1})
	rec := sampleRecord(t)
	before := rec.Values()

	_, err := NewScalingRouter(staticResolver{artifact: artifact}).Scale(30, rec)
	require.Error(t, err)
	assert.True(t, core.IsSchemaMismatch(err))
	assert.Equal(t, before, rec.Values())
}

func TestScalingRouter_ResolverError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewScalingRouter(staticResolver{err: boom}).Scale(30, sampleRecord(t))
	assert.ErrorIs(t, err, boom)

	_, err = NewScalingRouter(staticResolver{}).Scale(30, sampleRecord(t))
	assert.True(t, core.IsConfigurationError(err))
}
