package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNew_UnknownUnit(t *testing.T) {
	_, err := New(1.0, "furlong")
	require.Error(t, err)
	assert.True(t, IsUnitMismatch(err))
}

func TestSI_MassConversions(t *testing.T) {
	q := MustNew(32.0, "amu")
	si, err := q.SI()
	require.NoError(t, err)
	assert.InDelta(t, 32*1.66053906660e-27, si, 1e-40)

	q = MustNew(28.05, "g/mol")
	si, err = q.SI()
	require.NoError(t, err)
	assert.InDelta(t, 0.02805, si, 1e-12)
}

func TestConvertTo_EnergyUnits(t *testing.T) {
	q := MustNew(1.0, "kcal/mol")
	out, err := q.ConvertTo("J/mol")
	require.NoError(t, err)
	assert.InDelta(t, 4184.0, out.Value, 1e-9)
	assert.Equal(t, "J/mol", out.Units)
}

func TestConvertTo_DimensionMismatch(t *testing.T) {
	q := MustNew(1.0, "kJ/mol")
	_, err := q.ConvertTo("K")
	require.Error(t, err)
	assert.True(t, IsUnitMismatch(err))
}

func TestCheckDimensions(t *testing.T) {
	q := MustNew(100.0, "kJ/mol")
	assert.NoError(t, q.CheckDimensions(DimMolarEnergy))
	assert.Error(t, q.CheckDimensions(DimTemperature))

	assert.Error(t, MustNew(1, "kg*m^2").CheckDimensions(DimMolarEnergy))
}

func TestAddSub_MixedUnits(t *testing.T) {
	a := MustNew(1.0, "kJ/mol")
	b := MustNew(500.0, "J/mol")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, sum.Value, 1e-12)
	assert.Equal(t, "kJ/mol", sum.Units)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, diff.Value, 1e-12)
}

func TestQuantity_YAMLRoundTrip(t *testing.T) {
	in := MustNew(-50.5, "kJ/mol")
	data, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out Quantity
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestQuantity_YAMLScalar(t *testing.T) {
	var q Quantity
	require.NoError(t, yaml.Unmarshal([]byte("2.5"), &q))
	assert.Equal(t, 2.5, q.Value)
	assert.Equal(t, "", q.Units)
}

func TestQuantity_YAMLUnknownUnit(t *testing.T) {
	var q Quantity
	err := yaml.Unmarshal([]byte("{value: 1.0, units: parsec}"), &q)
	require.Error(t, err)
}

func TestArray_YAMLRoundTrip(t *testing.T) {
	in := MustNewArray([]float64{101.4, 525.8, 1012.0}, "cm^-1")
	data, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out Array
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestArray_EmptyRoundTripsToNil(t *testing.T) {
	// A zero-value array marshals to an empty sequence, which must decode
	// back to a nil slice, not an allocated empty one.
	data, err := yaml.Marshal(Array{})
	require.NoError(t, err)

	var out Array
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Nil(t, out.Values)
	assert.Equal(t, Array{}, out)
}

func TestArray_SI(t *testing.T) {
	a := MustNewArray([]float64{1000.0}, "cm^-1")
	si, err := a.SI()
	require.NoError(t, err)
	require.Len(t, si, 1)
	assert.InDelta(t, 1.0e5, si[0], 1e-9) // 1000 cm^-1 = 1e5 m^-1
}
