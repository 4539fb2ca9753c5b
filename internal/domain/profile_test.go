package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestAttribute_Text(t *testing.T) {
	p := &ClientFiscalProfile{VATFrequency: "monthly"}

	a, ok := p.Attribute(FieldVATFrequency)
	require.True(t, ok)
	assert.Equal(t, KindSelect, a.Kind)
	assert.Equal(t, "monthly", a.Text)

	_, ok = p.Attribute(FieldVATRegime)
	assert.False(t, ok, "empty select field is not set")
}

func TestAttribute_Number(t *testing.T) {
	p := &ClientFiscalProfile{
		PriorYearRevenue: decimal.NewNullDecimal(decimal.RequireFromString("152000.50")),
		EmployeeCount:    intPtr(12),
	}

	a, ok := p.Attribute(FieldPriorYearRevenue)
	require.True(t, ok)
	assert.True(t, a.Number.Equal(decimal.RequireFromString("152000.5")))

	a, ok = p.Attribute(FieldEmployeeCount)
	require.True(t, ok)
	assert.Equal(t, "12", a.String())

	_, ok = p.Attribute(FieldPriorYearCFE)
	assert.False(t, ok)
	_, ok = p.Attribute(FieldVATDay)
	assert.False(t, ok)
}

func TestAttribute_Bool(t *testing.T) {
	p := &ClientFiscalProfile{IsOwner: boolPtr(false)}

	a, ok := p.Attribute(FieldIsOwner)
	require.True(t, ok, "explicit false is set")
	assert.False(t, a.Bool)

	_, ok = p.Attribute(FieldVehicleTax)
	assert.False(t, ok)
}

func TestAttribute_UnknownField(t *testing.T) {
	p := &ClientFiscalProfile{VATFrequency: "monthly"}
	a, ok := p.Attribute(Field("favourite_colour"))
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, a.Kind)
}

func TestEffectiveClosingDate(t *testing.T) {
	assert.Equal(t, "31/12", (&ClientFiscalProfile{}).EffectiveClosingDate())
	assert.Equal(t, "30/06", (&ClientFiscalProfile{ClosingDate: "30/06"}).EffectiveClosingDate())
}

func TestFieldKinds_CoverAllFields(t *testing.T) {
	assert.Len(t, FieldKinds, 21)
	assert.Len(t, Fields, len(FieldKinds))
	for f, k := range FieldKinds {
		assert.NotEqual(t, KindUnknown, k, "field %s", f)
	}
	for _, f := range Fields {
		assert.Contains(t, FieldKinds, f)
	}
}
