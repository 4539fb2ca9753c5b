package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ClientFiscalProfile is a read snapshot of the attributes rules are evaluated
// against. Empty strings, nil pointers and invalid NullDecimals mean "not set".
type ClientFiscalProfile struct {
	ClientID string
	Name     string

	VATRegime    string
	VATFrequency string
	VATDay       *int

	TaxCategory string
	TaxRegime   string
	LegalForm   string
	Activity    string
	Sector      string
	Department  string

	PriorYearRevenue     decimal.NullDecimal
	PriorYearCFE         decimal.NullDecimal
	PriorYearCVAE        decimal.NullDecimal
	PriorYearPayrollTax  decimal.NullDecimal
	CommercialArea       decimal.NullDecimal
	EmployeeCount        *int
	UniqueCorpTaxPayment *bool

	IsOwner             *bool
	HasBusinessPremises *bool
	PropertyTax         *bool
	VehicleTax          *bool

	// ClosingDate is the accounting year-end as "DD/MM".
	ClosingDate string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attribute is a typed attribute value read from a profile.
type Attribute struct {
	Kind   FieldKind
	Text   string
	Number decimal.Decimal
	Bool   bool
}

// Attribute looks up field f. The second return is false when the field is
// unknown or not set on this profile.
func (p *ClientFiscalProfile) Attribute(f Field) (Attribute, bool) {
	kind := KindOf(f)
	switch kind {
	case KindSelect, KindText:
		s := p.textField(f)
		if s == "" {
			return Attribute{Kind: kind}, false
		}
		return Attribute{Kind: kind, Text: s}, true
	case KindNumber:
		d, ok := p.numberField(f)
		return Attribute{Kind: kind, Number: d}, ok
	case KindBool:
		b := p.boolField(f)
		if b == nil {
			return Attribute{Kind: kind}, false
		}
		return Attribute{Kind: kind, Bool: *b}, true
	}
	return Attribute{}, false
}

// EffectiveClosingDate returns the declared closing date or DefaultClosingDate.
func (p *ClientFiscalProfile) EffectiveClosingDate() string {
	return CoalesceStr(p.ClosingDate, DefaultClosingDate)
}

func (p *ClientFiscalProfile) textField(f Field) string {
	switch f {
	case FieldVATRegime:
		return p.VATRegime
	case FieldVATFrequency:
		return p.VATFrequency
	case FieldTaxCategory:
		return p.TaxCategory
	case FieldTaxRegime:
		return p.TaxRegime
	case FieldLegalForm:
		return p.LegalForm
	case FieldActivity:
		return p.Activity
	case FieldSector:
		return p.Sector
	case FieldDepartment:
		return p.Department
	case FieldClosingDate:
		return p.ClosingDate
	}
	return ""
}

func (p *ClientFiscalProfile) numberField(f Field) (decimal.Decimal, bool) {
	var nd decimal.NullDecimal
	switch f {
	case FieldVATDay:
		return intAsDecimal(p.VATDay)
	case FieldEmployeeCount:
		return intAsDecimal(p.EmployeeCount)
	case FieldPriorYearRevenue:
		nd = p.PriorYearRevenue
	case FieldPriorYearCFE:
		nd = p.PriorYearCFE
	case FieldPriorYearCVAE:
		nd = p.PriorYearCVAE
	case FieldPriorYearPayrollTax:
		nd = p.PriorYearPayrollTax
	case FieldCommercialArea:
		nd = p.CommercialArea
	}
	return nd.Decimal, nd.Valid
}

func (p *ClientFiscalProfile) boolField(f Field) *bool {
	switch f {
	case FieldUniqueCorpTaxPayment:
		return p.UniqueCorpTaxPayment
	case FieldIsOwner:
		return p.IsOwner
	case FieldHasBusinessPremises:
		return p.HasBusinessPremises
	case FieldPropertyTax:
		return p.PropertyTax
	case FieldVehicleTax:
		return p.VehicleTax
	}
	return nil
}

func intAsDecimal(v *int) (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(int64(*v)), true
}

// String renders an attribute for display.
func (a Attribute) String() string {
	switch a.Kind {
	case KindNumber:
		return a.Number.String()
	case KindBool:
		return strconv.FormatBool(a.Bool)
	default:
		return a.Text
	}
}
