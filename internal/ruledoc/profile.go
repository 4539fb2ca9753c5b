package ruledoc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/rules"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ProfileSet is the top-level structure of a client profile file.
type ProfileSet struct {
	Clients []ProfileDoc `json:"clients" validate:"required,min=1,dive"`
}

// ProfileDoc is a client fiscal profile as exchanged with the practice
// management application. Keys match the condition field names.
type ProfileDoc struct {
	ClientID Text `json:"client_id" validate:"required"`
	Name     Text `json:"name,omitempty"`

	VATRegime    Text `json:"vat_regime,omitempty"`
	VATFrequency Text `json:"vat_frequency,omitempty" validate:"omitempty,oneof=monthly quarterly annual"`
	VATDay       *int   `json:"vat_day,omitempty" validate:"omitempty,min=1,max=31"`

	TaxCategory Text `json:"tax_category,omitempty"`
	TaxRegime   Text `json:"tax_regime,omitempty"`
	LegalForm   Text `json:"legal_form,omitempty"`
	Activity    Text `json:"activity,omitempty"`
	Sector      Text `json:"sector,omitempty"`
	Department  Text `json:"department,omitempty" validate:"omitempty,max=3"`

	PriorYearRevenue     *decimal.Decimal `json:"prior_year_revenue,omitempty"`
	PriorYearCFE         *decimal.Decimal `json:"prior_year_cfe,omitempty"`
	PriorYearCVAE        *decimal.Decimal `json:"prior_year_cvae,omitempty"`
	PriorYearPayrollTax  *decimal.Decimal `json:"prior_year_payroll_tax,omitempty"`
	CommercialArea       *decimal.Decimal `json:"commercial_area,omitempty"`
	EmployeeCount        *int             `json:"employee_count,omitempty" validate:"omitempty,min=0"`
	UniqueCorpTaxPayment *bool            `json:"unique_corp_tax_payment,omitempty"`

	IsOwner             *bool `json:"is_owner,omitempty"`
	HasBusinessPremises *bool `json:"has_business_premises,omitempty"`
	PropertyTax         *bool `json:"property_tax,omitempty"`
	VehicleTax          *bool `json:"vehicle_tax,omitempty"`

	ClosingDate Text `json:"closing_date,omitempty" validate:"omitempty,closing_date"`
}

// LoadProfiles reads a client profile file (JSON or YAML).
func LoadProfiles(path string) (*ProfileSet, error) {
	var set ProfileSet
	if err := readFile(path, &set, textFieldKeys...); err != nil {
		return nil, err
	}
	return &set, nil
}

// textFieldKeys are the document keys of the Text fields of ProfileDoc.
var textFieldKeys = func() []string {
	var keys []string
	typ := reflect.TypeOf(ProfileDoc{})
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Type == reflect.TypeOf(Text("")) {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			keys = append(keys, name)
		}
	}
	return keys
}()

// MarshalProfile encodes a single profile document.
func MarshalProfile(doc ProfileDoc, format Format) ([]byte, error) {
	return encode(doc, format)
}

var profileValidator = newProfileValidator()

func newProfileValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("closing_date", func(fl validator.FieldLevel) bool {
		_, _, err := rules.ParseClosingDate(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateProfiles checks every profile of a set and reports duplicate client
// IDs. Amounts must not be negative.
func ValidateProfiles(set *ProfileSet) []error {
	var errs []error
	if err := profileValidator.Struct(set); err != nil {
		errs = append(errs, validationErrors(err)...)
	}
	seen := make(map[Text]bool, len(set.Clients))
	for i, p := range set.Clients {
		if p.ClientID != "" && seen[p.ClientID] {
			errs = append(errs, fmt.Errorf("clients[%d].client_id: duplicate client id %q", i, p.ClientID))
		}
		seen[p.ClientID] = true
		errs = append(errs, validateAmounts(fmt.Sprintf("clients[%d]", i), p)...)
	}
	return errs
}

// ValidateProfile checks one profile document.
func ValidateProfile(p ProfileDoc) []error {
	var errs []error
	if err := profileValidator.Struct(p); err != nil {
		errs = append(errs, validationErrors(err)...)
	}
	return append(errs, validateAmounts("profile", p)...)
}

func validationErrors(err error) []error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Errorf("%s is required", field))
		case "closing_date":
			out = append(out, fmt.Errorf("%s: invalid closing date %q (expected DD/MM)", field, fe.Value()))
		default:
			out = append(out, fmt.Errorf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return out
}

func validateAmounts(prefix string, p ProfileDoc) []error {
	var errs []error
	amounts := []struct {
		field domain.Field
		value *decimal.Decimal
	}{
		{domain.FieldPriorYearRevenue, p.PriorYearRevenue},
		{domain.FieldPriorYearCFE, p.PriorYearCFE},
		{domain.FieldPriorYearCVAE, p.PriorYearCVAE},
		{domain.FieldPriorYearPayrollTax, p.PriorYearPayrollTax},
		{domain.FieldCommercialArea, p.CommercialArea},
	}
	for _, a := range amounts {
		if a.value != nil && a.value.IsNegative() {
			errs = append(errs, fmt.Errorf("%s.%s must not be negative", prefix, a.field))
		}
	}
	return errs
}

// ToProfile converts a validated document into the domain profile.
func ToProfile(doc ProfileDoc) *domain.ClientFiscalProfile {
	return &domain.ClientFiscalProfile{
		ClientID:             string(doc.ClientID),
		Name:                 string(doc.Name),
		VATRegime:            string(doc.VATRegime),
		VATFrequency:         string(doc.VATFrequency),
		VATDay:               doc.VATDay,
		TaxCategory:          string(doc.TaxCategory),
		TaxRegime:            string(doc.TaxRegime),
		LegalForm:            string(doc.LegalForm),
		Activity:             string(doc.Activity),
		Sector:               string(doc.Sector),
		Department:           string(doc.Department),
		PriorYearRevenue:     nullDecimal(doc.PriorYearRevenue),
		PriorYearCFE:         nullDecimal(doc.PriorYearCFE),
		PriorYearCVAE:        nullDecimal(doc.PriorYearCVAE),
		PriorYearPayrollTax:  nullDecimal(doc.PriorYearPayrollTax),
		CommercialArea:       nullDecimal(doc.CommercialArea),
		EmployeeCount:        doc.EmployeeCount,
		UniqueCorpTaxPayment: doc.UniqueCorpTaxPayment,
		IsOwner:              doc.IsOwner,
		HasBusinessPremises:  doc.HasBusinessPremises,
		PropertyTax:          doc.PropertyTax,
		VehicleTax:           doc.VehicleTax,
		ClosingDate:          strings.TrimSpace(string(doc.ClosingDate)),
	}
}

// FromProfile converts a domain profile into its document form.
func FromProfile(p *domain.ClientFiscalProfile) ProfileDoc {
	return ProfileDoc{
		ClientID:             Text(p.ClientID),
		Name:                 Text(p.Name),
		VATRegime:            Text(p.VATRegime),
		VATFrequency:         Text(p.VATFrequency),
		VATDay:               p.VATDay,
		TaxCategory:          Text(p.TaxCategory),
		TaxRegime:            Text(p.TaxRegime),
		LegalForm:            Text(p.LegalForm),
		Activity:             Text(p.Activity),
		Sector:               Text(p.Sector),
		Department:           Text(p.Department),
		PriorYearRevenue:     decimalPtr(p.PriorYearRevenue),
		PriorYearCFE:         decimalPtr(p.PriorYearCFE),
		PriorYearCVAE:        decimalPtr(p.PriorYearCVAE),
		PriorYearPayrollTax:  decimalPtr(p.PriorYearPayrollTax),
		CommercialArea:       decimalPtr(p.CommercialArea),
		EmployeeCount:        p.EmployeeCount,
		UniqueCorpTaxPayment: p.UniqueCorpTaxPayment,
		IsOwner:              p.IsOwner,
		HasBusinessPremises:  p.HasBusinessPremises,
		PropertyTax:          p.PropertyTax,
		VehicleTax:           p.VehicleTax,
		ClosingDate:          Text(p.ClosingDate),
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
