package domain

// Field names a client attribute that rule conditions may reference.
type Field string

const (
	FieldVATRegime            Field = "vat_regime"
	FieldVATFrequency         Field = "vat_frequency"
	FieldVATDay               Field = "vat_day"
	FieldTaxCategory          Field = "tax_category"
	FieldTaxRegime            Field = "tax_regime"
	FieldLegalForm            Field = "legal_form"
	FieldActivity             Field = "activity"
	FieldPriorYearRevenue     Field = "prior_year_revenue"
	FieldUniqueCorpTaxPayment Field = "unique_corp_tax_payment"
	FieldPriorYearCFE         Field = "prior_year_cfe"
	FieldPriorYearCVAE        Field = "prior_year_cvae"
	FieldPriorYearPayrollTax  Field = "prior_year_payroll_tax"
	FieldEmployeeCount        Field = "employee_count"
	FieldIsOwner              Field = "is_owner"
	FieldHasBusinessPremises  Field = "has_business_premises"
	FieldSector               Field = "sector"
	FieldCommercialArea       Field = "commercial_area"
	FieldDepartment           Field = "department"
	FieldPropertyTax          Field = "property_tax"
	FieldVehicleTax           Field = "vehicle_tax"
	FieldClosingDate          Field = "closing_date"
)

// FieldKind is the value type of a client attribute.
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindSelect
	KindText
	KindNumber
	KindBool
)

func (k FieldKind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// FieldKinds is the canonical set of known fields and their value types.
var FieldKinds = map[Field]FieldKind{
	FieldVATRegime:            KindSelect,
	FieldVATFrequency:         KindSelect,
	FieldVATDay:               KindNumber,
	FieldTaxCategory:          KindSelect,
	FieldTaxRegime:            KindSelect,
	FieldLegalForm:            KindSelect,
	FieldActivity:             KindText,
	FieldPriorYearRevenue:     KindNumber,
	FieldUniqueCorpTaxPayment: KindBool,
	FieldPriorYearCFE:         KindNumber,
	FieldPriorYearCVAE:        KindNumber,
	FieldPriorYearPayrollTax:  KindNumber,
	FieldEmployeeCount:        KindNumber,
	FieldIsOwner:              KindBool,
	FieldHasBusinessPremises:  KindBool,
	FieldSector:               KindSelect,
	FieldCommercialArea:       KindNumber,
	FieldDepartment:           KindText,
	FieldPropertyTax:          KindBool,
	FieldVehicleTax:           KindBool,
	FieldClosingDate:          KindText,
}

// Fields lists the known fields in display order.
var Fields = []Field{
	FieldVATRegime, FieldVATFrequency, FieldVATDay,
	FieldTaxCategory, FieldTaxRegime, FieldLegalForm,
	FieldActivity, FieldSector, FieldDepartment,
	FieldPriorYearRevenue, FieldPriorYearCFE, FieldPriorYearCVAE,
	FieldPriorYearPayrollTax, FieldCommercialArea, FieldEmployeeCount,
	FieldUniqueCorpTaxPayment, FieldIsOwner, FieldHasBusinessPremises,
	FieldPropertyTax, FieldVehicleTax, FieldClosingDate,
}

// KindOf returns the value type of f, or KindUnknown for unrecognized fields.
func KindOf(f Field) FieldKind {
	return FieldKinds[f]
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskSkipped    TaskStatus = "skipped"
)

// DefaultClosingDate is the closing date assumed when a profile declares none.
const DefaultClosingDate = "31/12"
