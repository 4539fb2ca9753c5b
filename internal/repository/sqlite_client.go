package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/domain"
)

// SQLiteClientRepo implements ClientRepo using a SQLite database.
type SQLiteClientRepo struct {
	db db.DBTX
}

// NewSQLiteClientRepo creates a new SQLiteClientRepo.
func NewSQLiteClientRepo(conn db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: conn}
}

const clientColumns = `client_id, name, vat_regime, vat_frequency, vat_day, tax_category, tax_regime,
	legal_form, activity, sector, department, prior_year_revenue, prior_year_cfe, prior_year_cvae,
	prior_year_payroll_tax, commercial_area, employee_count, unique_corp_tax_payment, is_owner,
	has_business_premises, property_tax, vehicle_tax, closing_date, created_at, updated_at`

func (r *SQLiteClientRepo) GetProfile(ctx context.Context, clientID string) (*domain.ClientFiscalProfile, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = ?`
	p, err := scanClient(r.db.QueryRowContext(ctx, query, clientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}
	return p, err
}

func (r *SQLiteClientRepo) List(ctx context.Context) ([]*domain.ClientFiscalProfile, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY client_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.ClientFiscalProfile
	for rows.Next() {
		p, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}
	return clients, nil
}

// Upsert inserts the profile or replaces every attribute of an existing one.
// created_at is kept from the first insert.
func (r *SQLiteClientRepo) Upsert(ctx context.Context, p *domain.ClientFiscalProfile) error {
	now := nowUTC()
	query := `INSERT INTO clients (` + clientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			name = excluded.name,
			vat_regime = excluded.vat_regime,
			vat_frequency = excluded.vat_frequency,
			vat_day = excluded.vat_day,
			tax_category = excluded.tax_category,
			tax_regime = excluded.tax_regime,
			legal_form = excluded.legal_form,
			activity = excluded.activity,
			sector = excluded.sector,
			department = excluded.department,
			prior_year_revenue = excluded.prior_year_revenue,
			prior_year_cfe = excluded.prior_year_cfe,
			prior_year_cvae = excluded.prior_year_cvae,
			prior_year_payroll_tax = excluded.prior_year_payroll_tax,
			commercial_area = excluded.commercial_area,
			employee_count = excluded.employee_count,
			unique_corp_tax_payment = excluded.unique_corp_tax_payment,
			is_owner = excluded.is_owner,
			has_business_premises = excluded.has_business_premises,
			property_tax = excluded.property_tax,
			vehicle_tax = excluded.vehicle_tax,
			closing_date = excluded.closing_date,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		p.ClientID,
		p.Name,
		p.VATRegime,
		p.VATFrequency,
		nullableIntToValue(p.VATDay),
		p.TaxCategory,
		p.TaxRegime,
		p.LegalForm,
		p.Activity,
		p.Sector,
		p.Department,
		p.PriorYearRevenue,
		p.PriorYearCFE,
		p.PriorYearCVAE,
		p.PriorYearPayrollTax,
		p.CommercialArea,
		nullableIntToValue(p.EmployeeCount),
		nullableBoolToValue(p.UniqueCorpTaxPayment),
		nullableBoolToValue(p.IsOwner),
		nullableBoolToValue(p.HasBusinessPremises),
		nullableBoolToValue(p.PropertyTax),
		nullableBoolToValue(p.VehicleTax),
		p.ClosingDate,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upserting client %s: %w", p.ClientID, err)
	}
	return nil
}

func scanClient(row rowScanner) (*domain.ClientFiscalProfile, error) {
	var p domain.ClientFiscalProfile
	var vatDay, employees sql.NullInt64
	var uniqueCorpTax, isOwner, premises, propertyTax, vehicleTax sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(
		&p.ClientID, &p.Name, &p.VATRegime, &p.VATFrequency, &vatDay,
		&p.TaxCategory, &p.TaxRegime, &p.LegalForm, &p.Activity, &p.Sector, &p.Department,
		&p.PriorYearRevenue, &p.PriorYearCFE, &p.PriorYearCVAE, &p.PriorYearPayrollTax, &p.CommercialArea,
		&employees, &uniqueCorpTax, &isOwner, &premises, &propertyTax, &vehicleTax,
		&p.ClosingDate, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}

	p.VATDay = intPtr(vatDay)
	p.EmployeeCount = intPtr(employees)
	p.UniqueCorpTaxPayment = boolPtr(uniqueCorpTax)
	p.IsOwner = boolPtr(isOwner)
	p.HasBusinessPremises = boolPtr(premises)
	p.PropertyTax = boolPtr(propertyTax)
	p.VehicleTax = boolPtr(vehicleTax)

	p.CreatedAt, p.UpdatedAt, err = parseTimestamps(createdAt, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing client timestamps: %w", err)
	}
	return &p, nil
}
