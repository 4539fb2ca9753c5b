package ruledoc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfiles(t *testing.T) {
	set, err := LoadProfiles("testdata/clients.yaml")
	require.NoError(t, err)
	require.Len(t, set.Clients, 2)
	assert.Empty(t, ValidateProfiles(set))

	p := ToProfile(set.Clients[0])
	assert.Equal(t, "acme", p.ClientID)
	assert.Equal(t, "30/06", p.ClosingDate)
	require.True(t, p.PriorYearRevenue.Valid)
	assert.True(t, p.PriorYearRevenue.Decimal.Equal(decimal.NewFromInt(850000)))
	require.NotNil(t, p.UniqueCorpTaxPayment)
	assert.False(t, *p.UniqueCorpTaxPayment)
	assert.False(t, p.PriorYearCFE.Valid)

	dept, ok := p.Attribute(domain.FieldDepartment)
	require.True(t, ok)
	assert.Equal(t, "75", dept.Text)
}

func TestLoadProfiles_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.json")
	data := `{"clients":[{"client_id":"c1","prior_year_revenue":"1200.50","vat_day":19}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	set, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Len(t, set.Clients, 1)
	p := ToProfile(set.Clients[0])
	assert.True(t, p.PriorYearRevenue.Decimal.Equal(decimal.RequireFromString("1200.5")))
	require.NotNil(t, p.VATDay)
	assert.Equal(t, 19, *p.VATDay)
}

func TestLoadProfiles_NumericText(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "clients.yaml")
	yamlData := "clients:\n  - client_id: 1042\n    department: 01\n    sector: 4711\n  - client_id: c2\n    department: 75\n"
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlData), 0o644))

	set, err := LoadProfiles(yamlPath)
	require.NoError(t, err)
	require.Len(t, set.Clients, 2)
	assert.Empty(t, ValidateProfiles(set))

	first := ToProfile(set.Clients[0])
	assert.Equal(t, "1042", first.ClientID)
	assert.Equal(t, "01", first.Department)
	assert.Equal(t, "4711", first.Sector)
	assert.Equal(t, "75", ToProfile(set.Clients[1]).Department)

	jsonPath := filepath.Join(dir, "clients.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"clients":[{"client_id":"c3","department":13}]}`), 0o644))
	set, err = LoadProfiles(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "13", ToProfile(set.Clients[0]).Department)
}

func TestLoadProfiles_RejectsNonScalarText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clients":[{"client_id":"c1","department":[75]}]}`), 0o644))

	_, err := LoadProfiles(path)
	assert.Error(t, err)
}

func TestValidateProfiles_Errors(t *testing.T) {
	day := 40
	negative := decimal.NewFromInt(-1)
	set := &ProfileSet{Clients: []ProfileDoc{
		{ClientID: "a", ClosingDate: "31/02"},
		{ClientID: "a", VATDay: &day},
		{VATFrequency: "weekly", PriorYearCFE: &negative},
	}}

	errs := ValidateProfiles(set)
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	assert.True(t, containsMsg(errs, "clients[0].closing_date: invalid closing date"), "%v", msgs)
	assert.True(t, containsMsg(errs, "clients[1].vat_day"), "%v", msgs)
	assert.True(t, containsMsg(errs, "clients[2].client_id is required"), "%v", msgs)
	assert.True(t, containsMsg(errs, "clients[2].vat_frequency"), "%v", msgs)
	assert.True(t, containsMsg(errs, "duplicate client id"), "%v", msgs)
	assert.True(t, containsMsg(errs, "prior_year_cfe must not be negative"), "%v", msgs)
}

func TestValidateProfiles_EmptySet(t *testing.T) {
	errs := ValidateProfiles(&ProfileSet{})
	require.NotEmpty(t, errs)
	assert.True(t, containsMsg(errs, "clients"))
}

func TestProfileRoundTrip(t *testing.T) {
	set, err := LoadProfiles("testdata/clients.yaml")
	require.NoError(t, err)
	original := ToProfile(set.Clients[0])

	again := ToProfile(FromProfile(original))
	assert.Equal(t, original, again)

	data, err := MarshalProfile(FromProfile(original), FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "client_id: acme")
}
