package odoo

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TemplateProfile carries everything the document generator needs to fill
// an HR letter for one employee.
type TemplateProfile struct {
	Name              string
	FirstName         string
	ArabicName        string
	JobTitle          string
	Gender            string
	Identification    string
	Department        string
	Wage              float64
	JoiningDate       string
	ContractEndDate   string
	Company           string
	CompanyRegistrar  string
	CompanyArabicName string
	CompanyCountry    string
	WorkAddress       string
	ArabicWorkAddress string
	HeadPeopleCulture string
	HeadPeopleArabic  string
}

const (
	defaultHeadPeopleCulture = "Faisal Abdullah AlMamun"
	defaultHeadPeopleArabic  = "فيصل عبدالله المأمون"
)

// BuildTemplateProfile enriches an employee record with contract, company
// and address details for letter generation. Every auxiliary lookup is
// best effort: a missing permission on one field must not block the
// document.
func (c *Client) BuildTemplateProfile(ctx context.Context, emp Record) TemplateProfile {
	p := TemplateProfile{
		Name:              emp.Str("name"),
		JobTitle:          emp.Str("job_title"),
		Gender:            strings.ToLower(emp.Str("gender")),
		Identification:    strings.TrimSpace(emp.Str("identification_id")),
		HeadPeopleCulture: defaultHeadPeopleCulture,
		HeadPeopleArabic:  defaultHeadPeopleArabic,
	}
	if parts := strings.Fields(p.Name); len(parts) > 0 {
		p.FirstName = parts[0]
	}
	if _, dept := emp.Pair("department_id"); dept != "" {
		p.Department = dept
	}

	employeeID := emp.Int("id")
	if employeeID != 0 {
		res, err := c.transport.ExecuteKw(ctx, "hr.employee", "read",
			[]any{[]any{employeeID}},
			map[string]any{"fields": []string{
				"x_studio_joining_date", "x_studio_contract_end_date",
				"x_studio_employee_arabic_name", "identification_id",
			}})
		if err == nil {
			if rows := asRecords(res); len(rows) > 0 {
				row := rows[0]
				p.JoiningDate = reformatISODate(row.Str("x_studio_joining_date"))
				p.ContractEndDate = reformatISODate(row.Str("x_studio_contract_end_date"))
				p.ArabicName = strings.TrimSpace(row.Str("x_studio_employee_arabic_name"))
				if id := strings.TrimSpace(row.Str("identification_id")); id != "" {
					p.Identification = id
				}
			}
		} else {
			c.logger.Debug("studio fields unavailable for template", zap.Error(err))
		}

		res, err = c.transport.ExecuteKw(ctx, "hr.contract", "search_read",
			[]any{[]any{[]any{"employee_id", "=", employeeID}}},
			map[string]any{"fields": []string{"wage"}, "limit": 1})
		if err == nil {
			if rows := asRecords(res); len(rows) > 0 {
				p.Wage = rows[0].Float("wage")
			}
		}
	}
	if p.ArabicName == "" {
		p.ArabicName = p.Name
	}

	if companyID, companyName := emp.Pair("company_id"); companyID != 0 {
		p.Company = companyName
		p.CompanyRegistrar = c.companyField(ctx, companyID, "company_registry")
		p.CompanyArabicName = c.companyField(ctx, companyID, "arabic_name")
		if p.CompanyArabicName == "" {
			p.CompanyArabicName = companyName
		}
		c.fillHeadOfPeople(ctx, companyID, &p)
	}

	if partnerID, _ := emp.Pair("address_id"); partnerID != 0 {
		p.WorkAddress = c.partnerAddress(ctx, partnerID)
		p.ArabicWorkAddress = c.partnerArabicAddress(ctx, partnerID)
	}
	p.CompanyCountry = countryFromAddress(p.WorkAddress)

	return p
}

func (c *Client) companyField(ctx context.Context, companyID int, field string) string {
	res, err := c.transport.ExecuteKw(ctx, "res.company", "read",
		[]any{[]any{companyID}},
		map[string]any{"fields": []string{field}})
	if err != nil {
		return ""
	}
	rows := asRecords(res)
	if len(rows) == 0 {
		return ""
	}
	return rows[0].Str(field)
}

func (c *Client) fillHeadOfPeople(ctx context.Context, companyID int, p *TemplateProfile) {
	res, err := c.transport.ExecuteKw(ctx, "hr.employee", "search",
		[]any{[]any{
			[]any{"company_id", "=", companyID},
			[]any{"job_id.name", "ilike", "head of people and culture"},
		}}, nil)
	if err != nil {
		return
	}
	ids := asInts(res)
	if len(ids) == 0 {
		return
	}

	res, err = c.transport.ExecuteKw(ctx, "hr.employee", "read",
		[]any{[]any{ids[0]}},
		map[string]any{"fields": []string{"name", "x_studio_employee_arabic_name"}})
	if err != nil {
		return
	}
	rows := asRecords(res)
	if len(rows) == 0 {
		return
	}
	if name := rows[0].Str("name"); name != "" {
		p.HeadPeopleCulture = name
	}
	if arabic := strings.TrimSpace(rows[0].Str("x_studio_employee_arabic_name")); arabic != "" {
		p.HeadPeopleArabic = arabic
	}
}

func (c *Client) partnerAddress(ctx context.Context, partnerID int) string {
	res, err := c.transport.ExecuteKw(ctx, "res.partner", "read",
		[]any{[]any{partnerID}},
		map[string]any{"fields": []string{"street", "street2", "city", "zip", "country_id"}})
	if err != nil {
		return ""
	}
	rows := asRecords(res)
	if len(rows) == 0 {
		return ""
	}
	row := rows[0]
	_, country := row.Pair("country_id")
	var parts []string
	for _, part := range []string{row.Str("street"), row.Str("street2"), row.Str("city"), row.Str("zip"), country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func (c *Client) partnerArabicAddress(ctx context.Context, partnerID int) string {
	res, err := c.transport.ExecuteKw(ctx, "res.partner", "read",
		[]any{[]any{partnerID}},
		map[string]any{"fields": []string{"x_studio_arabic_address"}})
	if err != nil {
		return ""
	}
	rows := asRecords(res)
	if len(rows) == 0 {
		return ""
	}
	return strings.TrimSpace(rows[0].Str("x_studio_arabic_address"))
}

func reformatISODate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// countryFromAddress takes the final component of a comma or newline
// separated address as the country.
func countryFromAddress(address string) string {
	if address == "" {
		return ""
	}
	sep := ","
	if strings.Contains(address, "\n") {
		sep = "\n"
	}
	parts := strings.Split(address, sep)
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			return p
		}
	}
	return ""
}
