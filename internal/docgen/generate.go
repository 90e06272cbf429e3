package docgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/odoo"
)

// Generator fills letter templates with employee data.
type Generator struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a generator reading templates from dir.
func NewGenerator(dir string, logger *zap.Logger) *Generator {
	return &Generator{dir: dir, logger: logger, now: time.Now}
}

// Generate fills the requested letter for the employee and returns the
// document bytes plus a download filename. Embassy details apply only to
// the embassy letter and may be nil otherwise.
func (g *Generator) Generate(templateType string, profile odoo.TemplateProfile, embassy *EmbassyDetails) ([]byte, string, error) {
	opt, ok := templateOptions[templateType]
	if !ok {
		return nil, "", fmt.Errorf("unknown template type %q", templateType)
	}

	path := g.templatePath(templateType, profile.Gender)
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open template %s: %w", path, err)
	}
	defer doc.Close()

	isArabic := templateType == EmploymentLetterArabic
	placeholders := g.placeholders(profile, embassy, isArabic)

	editable := doc.Editable()
	for key, value := range placeholders {
		if err := editable.Replace(key, value, -1); err != nil {
			g.logger.Debug("placeholder replace failed",
				zap.String("placeholder", key),
				zap.Error(err))
		}
		// Letterheads carry placeholders too.
		_ = editable.ReplaceHeader(key, value)
		_ = editable.ReplaceFooter(key, value)
	}

	var buf bytes.Buffer
	if err := editable.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render document: %w", err)
	}

	filename := fmt.Sprintf("%s - %s.docx", opt.Name, profile.Name)
	g.logger.Info("document generated",
		zap.String("template", templateType),
		zap.String("filename", filename))
	return buf.Bytes(), filename, nil
}

func (g *Generator) placeholders(p odoo.TemplateProfile, embassy *EmbassyDetails, isArabic bool) map[string]string {
	nameForTemplate := p.Name
	if isArabic && p.ArabicName != "" {
		nameForTemplate = p.ArabicName
	}

	var country, startDate, endDate string
	if embassy != nil {
		country = embassy.Country
		startDate = reformatEmbassyDate(embassy.StartDate)
		endDate = reformatEmbassyDate(embassy.EndDate)
	}

	return map[string]string{
		"(Current Date)":        g.now().Format("02/01/2006"),
		"(First and Last Name)": nameForTemplate,
		"(First Name)":          nameForTemplate,
		"(Position)":            p.JobTitle,
		"(Salary)":              fmt.Sprintf("%g", p.Wage),
		"(DD/MM/YYYY)":          p.JoiningDate,
		"(Country)":             country,
		"(Start Date)":          startDate,
		"(End Date)":            endDate,
		"(Company)":             p.Company,
		"(Work address)":        p.WorkAddress,
		"(Work Address)":        p.WorkAddress,
		"(Arabic Work address)": p.ArabicWorkAddress,
		"(CR)":                  p.CompanyRegistrar,
		"(Company Country)":     p.CompanyCountry,
		"(CompanyA)":            p.CompanyArabicName,
		"(P&C)":                 p.HeadPeopleCulture,
		"(AP&C)":                p.HeadPeopleArabic,
		"(الاسم الكامل)":        nameForTemplate,
		"(بلد الوجهة)":          country,
		"(تاريخ البداية)":       startDate,
		"(تاريخ النهاية)":       endDate,
		"(Contract End Date)":   p.ContractEndDate,
		"(Department)":          p.Department,
	}
}

func reformatEmbassyDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
