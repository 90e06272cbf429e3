package docgen

import (
	"os"
	"path/filepath"
	"strings"
)

// Template type keys.
const (
	EmploymentLetterArabic  = "employment_letter_arabic"
	EmploymentLetter        = "employment_letter"
	EmploymentLetterEmbassy = "employment_letter_embassy"
	ExperienceLetter        = "experience_letter"
)

// TemplateOption describes one generatable letter.
type TemplateOption struct {
	Name        string
	FileName    string
	Description string
}

var templateOptions = map[string]TemplateOption{
	EmploymentLetterArabic: {
		Name:        "Employment letter - Arabic",
		FileName:    "Employment Letter - ARABIC.docx",
		Description: "Employment letter in Arabic",
	},
	EmploymentLetter: {
		Name:        "Employment letter",
		FileName:    "Employment Letter.docx",
		Description: "Standard employment letter in English",
	},
	EmploymentLetterEmbassy: {
		Name:        "Employment letter to embassies",
		FileName:    "Employment Letter to Embassies.docx",
		Description: "Employment letter for visa/embassy purposes",
	},
	ExperienceLetter: {
		Name:        "Experience letter",
		FileName:    "Experience Letter.docx",
		Description: "Experience certificate for former employees",
	},
}

var templateOrder = []string{
	EmploymentLetterArabic,
	EmploymentLetter,
	EmploymentLetterEmbassy,
	ExperienceLetter,
}

// Option returns the catalogue entry for a template type.
func Option(templateType string) (TemplateOption, bool) {
	opt, ok := templateOptions[templateType]
	return opt, ok
}

// Options returns the catalogue in display order.
func Options() []TemplateOption {
	opts := make([]TemplateOption, 0, len(templateOrder))
	for _, key := range templateOrder {
		opts = append(opts, templateOptions[key])
	}
	return opts
}

// templatePath picks the letter file, preferring a gendered variant when
// one exists next to the generic one.
func (g *Generator) templatePath(templateType, gender string) string {
	opt, ok := templateOptions[templateType]
	if !ok {
		return ""
	}
	base := filepath.Join(g.dir, opt.FileName)
	ext := filepath.Ext(opt.FileName)
	stem := strings.TrimSuffix(opt.FileName, ext)

	switch strings.ToLower(gender) {
	case "male", "female":
		suffix := " - Male"
		if strings.EqualFold(gender, "female") {
			suffix = " - Female"
		}
		gendered := filepath.Join(g.dir, stem+suffix+ext)
		if _, err := os.Stat(gendered); err == nil {
			return gendered
		}
	}
	if _, err := os.Stat(base); err == nil {
		return base
	}
	return base
}
