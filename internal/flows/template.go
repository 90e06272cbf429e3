package flows

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/dateparse"
	"github.com/prezlab/prezbot/internal/docgen"
	"github.com/prezlab/prezbot/internal/intent"
	"github.com/prezlab/prezbot/internal/session"
)

var arabicSelectionWords = []string{"arabic", "عربي", "بالعربية", "عربية", "2"}
var englishSelectionWords = []string{"english", "انجليزي", "بالانجليزي", "1"}

// Template advances the document generation conversation by one message.
func (h *Handler) Template(ctx context.Context, s *session.Session, query string) string {
	if intent.DetectExit(query) {
		s.ClearWorkflows()
		return "✅ The process has been cancelled. How else can I help you?"
	}

	s.Active = session.WorkflowTemplate
	if s.Template == nil {
		s.Template = &session.TemplateState{}
	}
	st := s.Template

	if st.TemplateType == "" {
		kind := intent.DetectTemplate(query)
		if kind != intent.TemplateNone && kind != intent.TemplateGeneral {
			st.TemplateType = string(kind)
		}
	}

	// Employment letters exist in English and Arabic; settle the language
	// before generating.
	if st.TemplateType == docgen.EmploymentLetter && !st.LanguageSelected {
		queryLower := strings.ToLower(query)
		switch {
		case containsAnySubstring(queryLower, arabicSelectionWords):
			st.TemplateType = docgen.EmploymentLetterArabic
			st.LanguageSelected = true
		case containsAnySubstring(queryLower, englishSelectionWords):
			st.LanguageSelected = true
		default:
			return `I'll help you generate an employment letter!

Which language would you prefer?

1. **English** - Standard employment letter in English
2. **Arabic** - Employment letter in Arabic

Please type "English" or "Arabic" to continue.

💡 *Type "cancel" to exit this process.*`
		}
	}

	if st.TemplateType == docgen.EmploymentLetterEmbassy {
		if msg := h.collectEmbassyDetails(st, query); msg != "" {
			return msg
		}
	}

	if st.TemplateType == "" {
		return templateOptionsMessage()
	}
	return h.generateTemplate(ctx, s, st)
}

// collectEmbassyDetails fills country and travel dates from the message
// and returns a prompt when something is still missing.
func (h *Handler) collectEmbassyDetails(st *session.TemplateState, query string) string {
	details := docgen.ParseEmbassyDetails(query, h.now())
	if st.Country == "" {
		st.Country = details.Country
	}
	if st.StartDate == "" {
		st.StartDate = details.StartDate
	}
	if st.EndDate == "" {
		st.EndDate = details.EndDate
	}

	if st.Country == "" {
		examples := strings.Join(docgen.CountryNames()[:10], ", ") + "..."
		return fmt.Sprintf(`I'll help you generate an employment letter for embassy/visa purposes.

Which country are you traveling to? Please specify the country name.

Some examples: %s

💡 *Type "cancel" to exit this process.*`, examples)
	}

	if st.StartDate == "" || st.EndDate == "" {
		// Travel dates come in the same shapes as leave dates.
		parsed := dateparse.Extract(query, h.now())
		if st.StartDate == "" && parsed.DateFrom != "" {
			st.StartDate = parsed.DateFrom
		}
		if st.EndDate == "" && parsed.DateTo != "" {
			st.EndDate = parsed.DateTo
		}
		if st.StartDate == "" || st.EndDate == "" {
			return fmt.Sprintf(`For the employment letter to %s, I need your travel dates.

Please provide:
- Start date of your travel
- End date of your travel

You can say something like "from March 15 to March 25" or "3/15 to 3/25".

💡 *Type "cancel" to exit this process.*`, st.Country)
		}
	}
	return ""
}

func (h *Handler) generateTemplate(ctx context.Context, s *session.Session, st *session.TemplateState) string {
	var embassy *docgen.EmbassyDetails
	if st.TemplateType == docgen.EmploymentLetterEmbassy {
		embassy = &docgen.EmbassyDetails{
			Country:   st.Country,
			StartDate: st.StartDate,
			EndDate:   st.EndDate,
		}
	}

	profile := s.ERP.BuildTemplateProfile(ctx, s.Employee)
	docBytes, filename, err := h.gen.Generate(st.TemplateType, profile, embassy)

	templateType := st.TemplateType
	s.ClearWorkflows()

	if err != nil {
		h.logger.Error("template generation failed",
			zap.String("template_type", templateType), zap.Error(err))
		return fmt.Sprintf(`❌ I'm sorry, I couldn't generate the template.

Error: %v

This might be because:
1. The template file is not available at the expected location
2. There was an error processing your information

Please contact IT support for assistance.

💡 *Type "cancel" to return to normal chat.*`, err)
	}

	s.Document = docBytes
	s.DocumentName = filename

	opt, _ := docgen.Option(templateType)
	s.Activity.Template(opt.Name, map[string]any{
		"filename": filename,
		"employee": s.Employee.Str("name"),
	})

	response := fmt.Sprintf(`✅ I've generated your %s!

📄 **Document Details:**
- Employee: %s
- Type: %s`, opt.Name, s.Employee.Str("name"), opt.Description)
	if embassy != nil {
		response += fmt.Sprintf("\n- Country: %s\n- Travel dates: %s to %s",
			embassy.Country, embassy.StartDate, embassy.EndDate)
	}
	response += `

The document has been prepared and is ready for download.

**Note:** Please review the document before submitting it. If you need any changes, let me know!`
	return response
}

func templateOptionsMessage() string {
	var items []string
	for _, opt := range docgen.Options() {
		items = append(items, fmt.Sprintf("- **%s**: %s", opt.Name, opt.Description))
	}
	return fmt.Sprintf(`I can help you generate various employment documents. Here are the available templates:

%s

Which type of document would you like me to generate for you?

You can ask for:
- "Employment letter" (standard English version)
- "Employment letter in Arabic"
- "Embassy letter for [country name]"
- "Experience certificate"

Just let me know which one you need!

💡 *Type "cancel" to exit this process.*`, strings.Join(items, "\n"))
}

func containsAnySubstring(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
