package flows

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/prezlab/prezbot/internal/session"
)

var searchNamePattern = regexp.MustCompile(`(?i)(?:who is|find|search for|look up)\s+(.+)`)

// EmployeeSearch looks up a colleague by name and shows their contact
// details.
func (h *Handler) EmployeeSearch(ctx context.Context, s *session.Session, query string) string {
	m := searchNamePattern.FindStringSubmatch(query)
	if m == nil {
		return "Who would you like to search for? Please provide a name."
	}
	name := strings.TrimSpace(m[1])

	employee, err := s.ERP.EmployeeByName(ctx, name)
	if err != nil {
		return fmt.Sprintf("Sorry, I could not find an employee named '%s'.", name)
	}

	return fmt.Sprintf(`I found details for %s:
- **Job Title:** %s
- **Email:** %s
- **Work Phone:** %s
`,
		orDefault(employee.Str("name"), "N/A"),
		orDefault(employee.Str("job_title"), "N/A"),
		orDefault(employee.Str("work_email"), "N/A"),
		orDefault(employee.Str("work_phone"), "N/A"))
}
