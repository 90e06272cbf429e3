// Package intent implements bilingual (English/Arabic) intent detection for
// the chat router. Detection is deterministic: ordered pattern tables first,
// fuzzy matching second, keyword co-occurrence last.
package intent

import (
	"regexp"
	"strings"
)

// TemplateKind identifies which document template the user asked for.
type TemplateKind string

const (
	TemplateNone             TemplateKind = ""
	TemplateEmployment       TemplateKind = "employment_letter"
	TemplateEmploymentArabic TemplateKind = "employment_letter_arabic"
	TemplateEmbassy          TemplateKind = "employment_letter_embassy"
	TemplateExperience       TemplateKind = "experience_letter"
	TemplateGeneral          TemplateKind = "general_template_request"
)

// ApprovalIntent identifies a manager action on team time off requests.
type ApprovalIntent string

const (
	ApprovalNone         ApprovalIntent = ""
	ApprovalViewPending  ApprovalIntent = "view_pending"
	ApprovalViewApproved ApprovalIntent = "view_approved"
	ApprovalApprove      ApprovalIntent = "approve"
	ApprovalDeny         ApprovalIntent = "deny"
)

// OvertimeApprovalIntent identifies a manager action on overtime requests.
type OvertimeApprovalIntent string

const (
	OvertimeApprovalNone    OvertimeApprovalIntent = ""
	OvertimeApprovalView    OvertimeApprovalIntent = "view_pending_overtime"
	OvertimeApprovalApprove OvertimeApprovalIntent = "approve_overtime"
	OvertimeApprovalRefuse  OvertimeApprovalIntent = "refuse_overtime"
	OvertimeApprovalCancel  OvertimeApprovalIntent = "cancel_overtime"
)

// ContainsArabic reports whether the query contains any Arabic script.
func ContainsArabic(q string) bool {
	for _, r := range q {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// DetectTimeOff reports whether the query is a time off request, with a
// confidence score. Balance and history questions are excluded first so
// "check my leave balance" never starts the booking flow.
func DetectTimeOff(query string) (bool, float64) {
	lower := strings.ToLower(query)

	if matchesAny(lower, timeOffDenyPatterns) {
		return false, 0
	}

	for _, phrase := range timeOffPhrases {
		if strings.Contains(lower, phrase) {
			return true, 0.8
		}
	}

	for _, phrase := range timeOffPhrases {
		if PartialRatio(phrase, lower) >= fuzzyThreshold {
			return true, 0.7
		}
	}

	hasVacation := containsAny(lower, vacationWordsEnglish) || containsAny(query, vacationWordsArabic)
	hasTemporal := containsAny(lower, temporalWordsEnglish) || containsAny(query, temporalWordsArabic)
	if hasVacation && hasTemporal {
		return true, 0.6
	}

	return false, 0
}

// DetectOvertime reports whether the query is an overtime request. Policy
// questions about overtime are not requests.
func DetectOvertime(query string) bool {
	lower := strings.ToLower(query)
	if containsAny(lower, policyGuardKeywords) {
		return false
	}
	return containsAny(lower, overtimeKeywordsEnglish) || containsAny(query, overtimeKeywordsArabic)
}

// DetectTemplate classifies a document request. More specific template kinds
// are checked before the generic catch-all.
func DetectTemplate(query string) TemplateKind {
	lower := strings.ToLower(query)

	if containsAny(query, arabicLanguageMarkers) && containsAny(query, arabicEmploymentMarkers) {
		return TemplateEmploymentArabic
	}
	if containsAny(lower, embassyKeywordsEnglish) || containsAny(query, embassyKeywordsArabic) {
		return TemplateEmbassy
	}
	if containsAny(lower, experienceKeywordsEnglish) || containsAny(query, experienceKeywordsArabic) {
		return TemplateExperience
	}
	if containsAny(lower, employmentKeywordsEnglish) || containsAny(query, employmentKeywordsArabic) {
		return TemplateEmployment
	}
	if containsAny(lower, templateKeywordsEnglish) || containsAny(query, templateKeywordsArabic) {
		return TemplateGeneral
	}
	return TemplateNone
}

// DetectApproval classifies a manager action on team time off requests.
// Approve/deny outrank the view intents so "approve request 12" never reads
// as a listing command.
func DetectApproval(query string) ApprovalIntent {
	lower := strings.ToLower(query)

	if DetectApprovedView(query) {
		return ApprovalViewApproved
	}

	if containsAny(lower, approvalApproveKeywords) || containsAny(query, approvalApproveKeywordsArabic) {
		return ApprovalApprove
	}
	if containsAny(lower, approvalDenyKeywords) || containsAny(query, approvalDenyKeywordsArabic) {
		return ApprovalDeny
	}
	if containsAny(lower, approvalViewKeywords) || containsAny(query, approvalViewKeywordsArabic) {
		return ApprovalViewPending
	}

	if approveIDPattern.MatchString(lower) || approveIDPatternArabic.MatchString(query) {
		return ApprovalApprove
	}
	if denyIDPattern.MatchString(lower) || denyIDPatternArabic.MatchString(query) {
		return ApprovalDeny
	}

	return ApprovalNone
}

// DetectApprovedView reports whether a manager wants to see approved or
// upcoming team time off.
func DetectApprovedView(query string) bool {
	return containsAny(strings.ToLower(query), approvedViewKeywords)
}

// DetectOvertimeApproval classifies a manager action on overtime requests.
func DetectOvertimeApproval(query string) OvertimeApprovalIntent {
	lower := strings.ToLower(query)

	if containsAny(lower, overtimeApprovalApproveKeywords) {
		return OvertimeApprovalApprove
	}
	if containsAny(lower, overtimeApprovalRefuseKeywords) {
		return OvertimeApprovalRefuse
	}
	if containsAny(lower, overtimeApprovalCancelKeywords) {
		return OvertimeApprovalCancel
	}
	if containsAny(lower, overtimeApprovalViewKeywords) {
		return OvertimeApprovalView
	}
	return OvertimeApprovalNone
}

// DetectExit reports whether the user wants to abandon the current flow.
func DetectExit(query string) bool {
	lower := strings.ToLower(strings.TrimSpace(query))
	trimmed := strings.TrimSpace(query)

	for _, k := range exitKeywordsEnglish {
		if lower == k {
			return true
		}
	}
	for _, k := range exitKeywordsArabic {
		if trimmed == k {
			return true
		}
	}
	return containsAny(lower, exitKeywordsEnglish) || containsAny(query, exitKeywordsArabic)
}

// DetectLeaveBalance reports whether the user is asking about their leave
// balance or history.
func DetectLeaveBalance(query string) bool {
	lower := strings.ToLower(strings.TrimSpace(query))

	if containsAny(lower, leaveBalanceKeywords) {
		return true
	}
	if matchesAny(lower, leaveBalancePatterns) {
		return true
	}
	for _, k := range leaveBalanceKeywords {
		if PartialRatio(k, lower) > fuzzyThreshold {
			return true
		}
	}
	return false
}

// DetectExpense reports whether the user wants to file an expense report.
func DetectExpense(query string) bool {
	return containsAny(strings.ToLower(strings.TrimSpace(query)), expenseKeywords)
}

// DetectEmployeeSearch reports whether the user is looking up a colleague.
func DetectEmployeeSearch(query string) bool {
	return containsAny(strings.ToLower(query), employeeSearchKeywords)
}

// IsInformationalQuestion reports whether the query reads as a knowledge
// question rather than an action, so it should not start a workflow.
func IsInformationalQuestion(query string) bool {
	lower := strings.ToLower(strings.TrimSpace(query))

	if matchesAny(lower, questionPatterns) {
		return true
	}
	if strings.HasSuffix(lower, "?") {
		return true
	}
	return matchesAny(lower, policyQuestionPatterns)
}

// IsPolicyQuestion reports whether the query is about company policy in
// general, as opposed to the user's own records. Policy answers must not be
// built on personal data.
func IsPolicyQuestion(query string) bool {
	lower := strings.ToLower(query)
	return containsAny(lower, policyIndicators) && !containsAny(lower, personalIndicators)
}
