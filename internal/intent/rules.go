package intent

import "regexp"

// The detection rules live in ordered tables so that adding a phrase is a
// data change, not a logic change. English tables are matched against the
// lowercased query, Arabic tables against the raw query.

var timeOffDenyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`how many days`),
	regexp.MustCompile(`how much (leave|time off|vacation)`),
	regexp.MustCompile(`check my (leave|balance|time off)`),
	regexp.MustCompile(`(leave|vacation|time off) balance`),
	regexp.MustCompile(`days (remaining|left|available)`),
	regexp.MustCompile(`did i take`),
	regexp.MustCompile(`have i taken`),
	regexp.MustCompile(`days i took`),
	regexp.MustCompile(`time off history`),
	regexp.MustCompile(`leave history`),
	regexp.MustCompile(`show my (leave|time off)`),
	regexp.MustCompile(`display my (leave|time off)`),
	regexp.MustCompile(`list my (leave|time off)`),
	regexp.MustCompile(`what is my (leave|vacation|time off)`),
	regexp.MustCompile(`do i have (leave|vacation|time off)`),
	regexp.MustCompile(`كم يوم`),
	regexp.MustCompile(`كم (إجازة|اجازة|عطلة)`),
	regexp.MustCompile(`رصيد (إجازة|اجازة|إجازات|اجازات)`),
	regexp.MustCompile(`أيام (متبقية|متبقيه|باقية|باقيه)`),
	regexp.MustCompile(`هل أخذت`),
	regexp.MustCompile(`تاريخ (الإجازات|الاجازات)`),
}

var timeOffPhrases = []string{
	"request time off", "take time off", "need time off", "book time off",
	"request leave", "take leave", "i want a vacation", "i need a vacation",
	"i want a break", "i need a break", "going on vacation", "plan to take",
	"i want time off", "can i take", "may i take", "i would like to take",
	"apply for leave", "leave application", "leave request", "leave of absence",
	"absent from work", "personal day", "holiday request", "vacation request",
	"إجازة", "اجازة", "عطلة", "راحة", "أريد إجازة", "أحتاج إجازة", "أريد أن آخذ إجازة",
	"أريد أن آخذ يوم إجازة", "أحتاج يوم إجازة", "أريد يوم عطلة", "أرغب في إجازة",
	"أرغب في عطلة", "أريد أن أطلب إجازة", "أريد أن أطلب عطلة", "أريد إجازة سنوية",
	"أريد إجازة مرضية", "أريد إجازة بدون راتب", "أحتاج إجازة سنوية", "أحتاج إجازة مرضية",
	"أحتاج إجازة بدون راتب", "أرغب في إجازة سنوية", "أرغب في إجازة مرضية", "أرغب في إجازة بدون راتب",
	"أريد أن أأخذ إجازة", "أريد أن أأخذ عطلة", "أحتاج إلى إجازة", "أحتاج إلى عطلة",
}

var vacationWordsEnglish = []string{"vacation", "holiday", "leave", "off", "away", "pto", "break"}
var vacationWordsArabic = []string{"إجازة", "اجازة", "عطلة", "راحة", "استراحة"}

var temporalWordsEnglish = []string{"tomorrow", "next", "this", "from", "to", "between", "on", "starting"}
var temporalWordsArabic = []string{"غدا", "غداً", "بكرة", "القادم", "القادمة", "من", "إلى", "الى", "بين", "يوم", "أيام", "يوماً", "الأسبوع", "الشهر"}

var overtimeKeywordsEnglish = []string{
	"overtime", "over time", "extra hours", "work extra",
	"work late", "additional hours", "extra work",
	"ot request", "request overtime", "book overtime",
}

var overtimeKeywordsArabic = []string{
	"إضافي", "اضافي", "عمل إضافي", "عمل اضافي",
	"وقت إضافي", "وقت اضافي", "دوام إضافي", "دوام اضافي",
	"ساعات إضافية", "ساعات اضافية", "شغل إضافي", "شغل اضافي",
	"أوفر تايم", "اوفر تايم", "أوفرتايم", "اوفرتايم",
}

// Overtime requests are distinguished from overtime policy questions.
var policyGuardKeywords = []string{"policy", "rule", "procedure", "guideline", "how does", "what is"}

var arabicLanguageMarkers = []string{"عربي", "عربية", "بالعربي", "بالعربية", "العربية"}
var arabicEmploymentMarkers = []string{"عمل", "توظيف", "وظيفة"}

var embassyKeywordsEnglish = []string{"embassy", "visa", "travel", "consulate"}
var embassyKeywordsArabic = []string{"سفارة", "سفاره", "قنصلية", "قنصليه", "فيزا", "تأشيرة", "تاشيرة"}

var experienceKeywordsEnglish = []string{"experience", "service", "former", "past"}
var experienceKeywordsArabic = []string{"خبرة", "خبره", "شهادة خبرة", "شهادة خبره"}

var employmentKeywordsEnglish = []string{"employment letter", "work certificate", "employment certificate"}
var employmentKeywordsArabic = []string{"خطاب عمل", "شهادة عمل", "رسالة عمل", "خطاب توظيف"}

var templateKeywordsEnglish = []string{"template", "document", "certificate", "letter"}
var templateKeywordsArabic = []string{"خطاب", "شهادة", "شهاده", "نموذج", "وثيقة", "وثيقه", "رسالة", "رساله", "مستند"}

var approvalViewKeywords = []string{
	"pending requests", "pending time off", "pending leave",
	"requests pending", "time off requests", "leave requests",
	"approve requests", "review requests", "show requests",
	"view requests", "check requests", "my team requests",
	"subordinate requests", "employee requests",
	"who requested time off", "any time off requests",
}

var approvalViewKeywordsArabic = []string{
	"طلبات معلقة", "طلبات معلقه", "الطلبات المعلقة", "الطلبات المعلقه",
	"طلبات إجازة", "طلبات اجازة", "طلبات الإجازة", "طلبات الاجازة",
	"طلبات فريقي", "طلبات موظفيني", "طلبات الموظفين",
}

var approvalApproveKeywords = []string{
	"approve request", "approve time off", "approve leave",
	"approve id", "approve #", "yes approve", "confirm request",
	"accept request", "grant time off", "grant leave",
}

var approvalApproveKeywordsArabic = []string{
	"موافقة طلب", "موافقه طلب", "أوافق على", "اوافق على",
	"قبول طلب", "اقبل طلب", "أقبل طلب", "موافق على الطلب",
}

var approvalDenyKeywords = []string{
	"deny request", "deny time off", "deny leave",
	"reject request", "reject time off", "reject leave",
	"decline request", "refuse request", "deny id", "deny #",
}

var approvalDenyKeywordsArabic = []string{
	"رفض طلب", "أرفض طلب", "ارفض طلب",
	"لا أوافق", "لا اوافق", "رفض الطلب",
}

var approvedViewKeywords = []string{
	"approved time off", "approved leave", "approved vacation",
	"team time off", "team leave", "team vacation",
	"who is off", "who is out", "who will be out",
	"upcoming time off", "upcoming leave", "upcoming vacation",
	"scheduled time off", "scheduled leave", "scheduled vacation",
	"team calendar", "leave calendar", "time off calendar",
	"approved requests", "show approved", "view approved",
}

var (
	approveIDPattern       = regexp.MustCompile(`\b(approve|accept|grant)\s+\d+\b`)
	approveIDPatternArabic = regexp.MustCompile(`(موافقة|موافقه|أوافق|اوافق)\s*\d+`)
	denyIDPattern          = regexp.MustCompile(`\b(deny|reject|decline|refuse)\s+\d+\b`)
	denyIDPatternArabic    = regexp.MustCompile(`(رفض|أرفض|ارفض)\s*\d+`)
)

var overtimeApprovalViewKeywords = []string{"view overtime", "show overtime", "pending overtime", "overtime requests"}
var overtimeApprovalApproveKeywords = []string{"approve overtime"}
var overtimeApprovalRefuseKeywords = []string{"refuse overtime", "reject overtime"}
var overtimeApprovalCancelKeywords = []string{"cancel overtime"}

var exitKeywordsEnglish = []string{
	"cancel", "exit", "stop", "quit", "nevermind", "never mind",
	"back", "go back", "return", "normal chat", "regular chat",
	"forget it", "skip", "abort", "done", "finish",
	"no thanks", "not now", "maybe later", "later",
	"i changed my mind", "actually no", "actually, no",
	"return to chat", "back to chat", "normal mode",
}

var exitKeywordsArabic = []string{
	"إلغاء", "الغاء", "ألغي", "الغي", "ألغ", "الغ",
	"توقف", "أوقف", "اوقف", "قف",
	"رجوع", "ارجع", "أرجع", "عودة", "عوده",
	"خروج", "اخرج", "أخرج",
	"انهي", "أنهي", "انتهى", "انتهيت",
	"كفاية", "كفايه", "خلاص", "بس",
}

var leaveBalanceKeywords = []string{
	"leave balance", "time off balance", "vacation balance", "sick balance",
	"how many days", "how much leave", "how much time off",
	"check my leave", "check my balance", "check my time off",
	"days remaining", "days left", "days available",
	"did i take", "have i taken", "days i took",
	"time off history", "leave history",
	"show my leave", "display my leave", "list my leave",
	"what is my leave", "do i have leave", "do i have time off",
	"leave summary", "leave report", "leave status", "leave entitlement",
	"allocated leaves", "allocated leave", "planned off days", "planned off day",
	"scheduled days off", "scheduled leave", "scheduled time off",
}

var leaveBalancePatterns = []*regexp.Regexp{
	regexp.MustCompile(`can (i|you) (get|show|give|see|tell).*\b(leave|time off|vacation|sick)\b.*\b(balance|summary|report|status|entitlement)\b`),
	regexp.MustCompile(`how (many|much).*\b(leave|time off|vacation|sick)\b`),
	regexp.MustCompile(`what is my (leave|time off|vacation|sick) (balance|status|entitlement)`),
	regexp.MustCompile(`(leave|time off|vacation|sick) (balance|summary|report|status|entitlement)`),
	regexp.MustCompile(`(show|display|list|tell).*\b(leave|time off|vacation|sick)\b`),
	regexp.MustCompile(`(leave|time off|vacation|sick).*\b(history|taken|used|remaining|left|available)\b`),
}

var expenseKeywords = []string{
	"expense", "reimbursement", "claim", "my expenses", "submit expense", "expense report",
	"add expense", "new expense", "miscellaneous expense", "lunch with customer", "business expense",
}

var employeeSearchKeywords = []string{"who is", "find", "search for", "look up", "employee details", "contact info for"}

var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*what\s+(is|are|does|do|can|would|will|should)`),
	regexp.MustCompile(`^\s*how\s+(does|do|can|would|will|should|to)`),
	regexp.MustCompile(`^\s*when\s+(does|do|can|would|will|should|is|are)`),
	regexp.MustCompile(`^\s*where\s+(does|do|can|would|will|should|is|are)`),
	regexp.MustCompile(`^\s*why\s+(does|do|can|would|will|should|is|are)`),
	regexp.MustCompile(`^\s*who\s+(does|do|can|would|will|should|is|are)`),
	regexp.MustCompile(`^\s*(can\s+you\s+)?(tell\s+me|explain|describe)`),
	regexp.MustCompile(`^\s*is\s+(there|it|this)`),
	regexp.MustCompile(`^\s*are\s+(there|they|these)`),
	regexp.MustCompile(`^\s*do\s+(you\s+know|we\s+have|i\s+need\s+to\s+know)`),
	regexp.MustCompile(`^\s*(what's|whats)\s+the`),
	regexp.MustCompile(`information\s+(about|on|regarding)`),
	regexp.MustCompile(`details\s+(about|on|regarding)`),
}

var policyQuestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(policy|policies|procedure|procedures|process|processes|rule|rules|guideline|guidelines)\b`),
	regexp.MustCompile(`\bhow\s+(long|much|many|often)`),
	regexp.MustCompile(`\bwhat\s+(happens|is\s+the|are\s+the)`),
}

var policyIndicators = []string{
	"policy", "policies", "procedure", "procedures", "process", "rule", "rules",
	"how does", "how do", "what is", "what are", "tell me about", "explain",
	"company policy", "prezlab policy", "prezlabs policy", "holiday policy",
	"leave policy", "vacation policy", "sick leave policy", "overtime policy",
	"expense policy", "reimbursement policy", "travel policy", "remote work policy",
	"work from home policy", "attendance policy", "time off policy",
}

var personalIndicators = []string{
	"my leave", "my vacation", "my balance", "my allocation", "my days",
	"how many days do i have", "my remaining", "my available", "my used",
	"show my", "check my", "view my", "display my",
}
