package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Intent labels the classifier can return.
const (
	IntentTimeOff           = "time_off_request"
	IntentTemplate          = "template_request"
	IntentOvertime          = "overtime_request"
	IntentPolicyQuestion    = "policy_question"
	IntentEmployeeSearch    = "employee_search"
	IntentExpenseReport     = "expense_report"
	IntentApproval          = "manager_approval"
	IntentOvertimeApproval  = "manager_overtime_approval"
	IntentGeneral           = "general"
)

var intentDescriptions = []struct {
	label, description string
	managerOnly        bool
}{
	{IntentTimeOff, "User is asking for or booking time off.", false},
	{IntentTemplate, "User wants a document like a letter or certificate.", false},
	{IntentOvertime, "User is asking to request overtime.", false},
	{IntentPolicyQuestion, "User is asking a question about a company policy (e.g., 'what is the time off policy?').", false},
	{IntentEmployeeSearch, "User is trying to find a specific employee's contact information or details, usually by providing a name.", false},
	{IntentApproval, "Manager is asking to see pending approvals for their team.", true},
	{IntentOvertimeApproval, "Manager is asking to see or manage pending overtime approvals for their team.", true},
	{IntentGeneral, "A general question, conversation, or a request that doesn't fit other categories. This includes a manager asking to see their team members (e.g., 'who are my reports?').", false},
}

// Classifier routes free-form queries to intent labels via a chat model.
type Classifier struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewClassifier creates an intent classifier.
func NewClassifier(apiKey, model string, logger *zap.Logger) *Classifier {
	return &Classifier{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

type classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify returns an intent label and the model's confidence. Manager-only
// intents are offered only when the caller is a manager. Any failure degrades
// to ("general", 0) so keyword detectors keep the conversation going.
func (c *Classifier) Classify(ctx context.Context, query string, isManager bool) (string, float64) {
	var prompt strings.Builder
	prompt.WriteString("You are an intent classifier. Classify the user's query into one of the following categories:\n")
	for _, d := range intentDescriptions {
		if d.managerOnly && !isManager {
			continue
		}
		fmt.Fprintf(&prompt, "- '%s': %s\n", d.label, d.description)
	}
	prompt.WriteString("\nRespond in valid JSON format: {\"label\": \"<intent>\", \"confidence\": <0-1>}")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   60,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.String()},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		c.logger.Warn("intent classification failed", zap.Error(err))
		return IntentGeneral, 0
	}
	if len(resp.Choices) == 0 {
		return IntentGeneral, 0
	}

	content := resp.Choices[0].Message.Content
	var result classification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		// Some models wrap the object in markdown fences despite the
		// response format. Pull the first JSON object out of the text.
		if extracted := extractJSON(content); extracted != "" {
			err = json.Unmarshal([]byte(extracted), &result)
		}
		if err != nil {
			c.logger.Warn("unparseable classification response",
				zap.String("content", content),
				zap.Error(err))
			return IntentGeneral, 0
		}
	}
	if result.Label == "" {
		return IntentGeneral, 0
	}
	return result.Label, result.Confidence
}

// extractJSON finds the first balanced JSON object in a string.
func extractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return content[start : i+1]
				}
			}
		}
	}
	return ""
}
