package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrorFallbackMessage is shown when the language model is unreachable.
const ErrorFallbackMessage = "I'm having trouble connecting to my brain right now. Please try again in a moment."

// fallbackMessage is shown when the model produced no usable answer.
const fallbackMessage = "I'm not sure how to help with that. Could you please rephrase or ask something else?"

// Assistant answers the questions no workflow claims, with either a clean
// policy context or the asker's own profile as grounding.
type Assistant struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewAssistant creates the general-answer assistant.
func NewAssistant(apiKey, model string, logger *zap.Logger) *Assistant {
	return &Assistant{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// AnswerPolicy answers a company policy question. Personal data stays out
// of the prompt so the answer cannot leak or be skewed by it.
func (a *Assistant) AnswerPolicy(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(`You are Prezbot, a specialized assistant for Prezlab employees.

You have comprehensive knowledge about Prezlab's policies and procedures. Please provide
a detailed, accurate response about company policies based on your training data.

Answer the following policy question: %s`, query)

	return a.complete(ctx, prompt)
}

// AnswerPersonal answers a question about the asker using their profile as
// context. managerCapabilities adds the manager feature list when the asker
// leads a team.
func (a *Assistant) AnswerPersonal(ctx context.Context, query string, profile map[string]any, isPartner, isManager bool) (string, error) {
	dataType := "employee"
	if isPartner {
		dataType = "partner"
	}
	name, _ := profile["name"].(string)
	if name == "" {
		name = "Unknown"
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}

	var managerContext string
	if !isPartner && isManager {
		managerContext = `
6. As a manager, you can:
   - List your team members (their details are in the provided data).
   - View and approve/deny pending time off requests.
   - View and manage pending overtime requests.
   - View approved time off for your team.`
	}

	prompt := fmt.Sprintf(`You are answering questions about a Prezlab %s named %s with the following data:
%s

Remember:
1. This person works at Prezlab.
2. You are Prezbot, a specialized assistant for Prezlab employees.
3. You can help request time off.
4. You can help generate documents like employment letters.
5. You can help submit overtime requests.%s

Use the specific information provided AND your general knowledge about Prezlab's policies
to answer the following question: %s`, dataType, name, profileJSON, managerContext, query)

	return a.complete(ctx, prompt)
}

func (a *Assistant) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		a.logger.Error("assistant completion failed", zap.Error(err))
		return "", fmt.Errorf("assistant completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fallbackMessage, nil
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return fallbackMessage, nil
	}
	return answer, nil
}
