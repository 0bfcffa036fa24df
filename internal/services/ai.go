package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/kanban-board-api/internal/models"
)

// TaskDraft is a task suggestion extracted from free text. Drafts are never
// stored; an elevated user reviews them and submits a normal create request.
type TaskDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *models.Date    `json:"due_date"`
	Priority    models.Priority `json:"priority"`
}

// DraftGenerator turns free text into task drafts.
type DraftGenerator interface {
	GenerateTaskDrafts(ctx context.Context, text string, today models.Date) ([]TaskDraft, error)
}

type AIService struct {
	client *openai.Client
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateTaskDrafts asks the chat model to extract tasks from text.
func (s *AIService) GenerateTaskDrafts(ctx context.Context, text string, today models.Date) ([]TaskDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You extract concrete work items for a shift-based Kanban board.

Today is %s.

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "title": "short title",
    "description": "details",
    "due_date": "YYYY-MM-DD, or null when no deadline is given",
    "priority": "High, Medium or Low"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") to calendar dates
- Return JSON only, without any explanation`, today, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}
