package oracle

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// SessionOracle keeps a Gemini chat session open for the duration of one
// row stream, so the model sees earlier rows of the same statement when
// judging later ones. A session belongs to exactly one stream; parallel
// streams each open their own and never share one.
type SessionOracle struct {
	client  *genai.Client
	session *genai.ChatSession
}

var _ Classifier = (*SessionOracle)(nil)

// NewSessionOracle opens a client and a fresh chat session primed with the
// classification system prompt.
func NewSessionOracle(ctx context.Context, modelName string) (*SessionOracle, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", ErrUnavailable)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrUnavailable, err)
	}

	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fallbackSystemPrompt)},
	}

	return &SessionOracle{
		client:  client,
		session: model.StartChat(),
	}, nil
}

// ClassifyRow sends the row into the ongoing session and parses the verdict.
func (s *SessionOracle) ClassifyRow(ctx context.Context, row []string) (*Opinion, error) {
	_, userPrompt, err := buildClassificationPrompt(row)
	if err != nil {
		return nil, err
	}

	resp, err := s.session.SendMessage(ctx, genai.Text(userPrompt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty response", ErrMalformed)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	return ParseOpinion(sb.String())
}

// Close releases the underlying client. The session is not reusable after.
func (s *SessionOracle) Close() error {
	return s.client.Close()
}
