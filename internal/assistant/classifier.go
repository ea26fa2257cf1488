package assistant

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for intent classification.
const DefaultModelName = "gemini-2.5-flash"

// Message is one turn of conversation history the caller chooses to send.
// Role is "user" or "model".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Classification is the model's verdict on one message: either a single
// selected catalog action with extracted arguments, or a free-text reply.
type Classification struct {
	Call *genai.FunctionCall
	Text string
}

// Classifier maps one free-text message to a Classification. The Gemini
// implementation lives below; tests swap in a stub.
type Classifier interface {
	Classify(ctx context.Context, message string, history []Message) (*Classification, error)
}

// GeminiClassifier classifies messages with the Gemini API using the
// action catalog as function declarations.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier creates a classifier with a fresh GenAI client.
// Credentials come from the environment (GEMINI_API_KEY or ADC).
func NewGeminiClassifier(ctx context.Context) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClassifier: create genai client: %w", err)
	}
	return &GeminiClassifier{client: client, model: DefaultModelName}, nil
}

// Classify sends the history and message to Gemini together with the
// catalog declarations and reduces the response to a Classification.
func (g *GeminiClassifier) Classify(ctx context.Context, message string, history []Message) (*Classification, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt(time.Now())}},
		},
		Tools: []*genai.Tool{
			{FunctionDeclarations: Declarations()},
		},
	}

	var contents []*genai.Content
	for _, m := range history {
		role := "user"
		if m.Role == "model" || m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: message}},
	})

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Classify: generate content: %w", err)
	}

	return firstClassification(resp), nil
}

// firstClassification picks the FIRST function call from the first
// candidate, so one user message maps to at most one persisted effect even
// when the model proposes several calls. Without a call it falls back to
// the text reply.
func firstClassification(resp *genai.GenerateContentResponse) *Classification {
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.FunctionCall != nil {
				return &Classification{Call: part.FunctionCall}
			}
		}
	}
	return &Classification{Text: resp.Text()}
}
