package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Model aliases exposed on the API. The alias is what clients send and what
// gets recorded on each turn; the underlying Gemini model is configuration.
const (
	ModelGemini     = "gemini"
	ModelGeminiLite = "gemini-lite"
)

type AIService struct {
	client   *genai.Client
	primary  *genai.GenerativeModel
	fallback *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewAIService(apiKey, primaryModel, fallbackModel string, concurrentReqs int) (*AIService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	primary := client.GenerativeModel(primaryModel)
	primary.SetTemperature(0.7)
	primary.SetTopP(0.9)

	fallback := client.GenerativeModel(fallbackModel)
	fallback.SetTemperature(0.7)
	fallback.SetTopP(0.9)

	// Token bucket for bounding concurrent Gemini requests
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &AIService{
		client:   client,
		primary:  primary,
		fallback: fallback,
		rateChan: rateChan,
	}, nil
}

func (s *AIService) Close() {
	s.client.Close()
}

// AvailableModels lists the model aliases a caller may request.
func (s *AIService) AvailableModels() []string {
	return []string{ModelGemini, ModelGeminiLite}
}

// Generate produces a reply for the message using the requested model alias.
// An empty alias means the primary model. When the primary model errors, the
// fallback model is tried and the returned alias records which one answered.
func (s *AIService) Generate(ctx context.Context, modelAlias, message string) (string, string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", "", err
	}
	defer s.releaseRate()

	switch modelAlias {
	case "", ModelGemini:
		reply, err := s.generate(ctx, s.primary, message)
		if err == nil {
			return reply, ModelGemini, nil
		}

		log.Printf("Primary Gemini model failed, trying fallback: %v", err)
		reply, err = s.generate(ctx, s.fallback, message)
		if err != nil {
			return "", "", fmt.Errorf("Gemini API error: %w", err)
		}
		return reply, ModelGeminiLite, nil

	case ModelGeminiLite:
		reply, err := s.generate(ctx, s.fallback, message)
		if err != nil {
			return "", "", fmt.Errorf("Gemini API error: %w", err)
		}
		return reply, ModelGeminiLite, nil

	default:
		return "", "", &ValidationError{Fields: map[string]string{
			"model": fmt.Sprintf("Model %q is not available", modelAlias),
		}}
	}
}

func (s *AIService) generate(ctx context.Context, model *genai.GenerativeModel, message string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty response")
	}
	return text, nil
}

// acquireRate blocks until a rate slot is available
func (s *AIService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *AIService) releaseRate() {
	s.rateChan <- struct{}{}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
