package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/niveshipo/backend/config"
	"github.com/niveshipo/backend/models"
	"github.com/niveshipo/backend/shared"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// ChatMessage is one prior turn of a chat conversation
type ChatMessage struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// GenerationResult is the raw outcome of a text-generation call: untrusted
// generated text plus any grounding citations the web search tool attached
type GenerationResult struct {
	Text    string
	Sources []models.GroundingSource
}

// TextGenerator is the outbound text-generation dependency of the services
// that format prompts and normalize responses. Declared here so those
// services can be exercised against a fake in tests.
type TextGenerator interface {
	GenerateGrounded(ctx context.Context, model, prompt string) (*GenerationResult, error)
	GenerateChat(ctx context.Context, model, systemInstruction, message string, history []ChatMessage) (*GenerationResult, error)
	Transcribe(ctx context.Context, audioBase64 string) (string, error)
}

// GeminiService implements TextGenerator against the Gemini API. All callers
// treat the generated text as untrusted and pipe it through the normalizer.
type GeminiService struct {
	client         *genai.Client
	flashModel     string
	thinkingBudget int32
	rateLimiter    *shared.RequestRateLimiter
	Metrics        *shared.ServiceMetrics
}

// transcriptionInstruction is the fixed instruction sent with audio payloads
const transcriptionInstruction = "Transcribe this audio recording exactly. Respond with only the transcribed text, no commentary."

// NewGeminiService creates the Gemini client from configuration
func NewGeminiService(cfg *config.Config) (*GeminiService, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, shared.NewServiceError(
			shared.ErrorCategoryConfiguration,
			"MISSING_API_KEY",
			"GEMINI_API_KEY is required",
			"Gemini_Service",
			"init",
			false,
			nil,
		)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"flash_model": cfg.FlashModel,
		"pro_model":   cfg.ProModel,
	}).Info("Gemini service initialized")

	return &GeminiService{
		client:         client,
		flashModel:     cfg.FlashModel,
		thinkingBudget: cfg.GetThinkingBudget(),
		rateLimiter:    shared.NewRequestRateLimiter(500 * time.Millisecond),
		Metrics:        shared.NewServiceMetrics("Gemini_Service"),
	}, nil
}

// GenerateGrounded issues a single-prompt generation call with the
// GoogleSearch tool enabled and returns the generated text together with any
// web grounding citations
func (s *GeminiService) GenerateGrounded(ctx context.Context, model, prompt string) (*GenerationResult, error) {
	s.rateLimiter.EnforceRateLimit()

	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	if s.thinkingBudget >= 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(s.thinkingBudget)}
	}

	startTime := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, cfg)
	s.Metrics.RecordRequest(err == nil, time.Since(startTime))
	if err != nil {
		return nil, fmt.Errorf("generation call failed: %w", err)
	}

	return extractResult(resp), nil
}

// GenerateChat issues a multi-turn generation call with conversation history,
// a system instruction and the GoogleSearch tool
func (s *GeminiService) GenerateChat(ctx context.Context, model, systemInstruction, message string, history []ChatMessage) (*GenerationResult, error) {
	s.rateLimiter.EnforceRateLimit()

	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == "model" || turn.Role == "ai" || turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	startTime := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, model, contents, cfg)
	s.Metrics.RecordRequest(err == nil, time.Since(startTime))
	if err != nil {
		return nil, fmt.Errorf("chat generation failed: %w", err)
	}

	return extractResult(resp), nil
}

// Transcribe sends a base64-encoded audio payload with the fixed
// transcription instruction and returns the transcribed text
func (s *GeminiService) Transcribe(ctx context.Context, audioBase64 string) (string, error) {
	audio, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return "", shared.NewServiceError(
			shared.ErrorCategoryValidation,
			"INVALID_AUDIO",
			"audio payload is not valid base64",
			"Gemini_Service",
			"transcribe",
			false,
			err,
		)
	}

	s.rateLimiter.EnforceRateLimit()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcriptionInstruction),
			genai.NewPartFromBytes(audio, "audio/wav"),
		}, genai.RoleUser),
	}

	startTime := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, s.flashModel, contents, nil)
	s.Metrics.RecordRequest(err == nil, time.Since(startTime))
	if err != nil {
		return "", fmt.Errorf("transcription call failed: %w", err)
	}

	return strings.TrimSpace(extractResult(resp).Text), nil
}

// extractResult pulls generated text and grounding sources out of a response.
// Candidates are scanned until one yields non-empty text.
func extractResult(resp *genai.GenerateContentResponse) *GenerationResult {
	result := &GenerationResult{}
	if resp == nil || len(resp.Candidates) == 0 {
		return result
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		if text.Len() > 0 {
			result.Text = text.String()
			break
		}
	}

	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			title := chunk.Web.Title
			if title == "" {
				title = "Source"
			}
			result.Sources = append(result.Sources, models.GroundingSource{
				Title: title,
				URI:   chunk.Web.URI,
			})
		}
	}

	return result
}
