package services

import (
	"context"
	"time"

	"github.com/niveshipo/backend/models"
	"github.com/niveshipo/backend/shared"
	"github.com/sirupsen/logrus"
)

// chatSystemInstruction keeps the assistant on financial topics
const chatSystemInstruction = `You are NiveshAI, a financial analysis terminal for the Indian IPO market. Answer strictly on financial analytics, IPO insights, market valuations, subscription data and grey market trends. Use short paragraphs and bold key figures with **markdown**. Politely decline any non-financial topic.`

// chatUnavailableMessage is served when the chat call fails; the chat
// contract is total and never surfaces an error to the presentation layer
const chatUnavailableMessage = "The markets desk is unreachable right now. Please retry your query in a moment."

// ChatResult is one assistant turn: response text plus grounding citations
type ChatResult struct {
	Text    string                   `json:"text"`
	Sources []models.GroundingSource `json:"sources,omitempty"`
}

// ChatService runs the financial chat assistant and voice transcription
type ChatService struct {
	generator  TextGenerator
	flashModel string
	Metrics    *shared.ServiceMetrics
}

// NewChatService creates the chat service
func NewChatService(generator TextGenerator, flashModel string) *ChatService {
	return &ChatService{
		generator:  generator,
		flashModel: flashModel,
		Metrics:    shared.NewServiceMetrics("Chat_Service"),
	}
}

// Chat answers one user message given the prior conversation history.
// Failures degrade to a static apologetic message.
func (s *ChatService) Chat(ctx context.Context, message string, history []ChatMessage) *ChatResult {
	startTime := time.Now()

	result, err := s.generator.GenerateChat(ctx, s.flashModel, chatSystemInstruction, message, history)
	s.Metrics.RecordRequest(err == nil, time.Since(startTime))
	if err != nil {
		logrus.Warnf("Chat call failed: %v", err)
		return &ChatResult{Text: chatUnavailableMessage}
	}
	if result.Text == "" {
		return &ChatResult{Text: chatUnavailableMessage, Sources: result.Sources}
	}

	return &ChatResult{Text: result.Text, Sources: result.Sources}
}

// Transcribe converts a base64 audio payload to text. Failures degrade to an
// empty transcription.
func (s *ChatService) Transcribe(ctx context.Context, audioBase64 string) string {
	startTime := time.Now()

	text, err := s.generator.Transcribe(ctx, audioBase64)
	s.Metrics.RecordRequest(err == nil, time.Since(startTime))
	if err != nil {
		logrus.Warnf("Transcription failed: %v", err)
		return ""
	}
	return text
}
