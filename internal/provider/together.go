package provider

import (
	"CampusChatbot_Backend/internal/models"
	"context"
	"net/http"
)

const togetherBaseURL = "https://api.together.xyz/v1/chat/completions"

// Together.AI 호스팅 모델 제공자 (OpenAI 호환 API)
type Together struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewTogether(apiKey, model string) *Together {
	return &Together{
		client:  &http.Client{},
		baseURL: togetherBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

func (t *Together) Name() string { return "together" }

func (t *Together) Generate(ctx context.Context, turns []models.Turn, stream chan<- Chunk) error {
	defer close(stream)

	reqBody := chatCompletionRequest{
		Model:             t.model,
		Messages:          turns,
		Stream:            true,
		MaxTokens:         512,
		Temperature:       0.7,
		TopP:              0.9,
		RepetitionPenalty: 1.1,
	}
	return streamChatCompletionSSE(ctx, t.client, t.baseURL, t.apiKey, reqBody, stream)
}
