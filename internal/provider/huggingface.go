package provider

import (
	"CampusChatbot_Backend/internal/models"
	"context"
	"net/http"
)

const huggingFaceBaseURL = "https://router.huggingface.co/v1/chat/completions"

// Hugging Face Inference 라우터 제공자 (OpenAI 호환 API)
// 로컬 transformers 서빙 대신 호스팅 추론을 사용함
type HuggingFace struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewHuggingFace(apiKey, model string) *HuggingFace {
	return &HuggingFace{
		client:  &http.Client{},
		baseURL: huggingFaceBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

func (h *HuggingFace) Generate(ctx context.Context, turns []models.Turn, stream chan<- Chunk) error {
	defer close(stream)

	reqBody := chatCompletionRequest{
		Model:       h.model,
		Messages:    turns,
		Stream:      true,
		MaxTokens:   256,
		Temperature: 0.7,
	}
	return streamChatCompletionSSE(ctx, h.client, h.baseURL, h.apiKey, reqBody, stream)
}
