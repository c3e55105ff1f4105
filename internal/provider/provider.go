/* LLM 제공자 추상화, 기동 시 설정으로 하나만 선택됨 */

package provider

import (
	"CampusChatbot_Backend/internal/config"
	"CampusChatbot_Backend/internal/models"
	"context"
	"fmt"
)

// 스트리밍 응답 조각
type Chunk struct {
	Content string
	Err     error
	Done    bool
}

// Provider는 대화 전체를 받아 토큰을 생성 순서대로 채널에 흘려보낸다.
// 구현체는 종료 시(정상/에러 모두) 채널을 닫아야 함
type Provider interface {
	Name() string
	Generate(ctx context.Context, turns []models.Turn, stream chan<- Chunk) error
}

// New는 LLM_PROVIDER 설정에 따라 제공자를 하나 생성한다.
func New(cfg config.ProviderConfig) (Provider, error) {
	switch cfg.Name {
	case "together":
		return NewTogether(cfg.TogetherAPIKey, cfg.TogetherModel), nil
	case "ollama":
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel), nil
	case "huggingface":
		return NewHuggingFace(cfg.HFAPIKey, cfg.HFModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Name)
	}
}
