package provider

import (
	"CampusChatbot_Backend/internal/models"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// 로컬 Ollama 서버 제공자
type Ollama struct {
	client  *http.Client
	baseURL string
	model   string
}

func NewOllama(baseURL, model string) *Ollama {
	return &Ollama{
		client:  &http.Client{},
		baseURL: baseURL,
		model:   model,
	}
}

func (o *Ollama) Name() string { return "ollama" }

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []models.Turn `json:"messages"`
	Stream   bool          `json:"stream"`
}

// Ollama는 SSE가 아니라 JSON 한 줄씩 내려보냄
type ollamaChatLine struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

func (o *Ollama) Generate(ctx context.Context, turns []models.Turn, stream chan<- Chunk) error {
	defer close(stream)

	jsonBody, err := json.Marshal(ollamaChatRequest{
		Model:    o.model,
		Messages: turns,
		Stream:   true,
	})
	if err != nil {
		stream <- Chunk{Err: err}
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewBuffer(jsonBody))
	if err != nil {
		stream <- Chunk{Err: err}
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		stream <- Chunk{Err: err}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
		stream <- Chunk{Err: err}
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var line ollamaChatLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue // 깨진 라인은 건너뜀
		}
		if line.Message.Content != "" {
			stream <- Chunk{Content: line.Message.Content}
		}
		if line.Done {
			stream <- Chunk{Done: true}
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		stream <- Chunk{Err: err}
		return err
	}

	stream <- Chunk{Done: true}
	return nil
}
