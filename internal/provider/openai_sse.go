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
	"strings"
)

// OpenAI 호환 chat/completions 요청 바디
type chatCompletionRequest struct {
	Model             string        `json:"model"`
	Messages          []models.Turn `json:"messages"`
	Stream            bool          `json:"stream"`
	MaxTokens         int           `json:"max_tokens,omitempty"`
	Temperature       float64       `json:"temperature,omitempty"`
	TopP              float64       `json:"top_p,omitempty"`
	RepetitionPenalty float64       `json:"repetition_penalty,omitempty"`
}

// 스트리밍 델타 조각 파싱용
type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// streamChatCompletionSSE는 OpenAI 호환 SSE 스트림을 읽어 델타 텍스트만
// 채널로 내보낸다. "data: " 라인, "[DONE]" 종료 센티널 형식
func streamChatCompletionSSE(ctx context.Context, client *http.Client, url, apiKey string, reqBody chatCompletionRequest, stream chan<- Chunk) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		stream <- Chunk{Err: err}
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		stream <- Chunk{Err: err}
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		stream <- Chunk{Err: err}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
		stream <- Chunk{Err: err}
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			stream <- Chunk{Done: true}
			return nil
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue // 깨진 조각은 건너뜀
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			stream <- Chunk{Content: chunk.Choices[0].Delta.Content}
		}
	}
	if err := scanner.Err(); err != nil {
		stream <- Chunk{Err: err}
		return err
	}

	// [DONE] 없이 스트림이 끝나는 서버도 있음
	stream <- Chunk{Done: true}
	return nil
}
