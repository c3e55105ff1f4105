/**
* Name: 			chat_session.go
* Description: 		WebSocket 연결 하나당 LLM 릴레이 세션
* Workflow: 		인증 → 채팅 프레임 수신 → 제공자 스트리밍 → [END] 마커
*              		"LOGOUT" 프레임은 대화 메모리를 비우고 소켓을 닫음
 */
package handler

import (
	"CampusChatbot_Backend/internal/auth"
	"CampusChatbot_Backend/internal/models"
	"CampusChatbot_Backend/internal/provider"
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	logoutSignal    = "LOGOUT"
	endOfTurnMarker = "[END]"
	errorPrefix     = "[ERROR] "
	authFramePrefix = "AUTH "

	systemPrompt = "You are a helpful, knowledgeable, and friendly AI assistant. Provide clear, concise, and accurate responses."
)

// 한 턴의 스트리밍 결과
type turnOutcome int

const (
	turnCompleted turnOutcome = iota
	turnFailed
	turnLoggedOut
	turnDisconnected
)

func manageChatSession(conn *websocket.Conn, username string, authenticated bool, parentCtx context.Context) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	incoming := make(chan string, 16)
	go chatReadPump(conn, username, incoming, ctx)

	// 연결 전용 대화 메모리, DB에 저장하지 않음
	turns := []models.Turn{{Role: models.RoleSystem, Content: systemPrompt}}

	for message := range incoming {
		if message == logoutSignal {
			log.Printf("manageChatSession(): LOGOUT received, clearing conversation memory (user: %q)", username)
			turns = nil
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "logged out"))
			return
		}

		if !authenticated {
			if token, ok := strings.CutPrefix(message, authFramePrefix); ok {
				claims, err := auth.ValidateToken(strings.TrimSpace(token))
				if err != nil {
					writeText(conn, username, errorPrefix+"unauthenticated")
					continue
				}
				username = claims.Username
				authenticated = true
				log.Printf("manageChatSession(): Connection authenticated for user: %s", username)
				continue
			}
			// 인증 전 프레임은 절대 제공자로 전달하지 않음 (fail closed)
			writeText(conn, username, errorPrefix+"unauthenticated")
			continue
		}

		turns = append(turns, models.Turn{Role: models.RoleUser, Content: message})

		reply, outcome := streamReply(ctx, conn, username, turns, incoming)
		switch outcome {
		case turnCompleted:
			turns = append(turns, models.Turn{Role: models.RoleAssistant, Content: reply})
		case turnFailed:
			// 실패한 턴은 메모리에서 빼고 연결은 유지 (재시도 가능)
			turns = turns[:len(turns)-1]
		case turnLoggedOut:
			log.Printf("manageChatSession(): LOGOUT during generation, clearing conversation memory (user: %s)", username)
			turns = nil
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "logged out"))
			return
		case turnDisconnected:
			log.Printf("manageChatSession(): Client disconnected during generation (user: %s)", username)
			return
		}
	}
	log.Printf("manageChatSession(): Connection closed, discarding conversation memory (user: %q)", username)
}

// streamReply는 대화 전체를 제공자에 넘기고 생성 순서 그대로 프레임을 내보낸다.
// 생성 중에도 incoming을 계속 읽어서 LOGOUT/끊김이 진행 중인 스트림을 취소함
func streamReply(ctx context.Context, conn *websocket.Conn, username string, turns []models.Turn, incoming <-chan string) (string, turnOutcome) {
	genCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	stream := make(chan provider.Chunk, 64)
	go llmProvider.Generate(genCtx, turns, stream)

	var reply strings.Builder
	for {
		select {
		case message, ok := <-incoming:
			if !ok {
				cancel()
				drainStream(stream)
				return "", turnDisconnected
			}
			if message == logoutSignal {
				cancel()
				drainStream(stream)
				return "", turnLoggedOut
			}
			// 스트리밍 중 도착한 추가 채팅 입력은 버림
			log.Printf("streamReply(): Dropping message received mid-generation (user: %s)", username)

		case chunk, ok := <-stream:
			if !ok {
				// Done 프레임 없이 채널이 닫힌 경우도 턴 종료로 처리
				writeText(conn, username, endOfTurnMarker)
				return reply.String(), turnCompleted
			}
			if chunk.Err != nil {
				drainStream(stream)
				if errors.Is(chunk.Err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
					log.Printf("streamReply(): Provider timed out after %v (user: %s)", providerTimeout, username)
					writeText(conn, username, errorPrefix+"provider timeout")
				} else {
					log.Printf("streamReply(): Provider error (user: %s): %v", username, chunk.Err)
					writeText(conn, username, errorPrefix+"provider error: "+chunk.Err.Error())
				}
				return "", turnFailed
			}
			if chunk.Done {
				drainStream(stream)
				writeText(conn, username, endOfTurnMarker)
				return reply.String(), turnCompleted
			}
			if chunk.Content != "" {
				reply.WriteString(chunk.Content)
				if err := conn.WriteMessage(websocket.TextMessage, []byte(chunk.Content)); err != nil {
					log.Printf("streamReply(): Error sending chunk to user %s: %v", username, err)
					cancel()
					drainStream(stream)
					return "", turnDisconnected
				}
			}
		}
	}
}

// 버려진 스트림의 생산자 고루틴이 채널 전송에서 막히지 않게 비워줌
func drainStream(stream <-chan provider.Chunk) {
	go func() {
		for range stream {
		}
	}()
}

func chatReadPump(conn *websocket.Conn, username string, incoming chan<- string, ctx context.Context) {
	defer close(incoming)
	for {
		select {
		case <-ctx.Done():
			log.Printf("chatReadPump(): Canceled for user %q", username)
			return
		default:
		}
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("chatReadPump(): Error reading message from user %q: %v", username, err)
			return
		}

		if messageType != websocket.TextMessage {
			log.Printf("chatReadPump(): Unsupported message type from user %q: %d", username, messageType)
			continue
		}
		// 버퍼가 가득 찬 채로 세션이 끝나도 여기서 멈추지 않게 함
		select {
		case incoming <- string(message):
		case <-ctx.Done():
			log.Printf("chatReadPump(): Canceled for user %q", username)
			return
		}
	}
}

func writeText(conn *websocket.Conn, username, text string) {
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		log.Printf("writeText(): Error sending message to user %q: %v", username, err)
	}
}
