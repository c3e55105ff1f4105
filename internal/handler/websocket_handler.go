package handler

import (
	"CampusChatbot_Backend/internal/auth"
	"CampusChatbot_Backend/internal/config"
	"CampusChatbot_Backend/internal/provider"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Upgrade HTTP connection to WebSocket
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var (
	llmProvider     provider.Provider
	providerTimeout time.Duration
)

// InitRelay는 기동 시 선택된 LLM 제공자를 릴레이에 연결한다.
func InitRelay(p provider.Provider, cfg *config.Config) {
	llmProvider = p
	providerTimeout = cfg.ProviderTimeout
	log.Printf("InitRelay(): Model relay ready with provider: %s", p.Name())
}

// HandleChat godoc
// @Summary      챗봇 WebSocket 연결
// @Description  LLM 챗봇과의 실시간 스트리밍 대화를 위한 WebSocket 연결을 시작합니다.
// @Description  <br>
// @Description  **참고: 이것은 표준 HTTP API가 아닙니다.**
// @Description  클라이언트는 `ws://` 또는 `wss://` 스킴을 사용하여 이 엔드포인트에 연결해야 합니다.
// @Description  인증은 **쿼리 파라미터('token')** 또는 첫 텍스트 프레임 `AUTH <token>`으로 수행됩니다.
// @Description  인증 전의 채팅 프레임은 절대 LLM으로 전달되지 않습니다.
// @Description  `"LOGOUT"` 프레임은 연결의 대화 메모리를 비우고 소켓을 닫습니다.
// @Tags         WebSocket (Chat)
// @Param        token    query     string  false  "로그인 시 발급받은 세션 토큰"
// @Success      101      {string}  string  "101 Switching Protocols (WebSocket으로 프로토콜 전환 성공)"
// @Failure      401      {object}  handler.ErrorResponse "유효하지 않은 토큰"
// @Failure      500      {object}  handler.ErrorResponse "WebSocket 업그레이드 실패"
// @Router       /ws/chat [get]
func HandleChat(c *gin.Context) {

	// URL Query 파라미터로 미리 인증하는 경로 (프레임 핸드셰이크도 지원)
	tokenString := c.Query("token")
	username := ""
	authenticated := false

	if tokenString != "" {
		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
			return
		}
		username = claims.Username
		authenticated = true
	}

	// WebSocket 연결 업그레이드
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("HandleChat(): Failed to upgrade to WebSocket for user %q: %v", username, err)
		return
	}
	log.Printf("HandleChat(): WebSocket connection established (user: %q, authenticated: %v)", username, authenticated)

	manageChatSession(conn, username, authenticated, context.Background())
}
