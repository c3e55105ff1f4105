/**
* Name: 			chatcli
* Description: 		터미널 챗봇 클라이언트 (브라우저 UI 대용)
* Workflow: 		register/login → 세션 토큰 보관 → 릴레이 접속 → 스트리밍 출력
 */
package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/term"
)

const (
	logoutSignal    = "LOGOUT"
	endOfTurnMarker = "[END]"
)

// 클라이언트가 들고 있는 세션 상태. 보호된 호출 전에 만료를 먼저 확인함
type clientSession struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

func (s *clientSession) valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}

type authResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	User      struct {
		Username  string `json:"username"`
		StudentID string `json:"student_id"`
	} `json:"user"`
	Detail string `json:"detail"`
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "chatbot API base URL")
	flag.Parse()

	fmt.Println("Campus Chatbot CLI")
	fmt.Println("Commands: /register, /login, /logout, /quit — anything else is sent to the chatbot")

	var session clientSession
	var conn *websocket.Conn
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return
		}
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit":
			return

		case "/register":
			register(*serverURL)

		case "/login":
			s, err := login(*serverURL)
			if err != nil {
				fmt.Println("login failed:", err)
				continue
			}
			session = s
			fmt.Printf("Logged in as %s (session expires %s)\n", session.Username, session.ExpiresAt.Format(time.RFC3339))

		case "/logout":
			if conn != nil {
				// 릴레이 메모리 비우고 소켓 종료
				conn.WriteMessage(websocket.TextMessage, []byte(logoutSignal))
				conn.Close()
				conn = nil
			}
			logout(*serverURL, &session)
			session = clientSession{}
			fmt.Println("Logged out")

		default:
			if !session.valid(time.Now()) {
				fmt.Println("Session missing or expired, /login first")
				session = clientSession{}
				continue
			}
			if conn == nil {
				var err error
				conn, err = dialRelay(*serverURL, session.Token)
				if err != nil {
					fmt.Println("failed to open relay:", err)
					continue
				}
			}
			if err := chatTurn(conn, line); err != nil {
				fmt.Println("relay error:", err)
				conn.Close()
				conn = nil
			}
		}
	}
}

func register(serverURL string) {
	username := prompt("username: ")
	studentID := prompt("student id: ")
	password := promptPassword("password: ")
	egovPassword := promptPassword("e-gov portal password: ")

	resp, err := postJSON(serverURL+"/register", map[string]string{
		"username":      username,
		"student_id":    studentID,
		"password":      password,
		"egov_password": egovPassword,
	})
	if err != nil {
		fmt.Println("register failed:", err)
		return
	}
	fmt.Println(resp.Message)
}

func login(serverURL string) (clientSession, error) {
	username := prompt("username: ")
	password := promptPassword("password: ")

	resp, err := postJSON(serverURL+"/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return clientSession{}, err
	}

	expiresAt, err := tokenExpiry(resp.SessionID)
	if err != nil {
		return clientSession{}, fmt.Errorf("unreadable session token: %w", err)
	}
	return clientSession{
		Token:     resp.SessionID,
		Username:  resp.User.Username,
		ExpiresAt: expiresAt,
	}, nil
}

func logout(serverURL string, session *clientSession) {
	if session.Token == "" {
		return
	}
	req, err := http.NewRequest(http.MethodPost, serverURL+"/logout", nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("logout(): request failed: %v", err)
		return
	}
	resp.Body.Close()
}

func dialRelay(serverURL, token string) (*websocket.Conn, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/ws/chat?token=%s", scheme, u.Host, url.QueryEscape(token))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	return conn, err
}

// chatTurn은 메시지 하나를 보내고 [END] 마커까지 스트리밍 출력한다.
func chatTurn(conn *websocket.Conn, message string) error {
	if err := conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
		return err
	}
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		text := string(frame)
		if text == endOfTurnMarker {
			fmt.Println()
			return nil
		}
		fmt.Print(text)
	}
}

func postJSON(url string, body map[string]string) (*authResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed authResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Detail != "" {
			return nil, fmt.Errorf("%s", parsed.Detail)
		}
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return &parsed, nil
}

// tokenExpiry는 JWT 페이로드의 exp 클레임만 읽는다 (서명 검증은 서버 몫)
func tokenExpiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("not a JWT")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}, err
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, err
	}
	return time.Unix(claims.Exp, 0), nil
}

var stdin = bufio.NewScanner(os.Stdin)

func prompt(label string) string {
	fmt.Print(label)
	if !stdin.Scan() {
		return ""
	}
	return strings.TrimSpace(stdin.Text())
}

func promptPassword(label string) string {
	fmt.Print(label)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(password))
}
