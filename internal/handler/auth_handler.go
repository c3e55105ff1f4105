/**
* Name: 			auth_handler.go
* Description: 		Gin 프레임워크의 인증 HTTP 핸들러
* Workflow: 		회원가입, 로그인, 로그아웃, 세션 조회
 */
package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"CampusChatbot_Backend/internal/auth"
	"CampusChatbot_Backend/internal/config"
	"CampusChatbot_Backend/internal/cryptox"
	"CampusChatbot_Backend/internal/models"
	"CampusChatbot_Backend/internal/portal"
	"CampusChatbot_Backend/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// /register 요청 바디
type RegisterRequest struct {
	Username     string `json:"username" example:"alice"`
	StudentID    string `json:"student_id" example:"S123"`
	Password     string `json:"password" example:"password123"`
	EgovPassword string `json:"egov_password" example:"portal_pw"`
}

// /login 요청 바디
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"password123"`
}

type AuthResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	SessionID string             `json:"session_id,omitempty"`
	User      *models.UserPublic `json:"user,omitempty"`
}

type ErrorResponse struct {
	Detail string `json:"detail" example:"에러 원인 및 설명"`
}

var (
	sessionTTL     time.Duration
	egovKey        []byte
	portalVerifier portal.Verifier
)

// 존재하지 않는 사용자 로그인 시에도 bcrypt 비교를 돌려서
// 응답 시간으로 계정 존재 여부가 새지 않게 함
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// InitAuth는 설정에서 JWT 서명 키, 세션 TTL, 암호화 키, 포털 검증기를 준비한다.
// config.Load() 다음에 호출할 것 (.env의 JWT_SECRET_KEY 반영 순서)
func InitAuth(cfg *config.Config) {
	auth.Init(cfg.JWTSecret)
	sessionTTL = cfg.SessionTTL

	var err error
	egovKey, err = cryptox.DeriveKey(cfg.EgovEncKey)
	if err != nil {
		// 전용 키가 없으면 JWT 키에서 파생 (권장하지 않음)
		log.Println("Warning: EGOV_ENC_KEY is not set, deriving encryption key from JWT secret")
		egovKey, _ = cryptox.DeriveKey(cfg.JWTSecret)
	}

	portalVerifier = portal.New(cfg.EgovPortalURL)
}

// Register godoc
// @Summary      회원가입 (Register)
// @Description  새로운 사용자 계정을 생성합니다. 포털 비밀번호는 암호화되어 저장됩니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.RegisterRequest true "회원가입 요청 정보"
// @Success      200 {object} handler.AuthResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      500 {object} handler.ErrorResponse
// @Router       /register [post]
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	// " "으로 입력되는 케이스 방지
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.StudentID) == "" ||
		strings.TrimSpace(req.Password) == "" || strings.TrimSpace(req.EgovPassword) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "All fields are required"})
		return
	}

	// e-gov 포털 자격 증명 검증 (포털 미설정 시 생략)
	if err := portalVerifier.Verify(req.StudentID, req.EgovPassword); err != nil {
		if errors.Is(err, portal.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "E-governance credential verification failed"})
		} else {
			log.Printf("[ERROR] Register: portal verification error: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"detail": "E-governance portal is unreachable"})
		}
		return
	}

	// password 해싱
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to hash password"})
		return
	}

	// 포털 비밀번호는 평문 저장 금지
	egovEnc, nonce, err := cryptox.Encrypt([]byte(req.EgovPassword), egovKey)
	if err != nil {
		log.Printf("[ERROR] Register: failed to encrypt portal password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to secure credentials"})
		return
	}

	user := models.User{
		Username:        req.Username,
		StudentID:       req.StudentID,
		PasswordHash:    string(hashedPassword),
		EgovPasswordEnc: egovEnc,
		EgovNonce:       nonce,
	}
	if err := storage.CreateUser(user); err != nil {
		switch {
		case errors.Is(err, storage.ErrUsernameExists):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Username already exists"})
		case errors.Is(err, storage.ErrStudentIDExists):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Student ID already registered"})
		default:
			log.Printf("[ERROR] Failed to create user (database error): %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user (database error)"})
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Success: true, Message: "User registered successfully"})
}

// Login godoc
// @Summary      로그인 (Login)
// @Description  사용자명과 비밀번호로 로그인하고 세션 토큰을 발급받습니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.LoginRequest true "로그인 요청 정보"
// @Success      200 {object} handler.AuthResponse
// @Failure      401 {object} handler.ErrorResponse "인증 실패 (자격 증명 오류)"
// @Failure      500 {object} handler.ErrorResponse "서버 내부 오류"
// @Router       /login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	user, err := storage.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 타이밍 균일화용 더미 비교
			bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(req.Password))
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid username or password"})
			return
		}
		log.Printf("[ERROR] GetUserByUsername failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Database error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid username or password"})
		return
	}

	tokenString, _, err := auth.CreateSession(user.Username, sessionTTL)
	if err != nil {
		log.Printf("[ERROR] Login: failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create session"})
		return
	}

	public := user.Public()
	c.JSON(http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Login successful",
		SessionID: tokenString,
		User:      &public,
	})
}

// Logout godoc
// @Summary      로그아웃 (Logout)
// @Description  세션을 무효화합니다. 이미 만료/삭제된 토큰이어도 200을 반환합니다.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.AuthResponse
// @Failure      401 {object} handler.ErrorResponse "토큰 누락"
// @Router       /logout [post]
func Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No session provided"})
		return
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	// 멱등: 세션이 없어도 에러 아님
	if err := auth.InvalidateSession(tokenString); err != nil {
		log.Printf("[ERROR] Logout: failed to delete session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true, Message: "Logged out successfully"})
}

// Me godoc
// @Summary      현재 사용자 조회 (Me)
// @Description  세션 토큰으로 현재 로그인된 사용자 정보를 조회합니다.
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.AuthResponse
// @Failure      401 {object} handler.ErrorResponse "인증 토큰 누락 또는 만료"
// @Router       /me [get]
func Me(c *gin.Context) {
	username := c.GetString("username")

	user, err := storage.GetUserByUsername(username)
	if err != nil {
		log.Printf("[ERROR] Me: failed to get user %s: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve user"})
		return
	}

	public := user.Public()
	c.JSON(http.StatusOK, AuthResponse{Success: true, Message: "ok", User: &public})
}

// Health godoc
// @Summary      헬스 체크
// @Tags         Auth
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "auth"})
}
