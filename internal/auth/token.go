/* JWT 세션 토큰 생성 및 검증을 위한 유틸리티 함수들 */

package auth

import (
	"CampusChatbot_Backend/internal/models"
	"CampusChatbot_Backend/internal/storage"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var jwtKey []byte

var ErrSessionRevoked = errors.New("session revoked or expired")

// Init은 서명 키를 설정한다. config.Load() 이후에 호출해야
// .env로만 넘어온 JWT_SECRET_KEY도 반영됨 (기본값 처리는 config 몫)
func Init(secret string) {
	jwtKey = []byte(secret)
}

// Claims 구조체 정의, JWT 페이로드에 사용자명 포함
// RegisteredClaims.ID(jti)가 sessions 테이블의 session_id와 일치해야 함
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// CreateSession은 세션 레코드를 저장하고 서명된 JWT를 발급한다.
func CreateSession(username string, ttl time.Duration) (string, models.Session, error) {
	now := time.Now()
	session := models.Session{
		SessionID: uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.SessionID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "CampusChatbot-api",
			Subject:   "user_auth_token",
		},
	}

	// 토큰 문자열 생성 및 서명
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtKey)
	if err != nil {
		return "", models.Session{}, err
	}

	if err := storage.CreateSession(session); err != nil {
		return "", models.Session{}, err
	}
	return tokenString, session, nil
}

// ValidateToken은 서명/만료 검증 후 세션 레코드가 살아있는지 확인한다.
// 로그아웃된 토큰은 JWT 자체가 유효해도 거부됨
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	// 토큰 파싱 및 검증
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	session, err := storage.GetSession(claims.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionRevoked
		}
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// InvalidateSession은 토큰의 세션 레코드를 삭제한다. 멱등 동작:
// 이미 로그아웃됐거나 깨진 토큰이어도 에러 없이 넘어감
func InvalidateSession(tokenString string) error {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	}); err != nil {
		// 서명이 깨진 토큰은 지울 세션도 없음
		return nil
	}
	return storage.DeleteSession(claims.ID)
}
