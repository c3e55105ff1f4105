package models

import "time"

// 회원 사용자 모델
// EgovPasswordEnc는 AES-GCM 암호문, 클라이언트에 절대 반환하지 않음
type User struct {
	ID              int    `json:"-"`
	Username        string `json:"username"`
	StudentID       string `json:"student_id"`
	PasswordHash    string `json:"-"`
	EgovPasswordEnc []byte `json:"-"`
	EgovNonce       []byte `json:"-"`
}

// 클라이언트 응답용 사용자 정보
type UserPublic struct {
	Username  string `json:"username"`
	StudentID string `json:"student_id"`
}

func (u User) Public() UserPublic {
	return UserPublic{Username: u.Username, StudentID: u.StudentID}
}

// 로그인 세션, 토큰의 jti가 SessionID와 일치해야 유효
type Session struct {
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
