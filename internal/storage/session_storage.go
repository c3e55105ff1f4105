package storage

import (
	"CampusChatbot_Backend/internal/models"
	"time"
)

func CreateSession(session models.Session) error {
	stmt, err := db.Prepare("INSERT INTO sessions(session_id, username, created_at, expires_at) VALUES(?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(session.SessionID, session.Username, session.CreatedAt, session.ExpiresAt)
	return err
}

func GetSession(sessionID string) (models.Session, error) {
	var session models.Session

	row := db.QueryRow("SELECT session_id, username, created_at, expires_at FROM sessions WHERE session_id = ?", sessionID)
	if err := row.Scan(&session.SessionID, &session.Username, &session.CreatedAt, &session.ExpiresAt); err != nil {
		return session, err
	}
	return session, nil
}

// DeleteSession은 멱등, 세션이 없어도 에러 없음
func DeleteSession(sessionID string) error {
	_, err := db.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID)
	return err
}

// 만료된 세션 정리용
func DeleteExpiredSessions(now time.Time) (int64, error) {
	res, err := db.Exec("DELETE FROM sessions WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
