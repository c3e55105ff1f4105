package storage

import (
	"CampusChatbot_Backend/internal/cryptox"
	"CampusChatbot_Backend/internal/models"
	"errors"
	"strings"

	"modernc.org/sqlite"
)

var (
	ErrUsernameExists  = errors.New("username already exists")
	ErrStudentIDExists = errors.New("student id already registered")
)

func CreateUser(user models.User) error {
	stmt, err := db.Prepare("INSERT INTO users(username, student_id, password_hash, egov_password_enc, egov_nonce) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.Username, user.StudentID, user.PasswordHash, user.EgovPasswordEnc, user.EgovNonce)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 { // SQLITE_CONSTRAINT_UNIQUE
				if strings.Contains(sqliteErr.Error(), "users.student_id") {
					return ErrStudentIDExists
				}
				return ErrUsernameExists
			}
		}
		return err
	}
	return nil
}

func GetUserByUsername(username string) (models.User, error) {
	var user models.User

	row := db.QueryRow("SELECT id, username, student_id, password_hash, egov_password_enc, egov_nonce FROM users WHERE username = ?", username)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.StudentID,
		&user.PasswordHash,
		&user.EgovPasswordEnc,
		&user.EgovNonce,
	); err != nil {
		return user, err // sql.ErrNoRows 포함
	}
	return user, nil
}

// PortalCredential은 저장된 e-gov 포털 비밀번호를 복호화해서 반환한다.
// 출석 조회 연동 전용, HTTP 응답으로 절대 내보내지 말 것
func PortalCredential(username string, key []byte) (string, error) {
	user, err := GetUserByUsername(username)
	if err != nil {
		return "", err
	}
	plaintext, err := cryptox.Decrypt(user.EgovPasswordEnc, user.EgovNonce, key)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
