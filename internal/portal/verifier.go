/* e-gov 학사 포털 자격 증명 검증 클라이언트 (외부 협력 시스템) */

package portal

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid e-governance credentials")

// Verifier는 회원가입 시 포털 로그인 가능 여부만 확인한다.
// 출석 데이터 조회는 별도 협력 시스템의 몫
type Verifier interface {
	Verify(studentID, egovPassword string) error
}

// 포털이 설정되지 않은 배포 환경용
type NoopVerifier struct{}

func (NoopVerifier) Verify(studentID, egovPassword string) error { return nil }

type HTTPVerifier struct {
	client   *http.Client
	loginURL string
}

func NewHTTPVerifier(loginURL string) *HTTPVerifier {
	return &HTTPVerifier{
		client:   &http.Client{Timeout: 10 * time.Second},
		loginURL: loginURL,
	}
}

// Verify는 포털 로그인 폼에 자격 증명을 제출해 성공 여부만 본다.
func (v *HTTPVerifier) Verify(studentID, egovPassword string) error {
	form := url.Values{
		"username": {studentID},
		"password": {egovPassword},
	}

	resp, err := v.client.PostForm(v.loginURL, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("portal.Verify(): Portal rejected credentials for student %s with status %d", studentID, resp.StatusCode)
		return ErrInvalidCredentials
	}
	return nil
}

// New는 포털 URL 설정에 따라 검증기를 고른다. 비어있으면 검증 생략
func New(loginURL string) Verifier {
	if loginURL == "" {
		log.Println("portal.New(): EGOV_PORTAL_URL not set, skipping credential verification on signup")
		return NoopVerifier{}
	}
	return NewHTTPVerifier(loginURL)
}
