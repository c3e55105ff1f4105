package models

// 대화 턴 역할
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// 한 번의 대화 턴, 연결이 살아있는 동안만 메모리에 존재 (DB 저장 안 함)
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
