/* 환경 변수 기반 설정 로더, .env 파일 지원 */

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 서버 전체 설정
type Config struct {
	Port           string
	DBPath         string
	JWTSecret      string
	SessionTTL     time.Duration
	EgovEncKey     string // 포털 비밀번호 암호화 키 (서버 전용)
	EgovPortalURL  string // 비어있으면 회원가입 시 포털 검증 생략
	Provider       ProviderConfig
	ProviderTimeout time.Duration
}

// LLM 제공자 선택 및 접속 정보
type ProviderConfig struct {
	Name           string // together | ollama | huggingface
	TogetherAPIKey string
	TogetherModel  string
	OllamaURL      string
	OllamaModel    string
	HFAPIKey       string
	HFModel        string
}

// Load는 .env 파일(있으면)과 환경 변수에서 설정을 읽는다.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("config.Load(): No .env file found, using environment variables only")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./campus_chatbot.db"),
		JWTSecret:     os.Getenv("JWT_SECRET_KEY"),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		EgovEncKey:    os.Getenv("EGOV_ENC_KEY"),
		EgovPortalURL: os.Getenv("EGOV_PORTAL_URL"),
		Provider: ProviderConfig{
			Name:           getEnv("LLM_PROVIDER", "ollama"),
			TogetherAPIKey: os.Getenv("TOGETHER_API_KEY"),
			TogetherModel:  getEnv("TOGETHER_MODEL", "meta-llama/Llama-2-7b-chat-hf"),
			OllamaURL:      getEnv("OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:    getEnv("OLLAMA_MODEL", "llama3.2"),
			HFAPIKey:       os.Getenv("HF_API_KEY"),
			HFModel:        getEnv("HF_MODEL", "distilgpt2"),
		},
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 120)) * time.Second,
	}

	// JWT 키 기본값은 여기서만 정함, auth.Init은 받은 키를 그대로 씀
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "default_secret_key" // 기본 키 설정 (권장하지 않음)
		log.Println("Warning: JWT_SECRET_KEY environment variable is not set. Using default key.")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config.getEnvInt(): Invalid value for %s: %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
