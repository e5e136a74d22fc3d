package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Replicate API
	ReplicateAPIToken string
	ReplicateAPIURL   string
	DescribeModel     string
	SynthesisModel    string

	// Gemini API (describe 대체 백엔드)
	GeminiAPIKey    string
	GeminiModel     string
	DescribeBackend string // "replicate" 또는 "gemini"

	// Server
	Port string

	// Pipeline
	MaxParallelImages int
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := true // 기본값
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	// MaxParallelImages 파싱
	maxParallel := 2 // 기본값 (입력 이미지 동시 처리 수)
	if parallelStr := os.Getenv("MAX_PARALLEL_IMAGES"); parallelStr != "" {
		if parsed, err := strconv.Atoi(parallelStr); err == nil && parsed > 0 {
			maxParallel = parsed
		}
	}

	globalConfig = &Config{
		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Replicate API
		ReplicateAPIToken: getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateAPIURL:   getEnv("REPLICATE_API_URL", "https://api.replicate.com/v1"),
		DescribeModel:     getEnv("DESCRIBE_MODEL", "google-deepmind/gemma-3-27b-it"),
		SynthesisModel:    getEnv("SYNTHESIS_MODEL", "black-forest-labs/flux-schnell"),

		// Gemini API
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		DescribeBackend: getEnv("DESCRIBE_BACKEND", "replicate"),

		// Server
		Port: getEnv("PORT", "8080"),

		// Pipeline
		MaxParallelImages: maxParallel,
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)
	log.Printf("   Describe: %s (backend: %s)", globalConfig.DescribeModel, globalConfig.DescribeBackend)
	log.Printf("   Synthesis: %s", globalConfig.SynthesisModel)
	log.Printf("   Parallel images: %d", globalConfig.MaxParallelImages)

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.ReplicateAPIToken == "" {
		return fmt.Errorf("REPLICATE_API_TOKEN is required")
	}
	if c.DescribeBackend != "replicate" && c.DescribeBackend != "gemini" {
		return fmt.Errorf("DESCRIBE_BACKEND must be \"replicate\" or \"gemini\", got %q", c.DescribeBackend)
	}
	if c.DescribeBackend == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when DESCRIBE_BACKEND=gemini")
	}
	return nil
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
