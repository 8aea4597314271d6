package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Ai      AIConfig
	Index   IndexConfig
	ChatLog ChatLogConfig
	Rag     RagConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	IngestTopic        string
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string // e.g. "gpt-4o-mini", "llama3"
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OllamaBaseURL     string
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaEmbedModel  string
	GeminiAPIKey      string
	TimeoutSeconds    int
}

type IndexConfig struct {
	Driver            string // "pinecone" or "pgvector"
	PineconeAPIKey    string
	PineconeIndexName string
	DBConnection      string // pgvector DSN
}

type ChatLogConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string // file path for sqlite, connection string for postgres
}

type RagConfig struct {
	TopK            int
	MaxAttempts     int
	Diversity       bool
	DiversityLambda float64
	RelevanceFilter bool
	ChunkSize       int
	ChunkOverlap    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm_pipeline.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			IngestTopic:        getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			TimeoutSeconds:    getEnvAsInt("AI_TIMEOUT_SECONDS", 60),
		},
		Index: IndexConfig{
			Driver:            getEnv("INDEX_DRIVER", "pgvector"),
			PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
			PineconeIndexName: getEnv("PINECONE_INDEX_NAME", "club-docs"),
			DBConnection:      getEnv("DB_CONNECTION_STRING", ""),
		},
		ChatLog: ChatLogConfig{
			Driver: getEnv("CHATLOG_DRIVER", "sqlite"),
			DSN:    getEnv("CHATLOG_DSN", "data/assistant.db"),
		},
		Rag: RagConfig{
			TopK:            getEnvAsInt("RETRIEVAL_K", 4),
			MaxAttempts:     getEnvAsInt("REFLECTION_MAX_ATTEMPTS", 2),
			Diversity:       getEnvAsBool("RETRIEVAL_DIVERSITY", false),
			DiversityLambda: getEnvAsFloat("RETRIEVAL_DIVERSITY_LAMBDA", 0.7),
			RelevanceFilter: getEnvAsBool("RELEVANCE_FILTER", false),
			ChunkSize:       getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:    getEnvAsInt("CHUNK_OVERLAP", 200),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
