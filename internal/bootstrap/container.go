package bootstrap

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"club-assistant-be/internal/config"
	"club-assistant-be/internal/controller"
	"club-assistant-be/internal/pkg/logger"
	"club-assistant-be/internal/repository/chatlog"
	"club-assistant-be/internal/repository/memory"
	"club-assistant-be/internal/service"
	"club-assistant-be/pkg/ai/pipeline"
	"club-assistant-be/pkg/ai/router"
	"club-assistant-be/pkg/database"
	"club-assistant-be/pkg/embedding"
	"club-assistant-be/pkg/index"
	"club-assistant-be/pkg/llm/factory"
	"club-assistant-be/pkg/rag/grader"
	"club-assistant-be/pkg/rag/reflect"
	"club-assistant-be/pkg/rag/response"
	"club-assistant-be/pkg/rag/retrieve"

	pktNats "club-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Loggers (exposed for shutdown Sync)
	SysLogger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)

	aiTimeout := time.Duration(cfg.Ai.TimeoutSeconds) * time.Second

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
			aiTimeout,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey, aiTimeout)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmBaseURL := cfg.Ai.OllamaBaseURL
	llmAPIKey := ""
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
		llmAPIKey = cfg.Ai.OpenAIAPIKey
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		llmAPIKey,
		aiTimeout,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Document Index
	var documentIndex index.DocumentIndex
	if cfg.Index.Driver == "pinecone" {
		documentIndex = index.NewPineconeIndex(index.PineconeConfig{
			APIKey:    cfg.Index.PineconeAPIKey,
			IndexName: cfg.Index.PineconeIndexName,
			Timeout:   aiTimeout,
		}, log.New(os.Stdout, "[PINECONE] ", log.LstdFlags))
		log.Printf("[INFO] Using Document Index: PINECONE (%s)", cfg.Index.PineconeIndexName)
	} else {
		vecDB, err := database.NewGormDBFromDSN(cfg.Index.DBConnection)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to pgvector DB: %v", err)
		}
		documentIndex, err = index.NewPgVectorIndex(vecDB)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize pgvector index: %v", err)
		}
		log.Printf("[INFO] Using Document Index: PGVECTOR")
	}

	// 5. Conversation Memory
	conversationRepo := memory.NewConversationRepository(10, memory.KeywordTopicExtractor)

	// 6. Chat Log Store
	if cfg.ChatLog.Driver == "sqlite" || cfg.ChatLog.Driver == "" {
		if err := os.MkdirAll(filepath.Dir(cfg.ChatLog.DSN), 0755); err != nil {
			log.Printf("[WARN] Failed to create chatlog directory: %v", err)
		}
	}
	chatLogStore, err := chatlog.Open(cfg.ChatLog.Driver, cfg.ChatLog.DSN)
	if err != nil {
		log.Fatalf("[FATAL] Failed to open chatlog store: %v", err)
	}

	// 7. NATS (best-effort: the assistant works without the event bus)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 8. Pipeline Components
	turnRouter := router.NewRouter(llmProvider, conversationRepo, llmLogger)
	retrieverOpts := []retrieve.Option{retrieve.WithTopK(cfg.Rag.TopK)}
	if cfg.Rag.Diversity {
		retrieverOpts = append(retrieverOpts, retrieve.WithDiversity(cfg.Rag.DiversityLambda))
	}
	retriever := retrieve.NewRetriever(embeddingProvider, documentIndex, llmLogger, retrieverOpts...)
	generator := response.NewGenerator(llmProvider, llmLogger)
	hallucinationGrader := grader.NewHallucinationGrader(llmProvider, llmLogger)
	reflector := reflect.NewController(hallucinationGrader, generator, llmLogger,
		reflect.WithMaxAttempts(cfg.Rag.MaxAttempts))

	pipelineOpts := []pipeline.Option{}
	if cfg.Rag.RelevanceFilter {
		relevanceGrader := grader.NewRelevanceGrader(llmProvider, llmLogger)
		pipelineOpts = append(pipelineOpts, pipeline.WithRelevanceFilter(relevanceGrader))
	}
	turnPipeline := pipeline.NewPipeline(
		turnRouter,
		retriever,
		generator,
		reflector,
		conversationRepo,
		llmLogger,
		pipelineOpts...,
	)

	// 9. Services
	assistantService := service.NewAssistantService(
		turnPipeline,
		conversationRepo,
		chatLogStore,
		natsPub,
		sysLogger,
	)
	ingestService := service.NewIngestService(pubSub, cfg.App.IngestTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		embeddingProvider,
		documentIndex,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
	)

	// 10. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService, ingestService),
		ConsumerService:     consumerService,
		SysLogger:           sysLogger,
	}
}
