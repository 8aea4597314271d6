package service

import (
	"context"
	"time"

	"club-assistant-be/internal/dto"
	"club-assistant-be/internal/pkg/logger"
	"club-assistant-be/internal/repository/chatlog"
	"club-assistant-be/pkg/ai/pipeline"
	"club-assistant-be/pkg/events"
	pktNats "club-assistant-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IAssistantService defines the assistant service interface
type IAssistantService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	ClearSession(sessionID string)
	AddFeedback(ctx context.Context, request *dto.FeedbackRequest) error
}

// Pipeline is the per-turn entry point the service drives.
type Pipeline interface {
	Process(ctx context.Context, question, sessionID string) (*pipeline.Result, error)
}

// SessionStore is the memory slice the service needs for clearing.
type SessionStore interface {
	Clear(sessionID string)
}

type assistantService struct {
	pipeline Pipeline
	sessions SessionStore
	chatLog  chatlog.Store
	natsPub  *pktNats.Publisher
	logger   logger.ILogger
}

func NewAssistantService(
	p Pipeline,
	sessions SessionStore,
	chatLog chatlog.Store,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		pipeline: p,
		sessions: sessions,
		chatLog:  chatLog,
		natsPub:  natsPub,
		logger:   log,
	}
}

// Chat runs one conversational turn. Backend failures never surface
// here: the pipeline already converted them into the fallback answer.
func (s *assistantService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionID := request.SessionId
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	start := time.Now()
	result, err := s.pipeline.Process(ctx, request.Question, sessionID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to process chat")
	}
	elapsed := time.Since(start)

	s.logger.Info("AssistantService", "Turn completed", map[string]interface{}{
		"session_id":       sessionID,
		"route":            string(result.Route),
		"sources":          result.Sources,
		"reflection_count": result.ReflectionCount,
		"response_time_ms": elapsed.Milliseconds(),
	})

	// Post-turn side effects are best-effort: a dead log database or
	// NATS outage must not fail an already answered turn.
	go s.logTurn(sessionID, request.Question, result, elapsed)
	go s.publishTurn(sessionID, request.Question, result, elapsed)

	return &dto.ChatResponse{
		SessionId:       sessionID,
		Answer:          result.Answer,
		Route:           string(result.Route),
		Sources:         result.Sources,
		ReflectionCount: result.ReflectionCount,
		ResponseTimeMs:  elapsed.Milliseconds(),
	}, nil
}

func (s *assistantService) ClearSession(sessionID string) {
	s.sessions.Clear(sessionID)
	s.logger.Info("AssistantService", "Session cleared", map[string]interface{}{
		"session_id": sessionID,
	})
}

func (s *assistantService) AddFeedback(ctx context.Context, request *dto.FeedbackRequest) error {
	sources, err := chatlog.SourcesJSON(request.Sources)
	if err != nil {
		return err
	}

	fb := &chatlog.Feedback{
		SessionId: request.SessionId,
		Question:  request.Question,
		Answer:    request.Answer,
		Route:     request.Route,
		Sources:   sources,
		Rating:    request.Rating,
		IssueType: request.IssueType,
		Comment:   request.Comment,
		UserEmail: request.UserEmail,
	}

	if err := s.chatLog.AddFeedback(ctx, fb); err != nil {
		s.logger.Error("AssistantService", "Failed to store feedback", map[string]interface{}{
			"session_id": request.SessionId,
			"error":      err.Error(),
		})
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to store feedback")
	}
	return nil
}

func (s *assistantService) logTurn(sessionID, question string, result *pipeline.Result, elapsed time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sources, err := chatlog.SourcesJSON(result.Sources)
	if err != nil {
		return
	}

	entry := &chatlog.ChatHistory{
		SessionId:    sessionID,
		Question:     question,
		Answer:       result.Answer,
		Route:        string(result.Route),
		Sources:      sources,
		ResponseTime: elapsed.Seconds(),
	}
	if err := s.chatLog.LogChat(ctx, entry); err != nil {
		s.logger.Warn("AssistantService", "Failed to log chat", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func (s *assistantService) publishTurn(sessionID, question string, result *pipeline.Result, elapsed time.Duration) {
	if s.natsPub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := events.NewTurnCompleted(sessionID, question, result.Answer, string(result.Route), result.Sources, elapsed)
	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.logger.Warn("AssistantService", "Failed to publish turn event", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
