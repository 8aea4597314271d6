package events

import "time"

const TypeTurnCompleted = "turn.completed"

// NewTurnCompleted builds the event emitted after every answered turn.
func NewTurnCompleted(sessionID, question, answer, route string, sources []string, responseTime time.Duration) Event {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"session_id":       sessionID,
			"question":         question,
			"answer":           answer,
			"route":            route,
			"sources":          sources,
			"response_time_ms": responseTime.Milliseconds(),
		},
		OccurredAt: time.Now(),
	}
}
