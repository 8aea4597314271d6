package dto

type ChatRequest struct {
	SessionId string `json:"session_id"` // generated server-side when empty
	Question  string `json:"question" validate:"required"`
}

type ChatResponse struct {
	SessionId       string   `json:"session_id"`
	Answer          string   `json:"answer"`
	Route           string   `json:"route"`
	Sources         []string `json:"sources"`
	ReflectionCount int      `json:"reflection_count"`
	ResponseTimeMs  int64    `json:"response_time_ms"`
}

type FeedbackRequest struct {
	SessionId string   `json:"session_id" validate:"required"`
	Question  string   `json:"question" validate:"required"`
	Answer    string   `json:"answer" validate:"required"`
	Rating    string   `json:"rating" validate:"required,oneof=positive negative"`
	Route     string   `json:"route,omitempty"`
	Sources   []string `json:"sources,omitempty"`
	IssueType string   `json:"issue_type,omitempty"`
	Comment   string   `json:"comment,omitempty"`
	UserEmail string   `json:"user_email,omitempty" validate:"omitempty,email"`
}

type IngestDocumentRequest struct {
	Source string `json:"source" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

// IngestDocumentMessage is the watermill payload published per document.
type IngestDocumentMessage struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}
