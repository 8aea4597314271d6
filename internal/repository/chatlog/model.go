package chatlog

import (
	"time"

	"gorm.io/datatypes"
)

// ChatHistory is one answered turn, logged for analytics.
type ChatHistory struct {
	Id           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionId    string         `gorm:"index;not null" json:"session_id"`
	Question     string         `gorm:"not null" json:"question"`
	Answer       string         `gorm:"not null" json:"answer"`
	Route        string         `json:"route"`
	Sources      datatypes.JSON `json:"sources,omitempty"`
	ResponseTime float64        `json:"response_time"` // seconds
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (ChatHistory) TableName() string {
	return "chat_history"
}

// Feedback is a user rating for a specific answer.
type Feedback struct {
	Id        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionId string         `gorm:"index;not null" json:"session_id"`
	Question  string         `gorm:"not null" json:"question"`
	Answer    string         `gorm:"not null" json:"answer"`
	Route     string         `json:"route"`
	Sources   datatypes.JSON `json:"sources,omitempty"`
	Rating    string         `gorm:"not null" json:"rating"` // "positive" | "negative"
	IssueType string         `json:"issue_type,omitempty"`
	Comment   string         `json:"comment,omitempty"`
	UserEmail string         `json:"user_email,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Feedback) TableName() string {
	return "feedback"
}
