package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Roles for conversation entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is a single conversation message inside a session.
type Entry struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// conversation is the stored value per session. Entries is treated as
// immutable: Append copies before modifying, so concurrent readers that
// obtained the slice earlier are never affected.
type conversation struct {
	ID      string
	Entries []Entry
}

// ConversationRepository is an in-memory, process-lifetime conversation
// store. Sessions are created lazily on first append, bounded to
// maxEntries messages (oldest evicted first) and expire after an hour of
// inactivity.
type ConversationRepository struct {
	mu         sync.Mutex // serializes read-modify-write appends
	cache      *cache.Cache
	maxEntries int
	extractor  TopicExtractor
}

func NewConversationRepository(maxEntries int, extractor TopicExtractor) *ConversationRepository {
	if maxEntries <= 0 {
		maxEntries = 10
	}
	if extractor == nil {
		extractor = KeywordTopicExtractor
	}
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache:      c,
		maxEntries: maxEntries,
		extractor:  extractor,
	}
}

// Append adds an entry to the session, creating the session when it does
// not exist. A consecutive duplicate (same role and content as the last
// entry) is dropped. When the bound is exceeded the oldest entries are
// evicted.
func (r *ConversationRepository) Append(sessionID, role, content string, metadata map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv := r.get(sessionID)
	if conv == nil {
		conv = &conversation{ID: sessionID}
	}

	if n := len(conv.Entries); n > 0 {
		last := conv.Entries[n-1]
		if last.Role == role && last.Content == content {
			return
		}
	}

	entries := make([]Entry, 0, len(conv.Entries)+1)
	entries = append(entries, conv.Entries...)
	entries = append(entries, Entry{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	})

	if len(entries) > r.maxEntries {
		entries = entries[len(entries)-r.maxEntries:]
	}

	r.cache.Set(sessionID, &conversation{ID: sessionID, Entries: entries}, cache.DefaultExpiration)
}

// History returns the last n entries of the session (all when n <= 0).
func (r *ConversationRepository) History(sessionID string, n int) []Entry {
	conv := r.get(sessionID)
	if conv == nil {
		return nil
	}
	entries := conv.Entries
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries
}

// Transcript formats the last n entries as a prompt-ready dialogue.
// Entries are truncated so one long answer cannot crowd out the rest of
// the context window.
func (r *ConversationRepository) Transcript(sessionID string, n int) string {
	entries := r.History(sessionID, n)
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		label := "Kullanıcı"
		if e.Role == RoleAssistant {
			label = "Asistan"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(truncateRunes(e.Content, 150))
	}
	return b.String()
}

// Topic derives the current conversation topic from the recent history
// using the configured extractor. Empty string means no topic emerged.
func (r *ConversationRepository) Topic(sessionID string) string {
	entries := r.History(sessionID, 6)
	if len(entries) == 0 {
		return ""
	}
	contents := make([]string, len(entries))
	for i, e := range entries {
		contents[i] = e.Content
	}
	return r.extractor(strings.Join(contents, " "))
}

// Clear removes the session entirely.
func (r *ConversationRepository) Clear(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *ConversationRepository) get(sessionID string) *conversation {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*conversation)
	}
	return nil
}

func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
