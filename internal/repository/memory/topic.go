package memory

import "strings"

// TopicExtractor derives a conversation topic from recent message text.
// Returning "" means no topic could be determined.
type TopicExtractor func(text string) string

// topicKeywords maps lowercase signals to the canonical topic. Order
// matters: more specific program names are checked before generic club
// terms.
var topicKeywords = []struct {
	keyword string
	topic   string
}{
	{"festup", "FESTUP"},
	{"social media talks", "Social Media Talks"},
	{"digitalmag", "DigitalMAG"},
	{"hugip akademi", "HUGİP Akademi"},
	{"üyelik", "üyelik"},
	{"üye ol", "üyelik"},
	{"yönetim kurulu", "yönetim"},
	{"kulüp", "kulüp"},
	{"etkinlik", "etkinlik"},
}

// KeywordTopicExtractor scans the text for known club program and
// organization keywords and returns the first hit by priority.
func KeywordTopicExtractor(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range topicKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.topic
		}
	}
	return ""
}
