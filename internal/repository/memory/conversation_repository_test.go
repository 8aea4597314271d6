package memory

import (
	"strings"
	"testing"
)

func TestAppendSuppressesConsecutiveDuplicates(t *testing.T) {
	repo := NewConversationRepository(10, nil)

	repo.Append("s1", RoleUser, "Merhaba", nil)
	repo.Append("s1", RoleUser, "Merhaba", nil)
	repo.Append("s1", RoleAssistant, "Merhaba", nil) // different role, kept

	entries := repo.History("s1", 0)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Role != RoleUser || entries[1].Role != RoleAssistant {
		t.Errorf("unexpected roles: %s, %s", entries[0].Role, entries[1].Role)
	}
}

func TestAppendEvictsOldestBeyondBound(t *testing.T) {
	repo := NewConversationRepository(3, nil)

	repo.Append("s1", RoleUser, "mesaj 1", nil)
	repo.Append("s1", RoleAssistant, "mesaj 2", nil)
	repo.Append("s1", RoleUser, "mesaj 3", nil)
	repo.Append("s1", RoleAssistant, "mesaj 4", nil)

	entries := repo.History("s1", 0)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries after eviction, got %d", len(entries))
	}
	if entries[0].Content != "mesaj 2" {
		t.Errorf("expected oldest entry evicted, got %q first", entries[0].Content)
	}
	if entries[2].Content != "mesaj 4" {
		t.Errorf("expected newest entry kept, got %q last", entries[2].Content)
	}
}

func TestHistoryReturnsLastN(t *testing.T) {
	repo := NewConversationRepository(10, nil)
	repo.Append("s1", RoleUser, "bir", nil)
	repo.Append("s1", RoleAssistant, "iki", nil)
	repo.Append("s1", RoleUser, "üç", nil)

	entries := repo.History("s1", 2)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Content != "iki" {
		t.Errorf("expected window to start at 'iki', got %q", entries[0].Content)
	}
}

func TestTranscriptFormat(t *testing.T) {
	repo := NewConversationRepository(10, nil)
	repo.Append("s1", RoleUser, "FESTUP ne zaman?", nil)
	repo.Append("s1", RoleAssistant, "FESTUP 4 Aralık'ta.", nil)

	got := repo.Transcript("s1", 6)
	want := "Kullanıcı: FESTUP ne zaman?\nAsistan: FESTUP 4 Aralık'ta."
	if got != want {
		t.Errorf("transcript mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestTranscriptTruncatesLongEntries(t *testing.T) {
	repo := NewConversationRepository(10, nil)
	long := strings.Repeat("a", 400)
	repo.Append("s1", RoleAssistant, long, nil)

	got := repo.Transcript("s1", 6)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated entry to end with ellipsis, got %q", got[len(got)-10:])
	}
	if len(got) > len("Asistan: ")+150+3 {
		t.Errorf("entry not truncated: len=%d", len(got))
	}
}

func TestTranscriptEmptySession(t *testing.T) {
	repo := NewConversationRepository(10, nil)
	if got := repo.Transcript("missing", 6); got != "" {
		t.Errorf("expected empty transcript, got %q", got)
	}
}

func TestClearRemovesSession(t *testing.T) {
	repo := NewConversationRepository(10, nil)
	repo.Append("s1", RoleUser, "Merhaba", nil)
	repo.Clear("s1")

	if entries := repo.History("s1", 0); len(entries) != 0 {
		t.Errorf("expected empty history after clear, got %d entries", len(entries))
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	repo := NewConversationRepository(10, nil)
	repo.Append("s1", RoleUser, "birinci oturum", nil)
	repo.Append("s2", RoleUser, "ikinci oturum", nil)

	if entries := repo.History("s1", 0); len(entries) != 1 || entries[0].Content != "birinci oturum" {
		t.Errorf("session s1 polluted: %+v", entries)
	}
}

func TestTopicFromHistory(t *testing.T) {
	repo := NewConversationRepository(10, nil)
	repo.Append("s1", RoleUser, "FESTUP hakkında bilgi verir misin?", nil)
	repo.Append("s1", RoleAssistant, "FESTUP startup festivalidir.", nil)

	if got := repo.Topic("s1"); got != "FESTUP" {
		t.Errorf("expected topic FESTUP, got %q", got)
	}
}

func TestTopicPluggableExtractor(t *testing.T) {
	custom := func(string) string { return "özel" }
	repo := NewConversationRepository(10, custom)
	repo.Append("s1", RoleUser, "herhangi bir şey", nil)

	if got := repo.Topic("s1"); got != "özel" {
		t.Errorf("expected custom extractor result, got %q", got)
	}
}
