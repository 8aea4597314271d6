package memory

import "testing"

func TestKeywordTopicExtractor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "program name",
			text: "festup ne zaman yapılacak",
			want: "FESTUP",
		},
		{
			name: "priority over generic terms",
			text: "kulüp etkinliği olan DigitalMAG hakkında",
			want: "DigitalMAG",
		},
		{
			name: "membership alias",
			text: "üye olmak istiyorum",
			want: "üyelik",
		},
		{
			name: "board maps to yonetim",
			text: "yönetim kurulu kimlerden oluşuyor",
			want: "yönetim",
		},
		{
			name: "generic event term",
			text: "yaklaşan etkinlik var mı",
			want: "etkinlik",
		},
		{
			name: "no topic",
			text: "bugün hava çok güzel",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeywordTopicExtractor(tt.text); got != tt.want {
				t.Errorf("KeywordTopicExtractor(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
