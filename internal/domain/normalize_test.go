package domain

import "testing"

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  France  ", "france"},
		{"lowercases", "JAPAN", "japan"},
		{"compresses inner spaces", "new   zealand", "new zealand"},
		{"keeps diacritics", "Côte d'Ivoire", "côte d'ivoire"},
		{"keeps hyphens", "Guinea-Bissau", "guinea-bissau"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAnswer(tt.in); got != tt.want {
				t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFirstNameSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Taiwan, Province of China", "taiwan"},
		{"Bolivia, Plurinational State of", "bolivia"},
		{"France", "france"},
		{"Korea, Republic of", "korea"},
	}

	for _, tt := range tests {
		if got := FirstNameSegment(tt.in); got != tt.want {
			t.Errorf("FirstNameSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountry_AcceptedAnswers(t *testing.T) {
	c := &Country{
		Name:    "Netherlands",
		Aliases: []string{"Holland", "The Netherlands"},
	}

	got := c.AcceptedAnswers()
	want := []string{"netherlands", "holland", "the netherlands"}

	if len(got) != len(want) {
		t.Fatalf("got %d answers, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("answer[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
