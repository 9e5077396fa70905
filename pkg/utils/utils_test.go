package utils

import "testing"

func TestStringHelper_Fold(t *testing.T) {
	s := NewStringHelper()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii", "Prefer not to say", "Prefer not to say"},
		{"mojibake quote", "Bachelorâ€™s degree", "Bachelor's degree"},
		{"curly quote", "Master’s degree", "Master's degree"},
		{"whitespace", "  I  don't\tknow ", "I don't know"},
		{"control runes", "Wo\x00man", "Woman"},
		{"nfkc", "ｆｕｌｌ width", "full width"},
		{"latin1 kept", "café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Fold(tt.in); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairMojibake(t *testing.T) {
	if got := RepairMojibake("donâ€™t"); got != "don’t" {
		t.Errorf("RepairMojibake() = %q", got)
	}

	if got := RepairMojibake("東京"); got != "東京" {
		t.Errorf("RepairMojibake() changed text outside Windows-1252: %q", got)
	}
}

func TestStringHelper_TruncateString(t *testing.T) {
	s := NewStringHelper()

	if got := s.TruncateString("abcdef", 3); got != "abc..." {
		t.Errorf("TruncateString() = %q", got)
	}

	if got := s.TruncateString("abc", 3); got != "abc" {
		t.Errorf("TruncateString() = %q", got)
	}

	if got := s.TruncateString("Côte d'Ivoire", 4); got != "Côte..." {
		t.Errorf("TruncateString() split a rune: %q", got)
	}

	if got := s.TruncateString("abcdef", 0); got != "abcdef" {
		t.Errorf("TruncateString() with no limit = %q", got)
	}
}

func TestHTTPHelper_IsValidURL(t *testing.T) {
	h := NewHTTPHelper()

	tests := map[string]bool{
		"https://www.ziprecruiter.com/Salaries/x": true,
		"http://localhost:8080/y=2017/a.csv":      true,
		"ftp://example.com/file":                  false,
		"/relative/path":                          false,
		"https://":                                false,
	}

	for in, want := range tests {
		if got := h.IsValidURL(in); got != want {
			t.Errorf("IsValidURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHTTPHelper_BuildHeaders(t *testing.T) {
	h := NewHTTPHelper()

	headers := h.BuildHeaders(map[string]string{"Accept": "text/csv", "X-Run": "1"})

	if headers.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("User-Agent = %q", headers.Get("User-Agent"))
	}

	if headers.Get("Accept") != "text/csv" {
		t.Errorf("custom Accept not applied: %q", headers.Get("Accept"))
	}

	if headers.Get("X-Run") != "1" {
		t.Errorf("X-Run = %q", headers.Get("X-Run"))
	}
}
