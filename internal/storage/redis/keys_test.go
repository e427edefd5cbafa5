package redis

import "testing"

func TestKey(t *testing.T) {
	if got := Key(DefaultKeyPrefix, "notes"); got != "jot:notes" {
		t.Errorf("Key() = %q, want jot:notes", got)
	}
}

func TestExtractKey(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"prefixed key", "jot:categories", "categories", true},
		{"foreign key", "other:notes", "", false},
		{"bare prefix", "jot:", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractKey(DefaultKeyPrefix, tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ExtractKey(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
