package pinyin

import "testing"

func TestCompareToneEquivalence(t *testing.T) {
	c := New()

	tests := []struct {
		user    string
		correct string
		want    bool
	}{
		{"ni3", "nǐ", true},
		{"ni4", "nǐ", false},
		{"nǐ", "nǐ", true},
		{"ni3", "ni3", true},
		{"NI3", "nǐ", true},
		{"hao3", "hǎo", true},
		{"hao4", "hǎo", false},
		{"ma1", "mā", true},
		{"ma2", "má", true},
		{"ma3", "mǎ", true},
		{"ma4", "mà", true},
		{"ni3hao3", "nǐhǎo", true},
		{"ni3 hao3", "nǐ hǎo", true},
		{"zhong1wen2", "zhōngwén", true},
		{"zhong1wen3", "zhōngwén", false},
		{"nv3", "nǚ", true},
		{"nu:3", "nǚ", true},
		{"lü4", "lǜ", true},
		{"ma", "ma5", true}, // neutral tone, both spellings
		{"ma", "ma0", true},
		{"", "nǐ", false},
		{"", "", false}, // empty answers never match
	}

	for _, tt := range tests {
		if got := c.Compare(tt.user, tt.correct); got != tt.want {
			t.Errorf("Compare(%q, %q) = %v, want %v", tt.user, tt.correct, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"nǐ", "ni3"},
		{"hǎo", "hao3"},
		{"nǐ hǎo", "ni3 hao3"},
		{"Nǐ'hǎo", "ni3 hao3"},
		{"xiè-xiè", "xie4 xie4"},
		{"nǚ", "nv3"},
		{"lu:4", "lv4"},
		{"ma", "ma"},
		{"  nǐ  ", "ni3"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
