package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and strips punctuation",
			text: "The cat sat. The CAT sat near a mat.",
			want: []string{"the", "cat", "sat", "the", "cat", "sat", "near", "a", "mat"},
		},
		{
			name: "keeps internal apostrophes and hyphens",
			text: "Don't split well-known words",
			want: []string{"don't", "split", "well-known", "words"},
		},
		{
			name: "trims edge apostrophes and hyphens",
			text: "'quoted' --flag- 'tis",
			want: []string{"quoted", "flag", "tis"},
		},
		{
			name: "keeps digits",
			text: "route 66 is 2,000 miles",
			want: []string{"route", "66", "is", "2000", "miles"},
		},
		{
			name: "drops words that normalize to nothing",
			text: "!!! ??? -- a",
			want: []string{"a"},
		},
		{
			name: "handles non-ascii letters",
			text: "Слово і ще Слово",
			want: []string{"слово", "і", "ще", "слово"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "whitespace only",
			text: " \t\n  ",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizeIsRestartable(t *testing.T) {
	text := "Repeated runs must yield identical token sequences, every time."
	first := Tokenize(text)
	for i := 0; i < 5; i++ {
		if got := Tokenize(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}
