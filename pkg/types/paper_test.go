// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"lowercases", "Attention Is All You Need", "attention is all you need"},
		{"collapses whitespace", "  Attention\t Is\nAll  You Need ", "attention is all you need"},
		{"empty", "", ""},
		{"whitespace only", "   \t\n", ""},
		{"punctuation kept", "BERT: Pre-training of Deep Bidirectional Transformers", "bert: pre-training of deep bidirectional transformers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.in); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedupKeyStableAcrossFormatting(t *testing.T) {
	a := Paper{Title: "Scaling  Laws for\nNeural Language Models"}
	b := Paper{Title: "scaling laws for neural language models"}
	if a.DedupKey() != b.DedupKey() {
		t.Errorf("keys differ: %q vs %q", a.DedupKey(), b.DedupKey())
	}
}

func TestHasPDF(t *testing.T) {
	if (Paper{}).HasPDF() {
		t.Error("paper without a link reports HasPDF")
	}
	if !(Paper{PDFURL: "https://arxiv.org/pdf/2401.1"}).HasPDF() {
		t.Error("paper with a link does not report HasPDF")
	}
}
