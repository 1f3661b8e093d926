package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlainText(t *testing.T) {
	html := `<html><head><style>.x{}</style></head><body>
		<script>var a = 1;</script>
		<p>İlan tarihi:   15 Temmuz 2025</p>
		<p>İlan sahibi: Ali Özkan</p>
	</body></html>`

	got := PlainText(html)
	want := "İlan tarihi: 15 Temmuz 2025\nİlan sahibi: Ali Özkan"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertHTMLToMarkdownPrefersMain(t *testing.T) {
	html := `<body><nav>Menu</nav><main><h1>3+1 Daire</h1><p>Fiyat: 750.000 TL</p><img src="x.png"></main><footer>f</footer></body>`
	got := ConvertHTMLToMarkdown(html)
	if !strings.Contains(got, "3+1 Daire") || !strings.Contains(got, "750.000 TL") {
		t.Errorf("main content missing: %q", got)
	}
	if strings.Contains(got, "Menu") || strings.Contains(got, "x.png") {
		t.Errorf("boilerplate kept: %q", got)
	}
}

func TestPromptTextBounded(t *testing.T) {
	html := "<body><p>" + strings.Repeat("ş", 3000) + "</p></body>"
	got := PromptText(html, 2000)
	if n := utf8.RuneCountInString(got); n != 2000 {
		t.Errorf("rune count: got %d, want 2000", n)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Merkezi Isıtma", 10, "Merkezi Is"},
		{"kısa", 10, "kısa"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestTruncateBytesKeepsValidUTF8(t *testing.T) {
	s := strings.Repeat("ğ", 10) // 2 bytes each
	got := TruncateBytes(s, 5)
	if !utf8.ValidString(got) || len(got) != 4 {
		t.Errorf("got %q (%d bytes)", got, len(got))
	}
	if TruncateBytes("abc", 10) != "abc" {
		t.Error("short strings must pass through")
	}
}

func TestStripInvisible(t *testing.T) {
	if got := StripInvisible("a\u200Bb\x01c\uFEFF"); got != "abc" {
		t.Errorf("got %q", got)
	}
}
