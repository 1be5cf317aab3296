package sentence

import (
	"strings"
	"testing"
)

func TestExtractTextBlockPunctuation(t *testing.T) {
	opts := Options{ExcludeClass: "wp-tts-player", BlockPunctuation: true}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings become sentences",
			input:    "<h2>Intro</h2><p>First paragraph.</p><p>Second</p>",
			expected: "Intro. First paragraph. Second.",
		},
		{
			name:     "line breaks",
			input:    "<p>Line one<br>Line two</p>",
			expected: "Line one. Line two.",
		},
		{
			name:     "list items",
			input:    "<ul><li>Apples</li><li>Pears!</li></ul>",
			expected: "Apples. Pears!.",
		},
		{
			name:     "entities decoded",
			input:    "<p>Fish &amp; chips &mdash; tasty&hellip;</p>",
			expected: "Fish & chips — tasty….",
		},
		{
			name:     "player and scripts dropped",
			input:    `<div class="wp-tts-player wide"><button>Listen</button></div><script>var x = 1;</script><style>p{}</style><p>Body.</p>`,
			expected: "Body.",
		},
		{
			name:     "dot runs collapse",
			input:    "<p>Wait...</p>",
			expected: "Wait.",
		},
		{
			name:     "implicitly closed paragraphs end sentences",
			input:    "<p>One<p>Two",
			expected: "One. Two.",
		},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText(tt.input, opts)
			if err != nil {
				t.Fatalf("ExtractText failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ExtractText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractTextInline(t *testing.T) {
	input := `<article><h1>Title</h1><div class="wpspeech-player">Listen</div>` +
		`<p>Hello <em>there</em>.   How are you?</p><p>Bye</p></article>`

	got, err := ExtractText(input, Options{ExcludeClass: "wpspeech-player"})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	want := "Title\nHello there. How are you?\nBye"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	sentences := Split(got)
	if len(sentences) != 3 || sentences[0] != "Title Hello there." {
		t.Errorf("unexpected sentences %q", sentences)
	}
}

func TestExtractTextKeepsOtherClasses(t *testing.T) {
	got, err := ExtractText(`<div class="wp-tts-player-note">Kept.</div>`, Options{ExcludeClass: "wp-tts-player"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Kept." {
		t.Errorf("got %q", got)
	}
}

func TestExtractTextContentRegion(t *testing.T) {
	page := `<html><head><title>Site</title></head><body>` +
		`<nav>Home About Contact</nav>` +
		`<div class="entry-content"><p>Hello there.</p><aside>Side note</aside><p>Bye.</p></div>` +
		`<footer>Copyright 2024 Site</footer></body></html>`

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"entry content", page, "Hello there.\nSide note\nBye."},
		{
			"single post body wins over entry content",
			`<div class="entry-content">Outer.<div class="single-post-body">Inner.</div></div>`,
			"Inner.",
		},
		{
			"post content before article",
			`<article>Article.</article><div class="post-content">Post.</div>`,
			"Post.",
		},
		{"article", `<header>Menu</header><article><p>Story.</p></article>`, "Story."},
		{
			"whole document without a region",
			`<nav>Home About</nav><main><p>Body.</p></main><address>Street 1</address>`,
			"Home About\nBody.\nStreet 1",
		},
		{"definition lists", `<dl><dt>Term</dt><dd>Meaning</dd></dl>`, "Term\nMeaning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText(tt.input, Options{Content: ContentSelectors})
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.expected {
				t.Errorf("ExtractText() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFromMarkdown(t *testing.T) {
	src := []byte("# Heading\n\nSome *emphasis* here.\n\n- one\n- two\n\n```\ncode block\n```\n")

	got, err := FromMarkdown(src, Options{BlockPunctuation: true})
	if err != nil {
		t.Fatalf("FromMarkdown failed: %v", err)
	}
	for _, want := range []string{"Heading.", "Some emphasis here.", "one.", "two."} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
	if strings.Contains(got, "*") || strings.Contains(got, "#") {
		t.Errorf("markdown syntax leaked into %q", got)
	}
}

func TestMarkdownTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"atx heading", "Intro text\n\n## The *Real* Title\n\nBody", "The Real Title"},
		{"setext heading", "Title Here\n==========\n\nBody", "Title Here"},
		{"no heading", "Just a paragraph.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarkdownTitle([]byte(tt.input)); got != tt.want {
				t.Errorf("MarkdownTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
