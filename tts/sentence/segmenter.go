// Package sentence turns article content into the ordered sentence sequence
// the playback controller reads from.
package sentence

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split breaks text into sentences. Whitespace runs (Unicode White_Space
// plus U+FEFF) collapse to a single space, a boundary is a '.', '!' or '?'
// followed by whitespace, and the punctuation stays with the sentence it
// ends. Empty pieces are dropped.
//
// There is no abbreviation handling: "Dr. Smith" yields two sentences.
func Split(text string) []string {
	words := strings.FieldsFunc(text, isSpace)
	if len(words) == 0 {
		return nil
	}

	var (
		sentences []string
		start     int
	)
	for i, w := range words {
		if i == len(words)-1 || !endsSentence(w) {
			continue
		}
		sentences = append(sentences, strings.Join(words[start:i+1], " "))
		start = i + 1
	}
	if start < len(words) {
		sentences = append(sentences, strings.Join(words[start:], " "))
	}
	return sentences
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

func endsSentence(word string) bool {
	r, _ := utf8.DecodeLastRuneInString(word)
	return r == '.' || r == '!' || r == '?'
}
