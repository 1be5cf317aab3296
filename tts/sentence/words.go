package sentence

import (
	"math"
	"strings"
)

// WordsPerMinute is the reading speed used for duration estimates at rate 1.
const WordsPerMinute = 150

// CountWords counts words the way PHP's str_word_count does in the C
// locale: a word is a run of ASCII letters, apostrophes and hyphens that
// starts with a letter. Any other byte, including every byte of a multibyte
// character, separates words.
func CountWords(text string) int {
	count := 0
	inWord := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			if !inWord {
				count++
			}
			inWord = true
		case (c == '\'' || c == '-') && inWord:
		default:
			inWord = false
		}
	}
	return count
}

// EstimateDuration returns the spoken length of text in whole seconds at the
// given rate. A non-positive rate is treated as 1.
func EstimateDuration(text string, rate float64) int {
	wpm := float64(WordsPerMinute) * rate
	if rate <= 0 {
		wpm = WordsPerMinute
	}
	return int(math.Round(float64(CountWords(text)) / wpm * 60))
}

// TrimWords returns the first n words of text. When text is longer, more is
// appended.
func TrimWords(text string, n int, more string) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + more
}
