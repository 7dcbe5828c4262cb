package seo

import (
	"strings"
	"unicode"
)

// fleschReadingEase computes the Flesch reading-ease score for plain text:
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words). Higher is
// easier; typical prose lands between 0 and 100, but the formula itself is
// unclamped. Returns 0 for text with no words.
func fleschReadingEase(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	sentences := 0
	for _, f := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(f) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordCount := float64(len(words))
	return 206.835 - 1.015*(wordCount/float64(sentences)) - 84.6*(float64(syllables)/wordCount)
}

// countSyllables estimates syllables as the number of vowel groups, with the
// usual silent-e adjustment. Every word counts as at least one syllable.
func countSyllables(word string) int {
	var letters []rune
	for _, r := range strings.ToLower(word) {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	// Silent trailing e: "make" has two vowel groups but one spoken syllable.
	if count > 1 && letters[len(letters)-1] == 'e' && !isVowel(letters[len(letters)-2]) {
		count--
	}

	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
