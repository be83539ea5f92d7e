package businessflow

import (
	"log"
	"regexp"
	"strings"

	"github.com/amirphl/Ame-no-Uzume/models"
)

// QualityMetrics is the result of scoring one piece of text against one
// persona. It is persisted only as a snapshot inside GeneratedContent.
type QualityMetrics struct {
	Overall          float64  `json:"overall"`
	Readability      float64  `json:"readability"`
	Engagement       float64  `json:"engagement"`
	BrandConsistency float64  `json:"brand_consistency"`
	Issues           []string `json:"issues,omitempty"`
	Suggestions      []string `json:"suggestions,omitempty"`
}

// Overall weights. Engagement is weighted highest because it is the
// primary product goal.
const (
	readabilityWeight = 0.3
	engagementWeight  = 0.4
	brandWeight       = 0.3
)

const qualityThreshold = 0.6

var (
	mentionPattern = regexp.MustCompile(`@\w+`)
	hashtagPattern = regexp.MustCompile(`#\w+`)
	wordPattern    = regexp.MustCompile(`[a-zA-Z']+`)
)

// ScoreQuality scores text against a persona. It is a pure function of
// its inputs and never fails: any internal panic degrades to a neutral
// all-0.5 result so scoring cannot sink a generation request.
func ScoreQuality(text string, persona *models.Persona) (metrics QualityMetrics) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("quality scoring panic recovered: %v", r)
			metrics = neutralMetrics()
		}
	}()

	readability := readabilityScore(text)
	engagement := engagementScore(text)
	brand := brandConsistencyScore(text, persona)

	metrics = QualityMetrics{
		Readability:      readability,
		Engagement:       engagement,
		BrandConsistency: brand,
		Overall:          readabilityWeight*readability + engagementWeight*engagement + brandWeight*brand,
	}

	if readability < qualityThreshold {
		metrics.Issues = append(metrics.Issues, "text may be hard to read")
		metrics.Suggestions = append(metrics.Suggestions, "use shorter sentences and simpler words")
	}
	if engagement < qualityThreshold {
		metrics.Issues = append(metrics.Issues, "text lacks engagement signals")
		metrics.Suggestions = append(metrics.Suggestions, "add a question, a call to action, or a hashtag")
	}
	if brand < qualityThreshold {
		metrics.Issues = append(metrics.Issues, "text drifts from the persona's themes and tone")
		metrics.Suggestions = append(metrics.Suggestions, "mention the persona's theme keywords and match its tone")
	}

	return metrics
}

func neutralMetrics() QualityMetrics {
	return QualityMetrics{
		Overall:          0.5,
		Readability:      0.5,
		Engagement:       0.5,
		BrandConsistency: 0.5,
		Issues:           []string{"scoring was unavailable for this text"},
		Suggestions:      []string{"review the text manually"},
	}
}

// readabilityScore normalizes a Flesch-style reading ease formula to
// [0,1]. Degenerate input (no sentences or words) yields a neutral 0.5
// instead of dividing by zero.
func readabilityScore(text string) float64 {
	sentences := countSentences(text)
	words := wordPattern.FindAllString(text, -1)
	if sentences == 0 || len(words) == 0 {
		return 0.5
	}

	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))
	ease := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord

	return clamp01(ease / 100.0)
}

func countSentences(text string) int {
	count := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	if count == 0 && strings.TrimSpace(text) != "" {
		// A fragment with no terminal punctuation still reads as one sentence
		count = 1
	}
	return count
}

// countSyllables approximates syllables by counting vowel groups, with
// a trailing silent-e adjustment. Every word counts at least one.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// Engagement tuning knobs
const (
	engagementBase      = 0.5
	signalIncrement     = 0.08
	lengthBandIncrement = 0.1
	lengthBandMin       = 70
	lengthBandMax       = 200
)

// engagementScore detects a fixed set of engagement signals
func engagementScore(text string) float64 {
	lower := strings.ToLower(text)
	score := engagementBase

	if strings.ContainsAny(text, "!?") {
		score += signalIncrement
	}
	if strings.Contains(lower, "you") || strings.Contains(lower, "your") {
		score += signalIncrement
	}
	if containsAnyWord(lower, emotionWords) {
		score += signalIncrement
	}
	if containsAnyWord(lower, urgencyWords) {
		score += signalIncrement
	}
	if mentionPattern.MatchString(text) {
		score += signalIncrement
	}
	if hashtagPattern.MatchString(text) {
		score += signalIncrement
	}

	if length := len(text); length >= lengthBandMin && length <= lengthBandMax {
		score += lengthBandIncrement
	}

	return clamp01(score)
}

// Brand consistency tuning knobs
const (
	brandBase        = 0.5
	themeBonusCap    = 0.3
	toneWordBonus    = 0.05
	toneWordBonusCap = 0.2
)

// brandConsistencyScore rewards theme keyword coverage and tone-register matches
func brandConsistencyScore(text string, persona *models.Persona) float64 {
	lower := strings.ToLower(text)
	score := brandBase

	if len(persona.ThemeKeywords) > 0 {
		matched := 0
		for _, keyword := range persona.ThemeKeywords {
			if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
				matched++
			}
		}
		score += themeBonusCap * float64(matched) / float64(len(persona.ThemeKeywords))
	}

	toneBonus := 0.0
	for _, word := range toneLexicons[persona.Tone] {
		if strings.Contains(lower, word) {
			toneBonus += toneWordBonus
		}
	}
	if toneBonus > toneWordBonusCap {
		toneBonus = toneWordBonusCap
	}

	return clamp01(score + toneBonus)
}

func containsAnyWord(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
