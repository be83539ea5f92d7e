package businessflow

import (
	"strings"
	"testing"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neutralPersona() *models.Persona {
	return &models.Persona{Tone: models.ToneProfessional}
}

func TestScoreQuality_AllDimensionsInUnitRange(t *testing.T) {
	texts := []string{
		"",
		"x",
		"Hey, you gonna love this! New single out now #music @fans",
		strings.Repeat("supercalifragilisticexpialidocious ", 40),
		"A. B. C. D. E.",
	}
	persona := &models.Persona{
		Tone:          models.ToneCasual,
		ThemeKeywords: pq.StringArray{"music", "tour"},
	}

	for _, text := range texts {
		m := ScoreQuality(text, persona)
		for name, v := range map[string]float64{
			"overall":           m.Overall,
			"readability":       m.Readability,
			"engagement":        m.Engagement,
			"brand_consistency": m.BrandConsistency,
		} {
			assert.GreaterOrEqual(t, v, 0.0, "%s for %q", name, text)
			assert.LessOrEqual(t, v, 1.0, "%s for %q", name, text)
		}
	}
}

func TestScoreQuality_IsDeterministic(t *testing.T) {
	persona := &models.Persona{
		Tone:          models.ToneFriendly,
		ThemeKeywords: pq.StringArray{"jazz"},
	}
	text := "Thanks for an unforgettable night! New jazz set drops today."

	first := ScoreQuality(text, persona)
	second := ScoreQuality(text, persona)

	assert.Equal(t, first, second)
}

func TestScoreQuality_OverallIsWeightedSum(t *testing.T) {
	m := ScoreQuality("Short and sweet. You will love it!", neutralPersona())

	want := 0.3*m.Readability + 0.4*m.Engagement + 0.3*m.BrandConsistency
	assert.InDelta(t, want, m.Overall, 1e-9)
}

func TestReadabilityScore_DegenerateTextIsNeutral(t *testing.T) {
	assert.Equal(t, 0.5, readabilityScore(""))
	assert.Equal(t, 0.5, readabilityScore("!!! ??? ..."))
	assert.Equal(t, 0.5, readabilityScore("12345 678"))
}

func TestReadabilityScore_SimpleBeatsDense(t *testing.T) {
	simple := readabilityScore("The cat sat. The dog ran. We had fun.")
	dense := readabilityScore("Notwithstanding considerable organizational circumstances, the multifaceted deliberations necessitated comprehensive reevaluation of institutional methodologies.")

	assert.Greater(t, simple, dense)
}

func TestCountSentences(t *testing.T) {
	assert.Equal(t, 3, countSentences("One. Two! Three?"))
	assert.Equal(t, 1, countSentences("a fragment with no punctuation"))
	assert.Equal(t, 0, countSentences("   "))
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"cat":       1,
		"music":     2,
		"amazing":   3,
		"love":      1, // silent e
		"table":     2, // -le keeps its syllable
		"rhythm":    1,
		"beautiful": 3,
	}
	for word, want := range cases {
		assert.Equal(t, want, countSyllables(word), word)
	}
}

func TestEngagementScore_SignalsStack(t *testing.T) {
	flat := engagementScore("The band released a recording.")
	loaded := engagementScore("You won't believe it! Our amazing new single just dropped tonight @fans #nowplaying")

	assert.Greater(t, loaded, flat)
	assert.InDelta(t, 0.5, flat, 1e-9)
}

func TestEngagementScore_LengthBand(t *testing.T) {
	inside := strings.Repeat("w ", 50) // 100 chars, no other signals
	outside := "ww"

	assert.InDelta(t, 0.6, engagementScore(inside), 1e-9)
	assert.InDelta(t, 0.5, engagementScore(outside), 1e-9)
}

func TestBrandConsistencyScore_ThemeCoverage(t *testing.T) {
	persona := &models.Persona{
		Tone:          models.ToneMysterious,
		ThemeKeywords: pq.StringArray{"tour", "vinyl"},
	}

	none := brandConsistencyScore("generic words", persona)
	half := brandConsistencyScore("the tour starts", persona)
	full := brandConsistencyScore("tour vinyl bundle", persona)

	assert.InDelta(t, 0.5, none, 1e-9)
	assert.InDelta(t, 0.65, half, 1e-9)
	assert.InDelta(t, 0.8, full, 1e-9)
}

func TestBrandConsistencyScore_ToneBonusCapped(t *testing.T) {
	persona := &models.Persona{Tone: models.ToneEdgy}
	stuffed := strings.Join(toneLexicons[models.ToneEdgy], " ")

	assert.InDelta(t, 0.7, brandConsistencyScore(stuffed, persona), 1e-9)
}

func TestScoreQuality_ThresholdIssues(t *testing.T) {
	// No signals, no themes: engagement and brand both land on 0.5
	m := ScoreQuality("A plain statement about a recording.", neutralPersona())

	require.NotEmpty(t, m.Issues)
	assert.Contains(t, m.Issues, "text lacks engagement signals")
	assert.Contains(t, m.Issues, "text drifts from the persona's themes and tone")
	assert.Len(t, m.Suggestions, len(m.Issues))
}

func TestNeutralMetrics(t *testing.T) {
	m := neutralMetrics()
	assert.Equal(t, 0.5, m.Overall)
	assert.Equal(t, 0.5, m.Readability)
	assert.NotEmpty(t, m.Issues)
}
