package businessflow

import "github.com/amirphl/Ame-no-Uzume/models"

// toneLexicons maps each persona tone to register words. Template
// suggestion and brand-consistency scoring both look these words up in
// candidate text. The word lists are tuning knobs, not contracts.
var toneLexicons = map[string][]string{
	models.ToneCasual:       {"hey", "gonna", "vibe", "chill", "fun", "hang"},
	models.ToneProfessional: {"announce", "present", "official", "release", "pleased"},
	models.ToneEdgy:         {"raw", "loud", "wild", "rebel", "dark"},
	models.ToneFriendly:     {"love", "thanks", "together", "family", "welcome"},
	models.ToneMysterious:   {"secret", "soon", "hidden", "shadow", "whisper"},
}

// emotionWords are emotionally charged terms that raise engagement
var emotionWords = []string{
	"amazing", "incredible", "love", "excited", "unforgettable",
	"epic", "beautiful", "proud", "thrilled", "stunning",
}

// urgencyWords signal urgency or novelty
var urgencyWords = []string{
	"now", "today", "tonight", "new", "limited", "last chance",
	"don't miss", "just dropped", "finally",
}

// personaReusableFields are variable names a persona can fill without
// asking the artist for input. Templates using them rank higher in Suggest.
var personaReusableFields = map[string]bool{
	"artist_name": true,
	"genre":       true,
	"audience":    true,
	"tone":        true,
}
