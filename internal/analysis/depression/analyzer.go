package depression

import (
	"strings"
)

// Labels mirror the upstream classifier's vocabulary.
const (
	LabelDepressed    = "Depressed"
	LabelNotDepressed = "Not Depressed"
)

// Verdict is a heuristic stand-in for the trained model's output.
type Verdict struct {
	Label       string
	Probability float64
	Score       int
}

var depressiveKeywords = []string{
	"depressed", "depression", "hopeless", "worthless", "empty", "numb",
	"exhausted", "can't go on", "cant go on", "give up", "no point",
	"alone", "lonely", "miserable", "crying", "cry myself", "insomnia",
	"can't sleep", "cant sleep", "hate myself", "tired of everything",
	"nothing matters", "no energy", "burden", "dark thoughts",
}

var positiveKeywords = []string{
	"happy", "great", "grateful", "excited", "hopeful", "wonderful",
	"love", "amazing", "good day", "feeling better", "proud", "calm",
	"relaxed", "enjoyed", "fun", "optimistic",
}

// Analyze scores a text against keyword buckets and maps the score onto a
// label and probability. Used as the fallback when no model is reachable.
func Analyze(text string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Verdict{Label: LabelNotDepressed, Probability: 0.5}
	}

	score := 0
	for _, word := range depressiveKeywords {
		if strings.Contains(normalized, word) {
			score += 3
		}
	}
	for _, word := range positiveKeywords {
		if strings.Contains(normalized, word) {
			score -= 2
		}
	}

	if score <= 0 {
		probability := 0.6 + float64(-score)*0.04
		if probability > 0.95 {
			probability = 0.95
		}
		return Verdict{Label: LabelNotDepressed, Probability: probability, Score: score}
	}

	probability := 0.5 + float64(score)*0.05
	if probability > 0.95 {
		probability = 0.95
	}
	return Verdict{Label: LabelDepressed, Probability: probability, Score: score}
}
