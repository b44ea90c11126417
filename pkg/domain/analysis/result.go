package analysis

// ToxicityThreshold is the score above which content is judged toxic.
const ToxicityThreshold = 0.6

// ModerationResult is the successful outcome of a toxicity lookup.
// Failures are classified errors, never a zero-valued result.
type ModerationResult struct {
	Score   float64 `json:"score"`
	Percent float64 `json:"percent"`
	Toxic   bool    `json:"toxic"`
}

// NewModerationResult derives the verdict from a raw score in [0,1]
// using the default threshold.
func NewModerationResult(score float64) *ModerationResult {
	return NewModerationResultWithThreshold(score, ToxicityThreshold)
}

// NewModerationResultWithThreshold derives the verdict against a
// caller-provided threshold. A score exactly at the threshold is not toxic.
func NewModerationResultWithThreshold(score, threshold float64) *ModerationResult {
	return &ModerationResult{
		Score:   score,
		Percent: score * 100,
		Toxic:   score > threshold,
	}
}

// RephraseResult is the successful outcome of a rephrase call.
type RephraseResult struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Usage    Usage  `json:"usage,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}
