package http

// AnalyzeTextRequest carries the text to score plus optional per-request
// credential overrides (lowest precedence, after environment and secrets).
type AnalyzeTextRequest struct {
	Text              string `json:"text"`
	Rephrase          *bool  `json:"rephrase,omitempty"`
	PerspectiveAPIKey string `json:"perspective_api_key,omitempty"`
	HuggingFaceToken  string `json:"huggingface_token,omitempty"`
}

type RephraseTextRequest struct {
	Text             string `json:"text"`
	HuggingFaceToken string `json:"huggingface_token,omitempty"`
}
