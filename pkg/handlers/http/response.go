package http

import "github.com/ToneGuard/ToneGuard/pkg/domain/analysis"

type ErrorDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type AnalyzeTextResponse struct {
	ID            string                     `json:"id"`
	Moderation    *analysis.ModerationResult `json:"moderation"`
	Rephrase      *analysis.RephraseResult   `json:"rephrase,omitempty"`
	RephraseError *ErrorDTO                  `json:"rephrase_error,omitempty"`
	Insight       string                     `json:"insight"`
}

type RephraseTextResponse struct {
	ID       string                   `json:"id"`
	Rephrase *analysis.RephraseResult `json:"rephrase"`
}
