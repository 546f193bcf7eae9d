package domain

import "time"

// BackendID names a registered text-generation backend.
type BackendID string

const (
	BackendOllama     BackendID = "ollama"
	BackendPerplexity BackendID = "perplexity"
)

type GenerationRequest struct {
	Model       string
	Prompt      string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

// GenerationTarget is the configured backend and options of one call site.
type GenerationTarget struct {
	Backend     BackendID
	Model       string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

func (t GenerationTarget) Request(prompt string) GenerationRequest {
	return GenerationRequest{
		Model:       t.Model,
		Prompt:      prompt,
		Temperature: t.Temperature,
		MaxTokens:   t.MaxTokens,
		Timeout:     t.Timeout,
	}
}

func Temperature(v float64) *float64 {
	return &v
}
