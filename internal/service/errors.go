package service

import "errors"

// Failure kinds of the generation cycle. User-facing messages; handlers
// return them verbatim in the error body.
var (
	ErrNoIngredients      = errors.New("No ingredients found. Please add some ingredients first.")
	ErrRateLimited        = errors.New("Rate limit exceeded. Please try again in a moment.")
	ErrQuotaExhausted     = errors.New("AI credits exhausted. Please add credits to continue.")
	ErrModelInvocation    = errors.New("AI API error")
	ErrEmptyModelResponse = errors.New("No content in AI response")
	ErrResponseParse      = errors.New("Failed to parse AI response")
	ErrPersist            = errors.New("Failed to save recipes")
)
