package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fridgewise/backend/config"
)

// LLMService handles interactions with the AI gateway
type LLMService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewLLMService creates a new LLMService instance
func NewLLMService(cfg *config.Config) (*LLMService, error) {
	if cfg.AIAPIKey == "" {
		return nil, fmt.Errorf("AI API key is not configured")
	}

	return &LLMService{
		apiKey: cfg.AIAPIKey,
		apiURL: cfg.AIAPIURL,
		model:  cfg.AIModel,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat completion request to the AI gateway
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

const generateSystemPrompt = `You are a creative chef AI that generates delicious recipes.
Generate 3 unique recipes that use the available ingredients, prioritizing those that are expiring soon.
Each recipe should be practical, delicious, and make good use of the ingredients.`

const generateUserPromptFormat = `Available ingredients: %s

Ingredients expiring soon: %s

Please generate 3 diverse recipes. For each recipe, provide:
1. A catchy title
2. A brief description (1-2 sentences)
3. List of ingredients needed (from the available ingredients)
4. Preparation time (e.g., "30 min")
5. Difficulty level (Easy, Medium, or Hard)

Format your response as valid JSON array with this structure:
[
  {
    "title": "Recipe Name",
    "description": "Brief description",
    "ingredients": ["ingredient1", "ingredient2"],
    "prep_time": "30 min",
    "difficulty": "Easy"
  }
]`

// GenerateRecipes asks the model for recipe suggestions given the full
// inventory and the expiring-soon prefix, and returns the raw completion text.
func (s *LLMService) GenerateRecipes(available, expiring []string) (string, error) {
	messages := []Message{
		{
			Role:    "system",
			Content: generateSystemPrompt,
		},
		{
			Role:    "user",
			Content: fmt.Sprintf(generateUserPromptFormat, strings.Join(available, ", "), strings.Join(expiring, ", ")),
		},
	}

	reqBody := Request{
		Model:    s.model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[LLMService] API request failed with status %d: %s", resp.StatusCode, string(body))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", ErrRateLimited
		case http.StatusPaymentRequired:
			return "", ErrQuotaExhausted
		}
		return "", fmt.Errorf("%w: status %d", ErrModelInvocation, resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", ErrEmptyModelResponse
	}

	return result.Choices[0].Message.Content, nil
}
