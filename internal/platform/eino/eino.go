package eino

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	gemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"
)

// Config selects the chat model provider.
type Config struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	// Timeout bounds a single Generate call; zero means no ceiling.
	Timeout time.Duration `json:"timeout"`
}

// Service is a thin wrapper over an Eino chat model. A Service without a
// model reports Enabled() == false and every call returns ErrDisabled.
type Service struct {
	config    Config
	chatModel model.BaseChatModel
}

// ErrDisabled means no credential was configured.
var ErrDisabled = fmt.Errorf("language model not configured")

// NewService builds the provider model. An empty API key yields a disabled service.
func NewService(ctx context.Context, config Config) (*Service, error) {
	s := &Service{config: config}
	if config.APIKey == "" {
		return s, nil
	}
	switch strings.ToLower(config.Provider) {
	case "", "gemini":
		m, err := newGeminiModel(ctx, config)
		if err != nil {
			return nil, err
		}
		s.chatModel = m
	default:
		return nil, fmt.Errorf("unsupported provider: %s. Supported: gemini", config.Provider)
	}
	return s, nil
}

// NewServiceWithModel wraps a pre-built model, typically a fake in tests.
func NewServiceWithModel(config Config, chatModel model.BaseChatModel) *Service {
	return &Service{config: config, chatModel: chatModel}
}

func newGeminiModel(ctx context.Context, config Config) (model.BaseChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  config.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini chat model: %w", err)
	}
	return m, nil
}

func (s *Service) Enabled() bool { return s != nil && s.chatModel != nil }

func (s *Service) ModelName() string { return s.config.Model }

// Generate sends one conversation and returns the reply text. Each call is
// independent; no history is kept between calls.
func (s *Service) Generate(ctx context.Context, messages []*schema.Message) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	resp, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM generation failed: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("LLM returned no message")
	}
	return resp.Content, nil
}
