package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/internal/model"
)

// NarrativeProvider 远端文本生成服务
type NarrativeProvider interface {
	Source() dto.NarrativeSource
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderFactory 根据提供方与密钥创建客户端
type ProviderFactory func(ctx context.Context, provider model.AIProvider, apiKey string) (NarrativeProvider, error)

// NewProviderFactory 默认工厂：gemini 走官方 genai SDK，groq 走 OpenAI 兼容接口
func NewProviderFactory(cfg *config.NarrativeConfig) ProviderFactory {
	return func(ctx context.Context, provider model.AIProvider, apiKey string) (NarrativeProvider, error) {
		switch provider {
		case model.AIProviderGroq:
			return newGroqProvider(cfg, apiKey), nil
		case model.AIProviderGemini:
			return newGeminiProvider(ctx, cfg, apiKey)
		default:
			return nil, fmt.Errorf("未知叙述生成提供方: %q", provider)
		}
	}
}

// ── Gemini ──

type geminiProvider struct {
	client *genai.Client
	model  string
}

func newGeminiProvider(ctx context.Context, cfg *config.NarrativeConfig, apiKey string) (NarrativeProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiBaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("初始化 Gemini 客户端失败: %w", err)
	}
	return &geminiProvider{client: client, model: cfg.GeminiModel}, nil
}

func (p *geminiProvider) Source() dto.NarrativeSource { return dto.SourceGemini }

func (p *geminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

// ── Groq（OpenAI 兼容） ──

type groqProvider struct {
	client *openai.Client
	model  string
}

func newGroqProvider(cfg *config.NarrativeConfig, apiKey string) NarrativeProvider {
	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = cfg.GroqBaseURL
	return &groqProvider{client: openai.NewClientWithConfig(oc), model: cfg.GroqModel}
}

func (p *groqProvider) Source() dto.NarrativeSource { return dto.SourceGroq }

func (p *groqProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("Groq Error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ── 错误分类 ──

const (
	adviceQuota   = "⚠️ KUOTA HABIS: Batas penggunaan AI harian tercapai. Silakan coba lagi besok atau gunakan Template Offline."
	adviceInvalid = "⚠️ API Key Salah/Tidak Valid. Periksa menu Pengaturan."
	adviceEmpty   = "Gagal menghasilkan deskripsi."
	adviceInit    = "Gagal inisialisasi AI."
)

// classifyNarrativeError 将生成错误归为 配额耗尽 / 凭据无效 / 其他，并给出提示文字
func classifyNarrativeError(err error) (dto.NarrativeFailure, string) {
	status := httpStatusOf(err)
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case status == http.StatusTooManyRequests ||
		strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return dto.FailureQuotaExhausted, adviceQuota
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(lower, "api key") || strings.Contains(lower, "authentication"):
		return dto.FailureInvalidCredential, adviceInvalid
	default:
		return dto.FailureOther, "Gagal generate: " + truncateRunes(msg, 100) + "..."
	}
}

func httpStatusOf(err error) int {
	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		return oaErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
