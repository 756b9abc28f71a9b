package llm

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"plushbot/internal/domain"
)

// DefaultModel модель по умолчанию
const DefaultModel = "gemini-2.5-flash"

// Gemini клиент Gemini API. Отсутствие ключа — штатный деградированный
// режим: каждый запрос отвечает заглушкой, процесс стартует как обычно.
type Gemini struct {
	client *genai.Client
	model  string
	system string
	logger *zap.Logger
}

// NewGemini создаёт клиента. Ошибки конфигурации не фатальны —
// клиент остаётся в деградированном режиме.
func NewGemini(ctx context.Context, apiKey, model string, products []domain.Product, logger *zap.Logger) *Gemini {
	g := &Gemini{
		model:  model,
		system: SystemInstruction(products),
		logger: logger,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if apiKey == "" {
		logger.Warn("gemini api key is not set, assistant replies degraded")
		return g
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Warn("gemini client init failed, assistant replies degraded", zap.Error(err))
		return g
	}
	g.client = client
	return g
}

var _ Completer = (*Gemini)(nil)

// Complete отправляет реплику пользователя вместе с историей диалога.
// Одна попытка, без ретраев; любой сбой превращается в заглушку.
func (g *Gemini) Complete(ctx context.Context, message string, history []Turn) (string, error) {
	if g.client == nil {
		return FallbackUnavailable, nil
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		var role genai.Role = genai.RoleUser
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.7),
		SystemInstruction: genai.NewContentFromText(g.system, genai.RoleUser),
	}

	chat, err := g.client.Chats.Create(ctx, g.model, cfg, contents)
	if err != nil {
		g.logger.Warn("gemini chat create failed", zap.Error(err))
		return FallbackError, nil
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		g.logger.Warn("gemini send failed", zap.Error(err))
		return FallbackError, nil
	}
	text := resp.Text()
	if text == "" {
		return FallbackError, nil
	}
	return text, nil
}
