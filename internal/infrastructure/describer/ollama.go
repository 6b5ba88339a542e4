package describer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"ppe-inspector/internal/domain/entity"
	"ppe-inspector/internal/domain/port"
)

const (
	// DefaultModel модель по умолчанию
	DefaultModel   = "llama3.2"
	defaultTimeout = 60 * time.Second
)

const promptTemplate = `You are a construction site safety officer.
Write two or three short sentences for the site manager about this PPE check.
Mention missing equipment first. Do not invent objects that are not listed.

Detections:
%s
Workers: %d, compliant items: %d, violations: %d.`

// OllamaDescriber пишет короткий вывод по сводке через Ollama.
type OllamaDescriber struct {
	client     *api.Client
	model      string
	compliance entity.ComplianceMap
	timeout    time.Duration
}

// NewOllamaDescriber создаёт описателя для сервера ollamaURL.
func NewOllamaDescriber(ollamaURL, model string, cm entity.ComplianceMap) (*OllamaDescriber, error) {
	parsed, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", ollamaURL)
	}
	if model == "" {
		model = DefaultModel
	}

	// Путь вроде /api/chat отбрасываем: клиент добавляет его сам.
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}

	return &OllamaDescriber{
		client:     api.NewClient(base, http.DefaultClient),
		model:      model,
		compliance: cm,
		timeout:    defaultTimeout,
	}, nil
}

// Describe генерирует текстовое описание сводки
func (d *OllamaDescriber) Describe(ctx context.Context, summary *entity.Summary) (*entity.AiDescription, error) {
	if summary == nil || summary.NoDetections {
		return &entity.AiDescription{Text: "No objects were detected in the photo."}, nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	stream := false
	req := &api.ChatRequest{
		Model: d.model,
		Messages: []api.Message{
			{Role: "user", Content: BuildPrompt(summary, d.compliance)},
		},
		Stream: &stream,
	}

	var content string
	err := d.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("empty response from ollama")
	}
	return &entity.AiDescription{Text: content}, nil
}

// BuildPrompt переводит сводку в запрос к модели.
func BuildPrompt(summary *entity.Summary, cm entity.ComplianceMap) string {
	var lines strings.Builder
	for _, line := range summary.Lines(cm) {
		fmt.Fprintf(&lines, "- %s (%s): %d\n", line.Label, line.Status, line.Count)
	}
	return fmt.Sprintf(promptTemplate, lines.String(), summary.Workers, summary.Compliant, summary.Violations)
}

var _ port.ComplianceDescriber = (*OllamaDescriber)(nil)
