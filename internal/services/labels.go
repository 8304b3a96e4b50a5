package services

import (
	"fmt"
	"strings"

	"github.com/ubc/tlef-engeai-sub001/internal/normalization"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/openai"
)

const labelExtractionSystemPrompt = "You label tutoring conversations. " +
	"Given a conversation between a student and an AI course assistant, list the " +
	"course concepts the student appears to struggle with. Return short noun " +
	"phrases. Return an empty list when the conversation shows no struggle."

var struggleLabelSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"labels": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"labels"},
	"additionalProperties": false,
}

// LabelService extracts struggle-topic candidates from conversation text.
// Model output is untrusted: everything is normalized and deduplicated
// before callers see it.
type LabelService interface {
	ExtractLabels(dbc dbctx.Context, conversationText string) ([]string, error)
}

type labelService struct {
	log *logger.Logger
	ai  openai.Client
}

func NewLabelService(log *logger.Logger, ai openai.Client) LabelService {
	return &labelService{
		log: log.With("service", "LabelService"),
		ai:  ai,
	}
}

func (s *labelService) ExtractLabels(dbc dbctx.Context, conversationText string) ([]string, error) {
	text := strings.TrimSpace(conversationText)
	if text == "" {
		return []string{}, nil
	}

	raw, err := s.ai.GenerateJSON(dbc.Ctx, labelExtractionSystemPrompt, text, "struggle_labels", struggleLabelSchema)
	if err != nil {
		return nil, fmt.Errorf("extract labels: %w", err)
	}

	candidates, err := decodeLabelList(raw)
	if err != nil {
		return nil, err
	}

	labels := normalization.NormalizeSet(candidates)
	s.log.Debug("labels extracted", "candidates", len(candidates), "normalized", len(labels))
	return labels, nil
}

func decodeLabelList(raw map[string]any) ([]string, error) {
	value, ok := raw["labels"]
	if !ok {
		return nil, fmt.Errorf("model output missing labels field")
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("model output labels is %T, expected array", value)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		label, ok := item.(string)
		if !ok {
			continue
		}
		out = append(out, label)
	}
	return out, nil
}
