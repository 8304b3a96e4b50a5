package services

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

type scriptedAI struct {
	output map[string]any
	err    error
	calls  int

	lastSystem     string
	lastUser       string
	lastSchemaName string
}

func (s *scriptedAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *scriptedAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	s.calls++
	s.lastSystem = system
	s.lastUser = user
	s.lastSchemaName = schemaName
	if s.err != nil {
		return nil, s.err
	}
	return s.output, nil
}

func TestExtractLabelsNormalizesModelOutput(t *testing.T) {
	ai := &scriptedAI{output: map[string]any{
		"labels": []any{"  Ohms Law ", "ohms law", "KIRCHHOFF current law", "", 42},
	}}
	svc := NewLabelService(testLogger(t), ai)

	labels, err := svc.ExtractLabels(testDBC(), "I keep mixing up V=IR")
	if err != nil {
		t.Fatalf("ExtractLabels: %v", err)
	}
	want := []string{"kirchhoff current law", "ohms law"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("labels: want=%v got=%v", want, labels)
	}
	if ai.lastSchemaName != "struggle_labels" {
		t.Fatalf("schema name: got=%q", ai.lastSchemaName)
	}
	if ai.lastUser != "I keep mixing up V=IR" {
		t.Fatalf("user prompt: got=%q", ai.lastUser)
	}
}

func TestExtractLabelsEmptyConversationSkipsModel(t *testing.T) {
	ai := &scriptedAI{}
	svc := NewLabelService(testLogger(t), ai)

	labels, err := svc.ExtractLabels(testDBC(), "   \n ")
	if err != nil {
		t.Fatalf("ExtractLabels: %v", err)
	}
	if labels == nil || len(labels) != 0 {
		t.Fatalf("labels: want empty slice got=%v", labels)
	}
	if ai.calls != 0 {
		t.Fatalf("model calls: want=0 got=%d", ai.calls)
	}
}

func TestExtractLabelsRejectsMalformedOutput(t *testing.T) {
	cases := []struct {
		name   string
		output map[string]any
	}{
		{"missing field", map[string]any{"topics": []any{"x"}}},
		{"wrong type", map[string]any{"labels": "ohms law"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewLabelService(testLogger(t), &scriptedAI{output: tc.output})
			if _, err := svc.ExtractLabels(testDBC(), "conversation"); err == nil {
				t.Fatalf("want decode error for %v", tc.output)
			}
		})
	}
}

func TestExtractLabelsPropagatesModelError(t *testing.T) {
	svc := NewLabelService(testLogger(t), &scriptedAI{err: fmt.Errorf("model down")})
	if _, err := svc.ExtractLabels(testDBC(), "conversation"); err == nil {
		t.Fatalf("want error from model failure")
	}
}
