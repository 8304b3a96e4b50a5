package qdrant

import (
	"errors"
	"reflect"
	"testing"
)

func TestTranslateFilterMapScalarField(t *testing.T) {
	out, err := translateFilterMap(map[string]any{"courseName": "APSC 099"})
	if err != nil {
		t.Fatalf("translateFilterMap: %v", err)
	}
	want := translatedFilter{
		Must: []any{matchCondition("courseName", "APSC 099")},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("translated filter: want=%v got=%v", want, out)
	}
}

func TestTranslateFilterMapOperators(t *testing.T) {
	out, err := translateFilterMap(map[string]any{
		"status":   map[string]any{"$ne": "resolved"},
		"flagType": map[string]any{"$in": []any{"inaccurate-response", "harassment"}},
	})
	if err != nil {
		t.Fatalf("translateFilterMap: %v", err)
	}
	if len(out.Must) != 1 {
		t.Fatalf("must length: want=1 got=%d", len(out.Must))
	}
	inCond, ok := out.Must[0].(map[string]any)
	if !ok || inCond["key"] != "flagType" {
		t.Fatalf("in condition: got=%v", out.Must[0])
	}
	match, _ := inCond["match"].(map[string]any)
	anyVals, _ := match["any"].([]any)
	if len(anyVals) != 2 {
		t.Fatalf("in values: want=2 got=%v", match)
	}
	if len(out.MustNot) != 1 {
		t.Fatalf("must_not length: want=1 got=%d", len(out.MustNot))
	}
}

func TestTranslateFilterMapLogicalOperators(t *testing.T) {
	out, err := translateFilterMap(map[string]any{
		"$or": []any{
			map[string]any{"userId": "u-1"},
			map[string]any{"userId": "u-2"},
		},
		"$not": map[string]any{"status": "resolved"},
	})
	if err != nil {
		t.Fatalf("translateFilterMap: %v", err)
	}
	if len(out.Should) != 2 {
		t.Fatalf("should length: want=2 got=%d", len(out.Should))
	}
	if len(out.MustNot) != 1 {
		t.Fatalf("must_not length: want=1 got=%d", len(out.MustNot))
	}
}

func TestTranslateFilterMapUnsupportedOperator(t *testing.T) {
	cases := []map[string]any{
		{"$text": map[string]any{"$search": "ohm"}},
		{"score": map[string]any{"$gte": 5}},
	}
	for _, filter := range cases {
		_, err := translateFilterMap(filter)
		var typed *OperationError
		if !errors.As(err, &typed) || typed.Code != OperationErrorUnsupportedFilter {
			t.Fatalf("filter %v: expected unsupported_filter error, got %v", filter, err)
		}
	}
}

func TestTranslateFilterMapEmptyIn(t *testing.T) {
	_, err := translateFilterMap(map[string]any{
		"status": map[string]any{"$in": []any{}},
	})
	var typed *OperationError
	if !errors.As(err, &typed) || typed.Code != OperationErrorValidation {
		t.Fatalf("expected validation error for empty $in, got %v", err)
	}
}

func TestTranslateFilterMapDeterministicOrder(t *testing.T) {
	filter := map[string]any{
		"b": "2",
		"a": "1",
		"c": "3",
	}
	first, err := translateFilterMap(filter)
	if err != nil {
		t.Fatalf("translateFilterMap: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := translateFilterMap(filter)
		if err != nil {
			t.Fatalf("translateFilterMap: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("translation not deterministic: first=%v again=%v", first, again)
		}
	}
}
