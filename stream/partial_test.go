package stream

import (
	"strings"
	"testing"
)

// joke mirrors the walkthrough's structured output for snapshot tests.
type joke struct {
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

func TestSnapshot_CompleteJSON(testCase *testing.T) {
	var accumulator Accumulator
	accumulator.Append(`{"topic": "cats", "text": "Why did the cat cross the road?"}`)

	result, err := Snapshot[joke](&accumulator)
	if err != nil {
		testCase.Fatalf("Snapshot error: %v", err)
	}
	if result.Topic != "cats" {
		testCase.Errorf("expected topic 'cats', got %q", result.Topic)
	}
	if result.Text != "Why did the cat cross the road?" {
		testCase.Errorf("unexpected text: %q", result.Text)
	}
}

func TestSnapshot_PartialJSON_IsRepaired(testCase *testing.T) {
	var accumulator Accumulator

	// Simulate token-by-token arrival of an incomplete object: the text value
	// is mid-string and the closing brace has not arrived yet.
	for _, delta := range []string{`{"topic"`, `: "cats"`, `, "text": "Why did`, ` the cat`} {
		accumulator.Append(delta)
	}

	result, err := Snapshot[joke](&accumulator)
	if err != nil {
		testCase.Fatalf("Snapshot error on partial JSON: %v", err)
	}
	if result.Topic != "cats" {
		testCase.Errorf("expected topic 'cats', got %q", result.Topic)
	}
	if !strings.HasPrefix(result.Text, "Why did") {
		testCase.Errorf("expected partial text starting with 'Why did', got %q", result.Text)
	}
}

func TestSnapshot_GrowsAcrossCalls(testCase *testing.T) {
	var accumulator Accumulator

	accumulator.Append(`{"topic": "dogs", "text": "ba`)
	first, err := Snapshot[joke](&accumulator)
	if err != nil {
		testCase.Fatalf("first Snapshot error: %v", err)
	}

	accumulator.Append(`rk bark"}`)
	second, err := Snapshot[joke](&accumulator)
	if err != nil {
		testCase.Fatalf("second Snapshot error: %v", err)
	}

	if len(second.Text) <= len(first.Text) {
		testCase.Errorf("expected text to grow across snapshots: first %q, second %q", first.Text, second.Text)
	}
	if second.Text != "bark bark" {
		testCase.Errorf("expected final text 'bark bark', got %q", second.Text)
	}
}

func TestSnapshot_Empty_ReturnsError(testCase *testing.T) {
	var accumulator Accumulator

	if _, err := Snapshot[joke](&accumulator); err == nil {
		testCase.Fatal("expected error for empty accumulator, got nil")
	}
}

func TestSnapshot_StripsMarkdownFences(testCase *testing.T) {
	var accumulator Accumulator
	accumulator.Append("```json\n{\"topic\": \"go\", \"text\": \"gophers\"}\n```")

	result, err := Snapshot[joke](&accumulator)
	if err != nil {
		testCase.Fatalf("Snapshot error: %v", err)
	}
	if result.Topic != "go" || result.Text != "gophers" {
		testCase.Errorf("unexpected result: %+v", result)
	}
}

func TestAccumulator_LenAndString(testCase *testing.T) {
	var accumulator Accumulator

	if accumulator.Len() != 0 {
		testCase.Errorf("expected empty accumulator, got length %d", accumulator.Len())
	}

	accumulator.Append("ab")
	accumulator.Append("cd")

	if accumulator.String() != "abcd" {
		testCase.Errorf("expected 'abcd', got %q", accumulator.String())
	}
	if accumulator.Len() != 4 {
		testCase.Errorf("expected length 4, got %d", accumulator.Len())
	}
}
