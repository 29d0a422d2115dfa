package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestContent_IsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		content  Content
		expected bool
	}{
		{name: "empty string", content: TextContent(""), expected: true},
		{name: "non-empty string", content: TextContent("hi"), expected: false},
		{name: "empty array", content: PartsContent(), expected: true},
		{name: "only empty text parts", content: PartsContent(TextPart{}, TextPart{Text: ""}), expected: true},
		{name: "text part with text", content: PartsContent(TextPart{}, TextPart{Text: "x"}), expected: false},
		{name: "non-text part", content: PartsContent(ImagePart{Image: "https://example.com/a.png"}), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.content.IsEmpty(); got != tt.expected {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestContent_AsParts(t *testing.T) {
	parts := TextContent("hello").AsParts()
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if tp, ok := parts[0].(TextPart); !ok || tp.Text != "hello" {
		t.Errorf("unexpected part: %#v", parts[0])
	}

	if got := PartsContent().AsParts(); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil parts, got %#v", got)
	}
}

func TestMessage_Clone(t *testing.T) {
	orig := Message{
		Role:            RoleAssistant,
		Content:         PartsContent(TextPart{Text: "a"}),
		ToolCalls:       []ToolCall{{ID: "1", Name: "search"}},
		ProviderOptions: ProviderOptions{"openai": {"store": true}},
		Metadata:        map[string]any{"ref": "m1"},
		Extra:           map[string]any{"cache_control": "x"},
	}

	clone := orig.Clone()
	clone.Content.Parts[0] = TextPart{Text: "b"}
	clone.ToolCalls[0].Name = "other"
	clone.ProviderOptions["openai"]["store"] = false
	clone.Metadata["ref"] = "m2"
	clone.Extra["cache_control"] = "y"

	if orig.Content.Parts[0].(TextPart).Text != "a" {
		t.Error("parts slice is shared")
	}
	if orig.ToolCalls[0].Name != "search" {
		t.Error("tool calls are shared")
	}
	if orig.ProviderOptions["openai"]["store"] != true {
		t.Error("provider options are shared")
	}
	if orig.Metadata["ref"] != "m1" || orig.Extra["cache_control"] != "x" {
		t.Error("maps are shared")
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if Role("narrator").Valid() {
		t.Error("narrator should not be valid")
	}
}

func TestUnknownRoleError(t *testing.T) {
	err := fmt.Errorf("translate: %w", &UnknownRoleError{Role: "narrator", Index: 2})

	if !errors.Is(err, ErrUnknownRole) {
		t.Fatal("expected errors.Is to match ErrUnknownRole")
	}
	var roleErr *UnknownRoleError
	if !errors.As(err, &roleErr) {
		t.Fatal("expected errors.As to find *UnknownRoleError")
	}
	if roleErr.Index != 2 || roleErr.Role != "narrator" {
		t.Errorf("unexpected error fields: %+v", roleErr)
	}
	want := `translate: message 2: unknown message role: "narrator"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestParseProvider(t *testing.T) {
	for _, p := range Providers() {
		got, err := ParseProvider(string(p))
		if err != nil || got != p {
			t.Errorf("ParseProvider(%q) = %q, %v", p, got, err)
		}
	}
	if _, err := ParseProvider("acme"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestProvider_Namespace(t *testing.T) {
	tests := map[Provider]string{
		ProviderAnthropicVertex: "anthropic",
		ProviderGoogleVertex:    "google",
		ProviderOpenAI:          "openai",
		ProviderPerplexity:      "perplexity",
	}
	for p, want := range tests {
		if got := p.Namespace(); got != want {
			t.Errorf("%q.Namespace() = %q, want %q", p, got, want)
		}
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("expected empty request id, got %q", got)
	}
	ctx = WithRequestID(ctx, "req-42")
	if got := GetRequestID(ctx); got != "req-42" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-42")
	}
}
