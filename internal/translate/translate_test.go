package translate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmpipe/internal/completion"
	"llmpipe/internal/core"
	"llmpipe/internal/providermeta"
)

func intPtr(v int) *int { return &v }

func TestToExternal_EmptinessFilter(t *testing.T) {
	t.Run("empty assistant is dropped", func(t *testing.T) {
		out, err := ToExternal([]core.Message{
			{Role: core.RoleUser, Content: core.TextContent("hi")},
			{Role: core.RoleAssistant, Content: core.TextContent("")},
			{Role: core.RoleAssistant, Content: core.PartsContent()},
			{Role: core.RoleAssistant, Content: core.PartsContent(core.TextPart{}, core.TextPart{})},
		})
		require.NoError(t, err)

		require.Len(t, out.Messages, 1)
		assert.Equal(t, core.RoleUser, out.Messages[0].Role)
		assert.Empty(t, out.Warnings)
	})

	t.Run("empty assistant with tool calls is kept", func(t *testing.T) {
		out, err := ToExternal([]core.Message{{
			Role:      core.RoleAssistant,
			Content:   core.TextContent(""),
			ToolCalls: []core.ToolCall{{ID: "call-1", Name: "search", Arguments: map[string]any{"q": "go"}}},
		}})
		require.NoError(t, err)

		require.Len(t, out.Messages, 1)
		assert.Equal(t, []completion.Part{
			completion.TextPart{Text: ""},
			completion.ToolCallPart{ToolCallID: "call-1", ToolName: "search", Input: map[string]any{"q": "go"}},
		}, out.Messages[0].Parts)
		require.Len(t, out.Warnings, 1)
		assert.Equal(t, core.RuleToolCalls, out.Warnings[0].Rule)
	})

	t.Run("empty non-assistant messages are kept", func(t *testing.T) {
		out, err := ToExternal([]core.Message{
			{Role: core.RoleSystem, Content: core.TextContent("")},
			{Role: core.RoleUser, Content: core.PartsContent()},
			{Role: core.RoleTool, Content: core.TextContent("")},
		})
		require.NoError(t, err)
		assert.Len(t, out.Messages, 3)
	})
}

func TestToExternal_System(t *testing.T) {
	out, err := ToExternal([]core.Message{{
		Role: core.RoleSystem,
		Content: core.PartsContent(
			core.TextPart{Text: "line one"},
			core.ImagePart{Image: "https://example.com/x.png"},
			core.TextPart{Text: "line two"},
		),
		ProviderOptions: core.ProviderOptions{"anthropic": {"cacheControl": "ephemeral"}},
	}})
	require.NoError(t, err)

	require.Len(t, out.Messages, 1)
	assert.Equal(t, completion.Message{
		Role:            core.RoleSystem,
		System:          "line one\nline two",
		ProviderOptions: core.ProviderOptions{"anthropic": {"cacheControl": "ephemeral"}},
	}, out.Messages[0])
}

func TestToExternal_User(t *testing.T) {
	tests := []struct {
		name      string
		content   core.Content
		wantText  string
		wantIsTxt bool
		wantParts int
	}{
		{"string content", core.TextContent("hello"), "hello", true, 0},
		{"single text part collapses", core.PartsContent(core.TextPart{Text: "hello"}), "hello", true, 0},
		{
			"text and image stay parts",
			core.PartsContent(core.TextPart{Text: "look"}, core.ImagePart{Image: "u", MimeType: "image/png"}),
			"", false, 2,
		},
		{
			"single text part with options stays parts",
			core.PartsContent(core.TextPart{Text: "hello", PartOptions: core.PartOptions{
				ProviderOptions: core.ProviderOptions{"openai": {"detail": "low"}},
			}}),
			"", false, 1,
		},
		{"single image stays parts", core.PartsContent(core.ImagePart{Image: "u"}), "", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToExternal([]core.Message{{Role: core.RoleUser, Content: tt.content}})
			require.NoError(t, err)
			require.Len(t, out.Messages, 1)

			msg := out.Messages[0]
			assert.Equal(t, tt.wantIsTxt, msg.IsText)
			assert.Equal(t, tt.wantText, msg.Text)
			assert.Len(t, msg.Parts, tt.wantParts)
		})
	}
}

func TestToExternal_Assistant(t *testing.T) {
	t.Run("string content becomes a text part", func(t *testing.T) {
		out, err := ToExternal([]core.Message{{Role: core.RoleAssistant, Content: core.TextContent("sure")}})
		require.NoError(t, err)

		assert.Equal(t, []completion.Part{completion.TextPart{Text: "sure"}}, out.Messages[0].Parts)
	})

	t.Run("mirrored tool calls are not appended twice", func(t *testing.T) {
		out, err := ToExternal([]core.Message{{
			Role: core.RoleAssistant,
			Content: core.PartsContent(
				core.ToolCallPart{ToolCallID: "call-1", ToolName: "search"},
			),
			ToolCalls: []core.ToolCall{
				{ID: "call-1", Name: "search"},
				{ID: "call-2", Name: "fetch"},
			},
		}})
		require.NoError(t, err)

		parts := out.Messages[0].Parts
		require.Len(t, parts, 2)
		assert.Equal(t, "call-2", parts[1].(completion.ToolCallPart).ToolCallID)
		require.Len(t, out.Warnings, 1)
		assert.Contains(t, out.Warnings[0].Message, "call-2")
	})

	t.Run("absent arguments stay absent", func(t *testing.T) {
		out, err := ToExternal([]core.Message{{
			Role:      core.RoleAssistant,
			Content:   core.TextContent("x"),
			ToolCalls: []core.ToolCall{{ID: "call-1", Name: "now"}},
		}})
		require.NoError(t, err)

		tc := out.Messages[0].Parts[1].(completion.ToolCallPart)
		assert.Nil(t, tc.Input)
	})
}

func TestToExternal_ToolResultOutput(t *testing.T) {
	tests := []struct {
		name    string
		result  any
		isError bool
		want    completion.ToolResultOutput
	}{
		{
			name:   "string",
			result: "sunny",
			want:   completion.ToolResultOutput{Type: completion.OutputTypeText, Text: "sunny"},
		},
		{
			name:    "error string",
			result:  "timeout",
			isError: true,
			want:    completion.ToolResultOutput{Type: completion.OutputTypeErrorText, Text: "timeout"},
		},
		{
			name: "string and media array",
			result: []any{
				"caption",
				map[string]any{"type": "media", "data": "aGk=", "mediaType": "image/png"},
				map[string]any{"type": "text", "text": "more"},
			},
			want: completion.ToolResultOutput{Type: completion.OutputTypeContent, Content: []completion.OutputContent{
				{Type: "text", Text: "caption"},
				{Type: "media", Data: "aGk=", MediaType: "image/png"},
				{Type: "text", Text: "more"},
			}},
		},
		{
			name:    "error object",
			result:  map[string]any{"code": 500},
			isError: true,
			want:    completion.ToolResultOutput{Type: completion.OutputTypeErrorJSON, Value: map[string]any{"code": 500}},
		},
		{
			name:   "object",
			result: map[string]any{"temp": 21},
			want:   completion.ToolResultOutput{Type: completion.OutputTypeJSON, Value: map[string]any{"temp": 21}},
		},
		{
			name:   "mixed array is json",
			result: []any{"a", 1},
			want:   completion.ToolResultOutput{Type: completion.OutputTypeJSON, Value: []any{"a", 1}},
		},
		{
			name:   "empty array is json",
			result: []any{},
			want:   completion.ToolResultOutput{Type: completion.OutputTypeJSON, Value: []any{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToExternal([]core.Message{{
				Role: core.RoleTool,
				Content: core.PartsContent(core.ToolResultPart{
					ToolCallID: "call-1",
					ToolName:   "weather",
					Result:     tt.result,
					IsError:    tt.isError,
				}),
			}})
			require.NoError(t, err)
			require.Len(t, out.Messages[0].Parts, 1)

			part := out.Messages[0].Parts[0].(completion.ToolResultPart)
			assert.Equal(t, tt.want, part.Output)
		})
	}
}

func TestToExternal_UnknownRole(t *testing.T) {
	_, err := ToExternal([]core.Message{
		{Role: core.RoleUser, Content: core.TextContent("a")},
		{Role: core.RoleUser, Content: core.TextContent("b")},
		{Role: "developer", Content: core.TextContent("c")},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownRole))
	var roleErr *core.UnknownRoleError
	require.ErrorAs(t, err, &roleErr)
	assert.Equal(t, 2, roleErr.Index)
}

func TestFromExternal_UnknownRole(t *testing.T) {
	_, err := FromExternal([]completion.Message{{Role: "narrator"}})
	assert.ErrorIs(t, err, core.ErrUnknownRole)
}

func TestRoundTripThroughExternalFormat(t *testing.T) {
	msgs := []core.Message{
		{
			Role:     core.RoleSystem,
			Content:  core.TextContent("be brief"),
			Metadata: map[string]any{"sourceMap": "s"},
		},
		{
			Role:     core.RoleUser,
			Content:  core.TextContent("weather in Paris?"),
			Metadata: map[string]any{"ref": 1},
		},
		{
			Role: core.RoleAssistant,
			Content: core.PartsContent(
				core.TextPart{Text: "checking"},
				core.ToolCallPart{
					ToolCallID:  "call-1",
					ToolName:    "weather",
					Args:        map[string]any{"city": "Paris"},
					PartOptions: core.PartOptions{Metadata: map[string]any{"ref": "tc"}},
				},
			),
		},
		{
			Role: core.RoleTool,
			Content: core.PartsContent(core.ToolResultPart{
				ToolCallID: "call-1",
				ToolName:   "weather",
				Result:     map[string]any{"temp": 21},
			}),
		},
	}

	out, err := ToExternal(providermeta.Wrap(msgs))
	require.NoError(t, err)
	back, err := FromExternal(out.Messages)
	require.NoError(t, err)

	assert.Equal(t, msgs, providermeta.Unwrap(back))
}

func TestCaptureOutput(t *testing.T) {
	result := &completion.GenerateResult{
		Content: []completion.Part{
			completion.ReasoningPart{Text: "think "},
			completion.TextPart{Text: "Hello, "},
			completion.FilePart{Data: []byte{1, 2}, MediaType: "image/png"},
			completion.ReasoningPart{Text: "more"},
			completion.TextPart{Text: "world!"},
			completion.ToolCallPart{ToolCallID: "call-1", ToolName: "now"},
		},
		FinishReason: "tool-calls",
		Usage: completion.Usage{
			InputTokens:  intPtr(10),
			OutputTokens: intPtr(0),
		},
	}

	got := CaptureOutput(result)

	assert.Equal(t, "Hello, world!", got.Text)
	assert.Equal(t, "think more", got.Reasoning)
	assert.Equal(t, []core.CapturedFile{{MediaType: "image/png", Data: []byte{1, 2}}}, got.Files)
	require.Len(t, got.ToolCalls, 1)
	assert.Nil(t, got.ToolCalls[0].Arguments)
	assert.Equal(t, "tool-calls", got.FinishReason)
	require.NotNil(t, got.Tokens.Prompt)
	assert.Equal(t, 10, *got.Tokens.Prompt)
	require.NotNil(t, got.Tokens.Completion)
	assert.Equal(t, 0, *got.Tokens.Completion)
	assert.Nil(t, got.Tokens.Cached)
	assert.Nil(t, got.Tokens.Reasoning)
}

func TestCaptureOutput_NoContent(t *testing.T) {
	got := CaptureOutput(&completion.GenerateResult{FinishReason: "stop"})

	assert.Empty(t, got.Text)
	assert.Empty(t, got.Reasoning)
	assert.Empty(t, got.Files)
	assert.Empty(t, got.ToolCalls)
	assert.Equal(t, "stop", got.FinishReason)

	assert.Equal(t, core.FinishReasonUnknown, CaptureOutput(nil).FinishReason)
}

func TestCaptureOutput_FilePayloadKeptVerbatim(t *testing.T) {
	url := map[string]any{"url": "https://cdn.example.com/chart.png"}
	result := &completion.GenerateResult{
		Content: []completion.Part{
			completion.FilePart{Data: url, MediaType: "image/png"},
			completion.FilePart{Data: "https://cdn.example.com/report.pdf", MediaType: "application/pdf"},
		},
	}

	got := CaptureOutput(result)

	assert.Equal(t, []core.CapturedFile{
		{MediaType: "image/png", Data: url},
		{MediaType: "application/pdf", Data: "https://cdn.example.com/report.pdf"},
	}, got.Files)

	parts := OutputMessages(got)[0].Content.Parts
	require.Len(t, parts, 2)
	assert.Equal(t, url, parts[0].(core.FilePart).File)
	assert.Equal(t, "https://cdn.example.com/report.pdf", parts[1].(core.FilePart).File)
}

func TestCaptureOutput_KeepsPartOptions(t *testing.T) {
	result := &completion.GenerateResult{
		Content: []completion.Part{
			completion.TextPart{Text: "a", ProviderOptions: core.ProviderOptions{"promptl": {"ref": "t1"}}},
			completion.TextPart{Text: "b", ProviderOptions: core.ProviderOptions{"promptl": {"span": 2}, "openai": {"id": "x"}}},
			completion.ReasoningPart{Text: "r", ProviderOptions: core.ProviderOptions{"anthropic": {"signature": "sig"}}},
			completion.FilePart{Data: []byte{1}, MediaType: "image/png", ProviderOptions: core.ProviderOptions{"promptl": {"ref": "f1"}}},
			completion.ToolCallPart{ToolCallID: "c1", ToolName: "now", ProviderOptions: core.ProviderOptions{"promptl": {"ref": "c1"}}},
		},
	}

	got := CaptureOutput(result)

	assert.Equal(t, "ab", got.Text)
	assert.Equal(t, core.ProviderOptions{"promptl": {"ref": "t1", "span": 2}, "openai": {"id": "x"}}, got.TextOptions)
	assert.Equal(t, core.ProviderOptions{"anthropic": {"signature": "sig"}}, got.ReasoningOptions)
	assert.Equal(t, core.ProviderOptions{"promptl": {"ref": "f1"}}, got.Files[0].ProviderOptions)
	assert.Equal(t, core.ProviderOptions{"promptl": {"ref": "c1"}}, got.ToolCalls[0].ProviderOptions)

	// the result parts are not modified by the merge
	assert.Equal(t, core.ProviderOptions{"promptl": {"ref": "t1"}}, result.Content[0].(completion.TextPart).ProviderOptions)
}

func TestOutputMessages(t *testing.T) {
	got := OutputMessages(core.CapturedResult{
		Text:      "done",
		Reasoning: "hmm",
		ToolCalls: []core.CapturedToolCall{{ID: "call-1", Name: "now"}},
	})

	require.Len(t, got, 1)
	msg := got[0]
	assert.Equal(t, core.RoleAssistant, msg.Role)
	assert.Equal(t, []core.Part{
		core.ReasoningPart{Text: "hmm"},
		core.TextPart{Text: "done"},
		core.ToolCallPart{ToolCallID: "call-1", ToolName: "now"},
	}, msg.Content.Parts)
	assert.Equal(t, []core.ToolCall{{ID: "call-1", Name: "now"}}, msg.ToolCalls)
}

func TestOutputMessages_Empty(t *testing.T) {
	got := OutputMessages(core.CapturedResult{})

	require.Len(t, got, 1)
	assert.False(t, got[0].Content.IsText)
	assert.Empty(t, got[0].Content.Parts)
	assert.Nil(t, got[0].ToolCalls)
}

func TestOutputMessages_RestoresSideChannel(t *testing.T) {
	msgs := OutputMessages(core.CapturedResult{
		Text:        "done",
		TextOptions: core.ProviderOptions{providermeta.Namespace: {"ref": "x"}},
		ToolCalls: []core.CapturedToolCall{{
			ID:              "call-1",
			Name:            "now",
			ProviderOptions: core.ProviderOptions{providermeta.Namespace: {"ref": "y"}, "openai": {"id": "i"}},
		}},
	})

	got := providermeta.Unwrap(msgs)

	parts := got[0].Content.Parts
	require.Len(t, parts, 2)
	assert.Equal(t, core.PartOptions{Metadata: map[string]any{"ref": "x"}}, parts[0].Options())
	assert.Equal(t, core.PartOptions{
		ProviderOptions: core.ProviderOptions{"openai": {"id": "i"}},
		Metadata:        map[string]any{"ref": "y"},
	}, parts[1].Options())
}
