package telemetry

import "llmpipe/internal/core"

// AttachToolSources annotates tool-call parts of assistant messages with the
// provenance found in tools. Parts that already carry provenance, or whose
// tool is unknown, are left unchanged. msgs is not modified.
func AttachToolSources(msgs []core.Message, tools core.ResolvedTools) []core.Message {
	out := core.CloneMessages(msgs)
	if len(tools) == 0 {
		return out
	}
	for i := range out {
		m := &out[i]
		if m.Role != core.RoleAssistant || m.Content.IsText {
			continue
		}
		for j, p := range m.Content.Parts {
			tc, ok := p.(core.ToolCallPart)
			if !ok || tc.SourceData != nil {
				continue
			}
			resolved, ok := tools[tc.ToolName]
			if !ok || resolved.SourceData == nil {
				continue
			}
			sd := *resolved.SourceData
			tc.SourceData = &sd
			m.Content.Parts[j] = tc
		}
	}
	return out
}
