package rules

import "llmpipe/internal/core"

const (
	systemNonTextWarning  = "System messages can only contain text content. Other content types may be ignored by the provider."
	assistantImageWarning = "Assistant messages cannot contain images. They may be ignored by the provider."
)

// custom warns about content most providers reject. It never changes the
// messages. System messages are restricted to text, assistant messages are
// only checked for images.
func custom(a AppliedRules) AppliedRules {
	systemNonText := false
	assistantImage := false

	for _, m := range a.Messages {
		if m.Content.IsText {
			continue
		}
		switch m.Role {
		case core.RoleSystem:
			for _, p := range m.Content.Parts {
				if p.Kind() != core.PartText {
					systemNonText = true
				}
			}
		case core.RoleAssistant:
			for _, p := range m.Content.Parts {
				if p.Kind() == core.PartImage {
					assistantImage = true
				}
			}
		}
	}

	if systemNonText {
		a = a.warn(core.RuleCustom, systemNonTextWarning)
	}
	if assistantImage {
		a = a.warn(core.RuleCustom, assistantImageWarning)
	}
	return a
}
