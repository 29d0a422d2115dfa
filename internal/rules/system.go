package rules

import (
	"fmt"
	"strings"

	"llmpipe/internal/core"
)

// systemFirst rewrites every system message that follows a non-system
// message into a user message with array content.
func systemFirst(rule core.RuleID, vendor string) Rule {
	return func(a AppliedRules) AppliedRules {
		msgs := core.CloneMessages(a.Messages)

		seenNonSystem := false
		rewritten := false
		for i, m := range msgs {
			if m.Role != core.RoleSystem {
				seenNonSystem = true
				continue
			}
			if !seenNonSystem {
				continue
			}
			msgs[i].Role = core.RoleUser
			msgs[i].Content = core.PartsContent(m.Content.AsParts()...)
			rewritten = true
		}
		a.Messages = msgs

		if rewritten {
			a = a.warn(rule, fmt.Sprintf(
				"%s only supports system messages at the beginning of the conversation. "+
					"All other system messages have been converted to user messages.", vendor))
		}
		if onlySystem(msgs) {
			a = a.warn(rule, fmt.Sprintf(
				"%s requires at least one user or assistant message in the conversation.", vendor))
		}
		return a
	}
}

func onlySystem(msgs []core.Message) bool {
	for _, m := range msgs {
		if m.Role != core.RoleSystem {
			return false
		}
	}
	return true
}

// supportsSystemMessages reports whether an OpenAI model accepts system
// messages. The o1 preview family does not; the plain "o1" id does.
func supportsSystemMessages(model string) bool {
	return !strings.HasPrefix(model, "o1-")
}

// reasoningModelSystem converts system messages to user messages, in place,
// for models that reject the system role.
func reasoningModelSystem(a AppliedRules) AppliedRules {
	if supportsSystemMessages(a.Config.Model) {
		return a
	}

	msgs := core.CloneMessages(a.Messages)
	converted := false
	for i := range msgs {
		if msgs[i].Role == core.RoleSystem {
			msgs[i].Role = core.RoleUser
			converted = true
		}
	}
	if !converted {
		return a
	}
	a.Messages = msgs
	return a.warn(core.RuleOpenAI, fmt.Sprintf(
		"Model %s does not support system messages. They have been converted to user messages.", a.Config.Model))
}

// trailingUser makes sure the conversation ends with a user message.
func trailingUser(a AppliedRules) AppliedRules {
	if len(a.Messages) == 0 {
		return a
	}
	last := len(a.Messages) - 1
	if a.Messages[last].Role == core.RoleUser {
		return a
	}
	msgs := core.CloneMessages(a.Messages)
	msgs[last].Role = core.RoleUser
	a.Messages = msgs
	return a
}
