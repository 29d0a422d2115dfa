// Package providermeta moves provider-specific attributes in and out of the
// namespaced options object, the only place the external completion format
// preserves fields it does not recognize.
package providermeta

import (
	"github.com/iancoleman/strcase"

	"llmpipe/internal/core"
)

// Namespace is the reserved providerOptions namespace holding the internal
// side-channel bag.
const Namespace = "promptl"

// Extract moves the unrecognized top-level attributes of msg into its
// provider-namespaced options, converting field names to lowerCamelCase.
// A message without such attributes is returned with only its defined fields.
func Extract(msg core.Message, provider core.Provider) core.Message {
	out := msg.Clone()
	out.Extra = nil
	if len(msg.Extra) == 0 {
		return out
	}

	ns := provider.Namespace()
	if out.ProviderOptions == nil {
		out.ProviderOptions = core.ProviderOptions{}
	}
	attrs := out.ProviderOptions[ns]
	if attrs == nil {
		attrs = make(map[string]any, len(msg.Extra))
	}
	for k, v := range msg.Extra {
		attrs[strcase.ToLowerCamel(k)] = v
	}
	out.ProviderOptions[ns] = attrs
	return out
}

// ExtractAll applies Extract to every message.
func ExtractAll(msgs []core.Message, provider core.Provider) []core.Message {
	out := make([]core.Message, len(msgs))
	for i, m := range msgs {
		out[i] = Extract(m, provider)
	}
	return out
}

// Wrap folds the side-channel bag of every message and content part into the
// reserved namespace of its provider options. Other namespaces are kept.
func Wrap(msgs []core.Message) []core.Message {
	if msgs == nil {
		return nil
	}
	out := make([]core.Message, len(msgs))
	for i, m := range msgs {
		m = m.Clone()
		m.ProviderOptions, m.Metadata = wrapBag(m.ProviderOptions, m.Metadata)
		if !m.Content.IsText {
			for j, p := range m.Content.Parts {
				opts := p.Options()
				opts.ProviderOptions, opts.Metadata = wrapBag(opts.ProviderOptions, opts.Metadata)
				m.Content.Parts[j] = p.WithOptions(opts)
			}
		}
		out[i] = m
	}
	return out
}

// Unwrap is the inverse of Wrap. It restores the side-channel bag from the
// reserved namespace and drops the options object when nothing else is left
// in it. Nil and empty options are equivalent here: an empty options object
// that carried a bag through Wrap comes back nil.
func Unwrap(msgs []core.Message) []core.Message {
	if msgs == nil {
		return nil
	}
	out := make([]core.Message, len(msgs))
	for i, m := range msgs {
		m = m.Clone()
		m.ProviderOptions, m.Metadata = unwrapBag(m.ProviderOptions, m.Metadata)
		if !m.Content.IsText {
			for j, p := range m.Content.Parts {
				opts := p.Options()
				opts.ProviderOptions, opts.Metadata = unwrapBag(opts.ProviderOptions, opts.Metadata)
				m.Content.Parts[j] = p.WithOptions(opts)
			}
		}
		out[i] = m
	}
	return out
}

// UnwrapParts applies the inverse transform to a bare part list.
func UnwrapParts(parts []core.Part) []core.Part {
	if parts == nil {
		return nil
	}
	out := make([]core.Part, len(parts))
	for i, p := range parts {
		opts := p.Options()
		opts.ProviderOptions, opts.Metadata = unwrapBag(opts.ProviderOptions, opts.Metadata)
		out[i] = p.WithOptions(opts)
	}
	return out
}

func wrapBag(opts core.ProviderOptions, bag map[string]any) (core.ProviderOptions, map[string]any) {
	if bag == nil {
		return opts, nil
	}
	wrapped := opts.Clone()
	if wrapped == nil {
		wrapped = core.ProviderOptions{}
	}
	merged := wrapped[Namespace]
	if merged == nil {
		merged = make(map[string]any, len(bag))
	}
	for k, v := range bag {
		merged[k] = v
	}
	wrapped[Namespace] = merged
	return wrapped, nil
}

func unwrapBag(opts core.ProviderOptions, bag map[string]any) (core.ProviderOptions, map[string]any) {
	reserved, ok := opts[Namespace]
	if !ok {
		return opts, bag
	}

	restored := make(map[string]any, len(bag)+len(reserved))
	for k, v := range bag {
		restored[k] = v
	}
	for k, v := range reserved {
		restored[k] = v
	}

	rest := opts.Clone()
	delete(rest, Namespace)
	if len(rest) == 0 {
		rest = nil
	}
	return rest, restored
}
