package openaicompat

// Capabilities is the per-provider feature flag set that parameterizes the
// generic adapter. Flags control wire-format choices in the translator;
// they never change the unified contract.
type Capabilities struct {
	// SupportsTools indicates native tools/tool_choice support. When false,
	// tool calls in history degrade to a textual name(args) representation
	// and tool declarations are omitted from the request.
	SupportsTools bool

	// SupportsVision indicates multimodal image input support. When false,
	// inline binary parts degrade to a bracketed text marker.
	SupportsVision bool

	// RequiresAlternation indicates the provider rejects conversations whose
	// message roles do not strictly alternate. When set, a turn with no
	// representable parts is emitted as an explicit empty-content message to
	// preserve turn count instead of being dropped.
	RequiresAlternation bool
}

// Preset bundles everything that distinguishes one provider of the
// OpenAI-compatible family from another: its public endpoint, its model
// alias table, and its capability flags.
type Preset struct {
	// Name identifies the provider in errors and trace events.
	Name string

	// BaseURL is the provider's public endpoint, overridable per adapter.
	BaseURL string

	// Capabilities are the provider's feature flags.
	Capabilities Capabilities

	// ModelAliases remaps short public aliases to the provider's canonical
	// model identifiers. Unrecognized names pass through unchanged on the
	// assumption the caller supplied a valid native name directly.
	ModelAliases map[string]string
}

// Known provider presets. Alias tables carry only the short names that
// differ from the canonical identifier.
var (
	// OpenRouter aggregates many upstream models behind one endpoint.
	OpenRouter = Preset{
		Name:    "openrouter",
		BaseURL: "https://openrouter.ai/api/v1",
		Capabilities: Capabilities{
			SupportsTools:  true,
			SupportsVision: true,
		},
		ModelAliases: map[string]string{
			"auto": "openrouter/auto",
		},
	}

	// DeepSeek exposes chat and reasoner tiers.
	DeepSeek = Preset{
		Name:    "deepseek",
		BaseURL: "https://api.deepseek.com/v1",
		Capabilities: Capabilities{
			SupportsTools: true,
		},
		ModelAliases: map[string]string{
			"chat":     "deepseek-chat",
			"reasoner": "deepseek-reasoner",
		},
	}

	// Mistral uses -latest suffixed deployment names.
	Mistral = Preset{
		Name:    "mistral",
		BaseURL: "https://api.mistral.ai/v1",
		Capabilities: Capabilities{
			SupportsTools:  true,
			SupportsVision: true,
		},
		ModelAliases: map[string]string{
			"mistral-small": "mistral-small-latest",
			"mistral-large": "mistral-large-latest",
		},
	}

	// Groq serves open-weight models with versioned deployment names.
	Groq = Preset{
		Name:    "groq",
		BaseURL: "https://api.groq.com/openai/v1",
		Capabilities: Capabilities{
			SupportsTools: true,
		},
		ModelAliases: map[string]string{
			"llama-3.3-70b": "llama-3.3-70b-versatile",
			"llama-3.1-8b":  "llama-3.1-8b-instant",
		},
	}
)
