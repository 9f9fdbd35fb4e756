package recommend

import "fmt"

// Provider names accepted by NewGenerator.
const (
	ProviderAuto      = "auto"
	ProviderReplicate = "replicate"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"
)

// Settings selects and configures a generator.
type Settings struct {
	// Provider is one of the Provider constants. Empty means ProviderAuto.
	Provider string

	ReplicateToken string
	ReplicateModel string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
}

// NewGenerator builds the generator named by s.Provider. ProviderAuto picks
// Replicate when a token is set, then OpenAI when a key is set, and
// otherwise returns a nil Generator, which puts the merger in template-only
// mode. ProviderNone always returns nil.
func NewGenerator(s Settings) (Generator, error) {
	switch s.Provider {
	case "", ProviderAuto:
		if ValidReplicateToken(s.ReplicateToken) {
			return newReplicate(s)
		}
		if s.OpenAIKey != "" {
			return newOpenAI(s)
		}
		return nil, nil
	case ProviderReplicate:
		return newReplicate(s)
	case ProviderOpenAI:
		return newOpenAI(s)
	case ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, s.Provider)
	}
}

func newReplicate(s Settings) (Generator, error) {
	g, err := NewReplicateGenerator(s.ReplicateToken, WithReplicateModel(s.ReplicateModel))
	if err != nil {
		return nil, err
	}
	return g, nil
}

func newOpenAI(s Settings) (Generator, error) {
	g, err := NewOpenAIGenerator(s.OpenAIKey, s.OpenAIBaseURL, s.OpenAIModel)
	if err != nil {
		return nil, err
	}
	return g, nil
}
