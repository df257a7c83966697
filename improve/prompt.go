package improve

import (
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jellydator/ttlcache/v3"
)

// overrideTTL bounds how long an idle document handle keeps its prompt
// override. Hits refresh the TTL, so overrides stay alive for documents
// that are still in use and age out with closed ones.
const overrideTTL = 12 * time.Hour

// PromptStore resolves the instruction text governing a request: the
// per-document override when one is set, else the process-wide default.
type PromptStore struct {
	mu        sync.RWMutex
	def       string
	presets   map[string]string
	overrides *ttlcache.Cache[string, string]
}

// NewPromptStore creates a store with the given default prompt.
func NewPromptStore(defaultPrompt string) *PromptStore {
	c := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](overrideTTL),
	)
	go c.Start()
	return &PromptStore{
		def:       defaultPrompt,
		presets:   map[string]string{},
		overrides: c,
	}
}

// Close stops the override expiration loop.
func (s *PromptStore) Close() {
	s.overrides.Stop()
}

// Default returns the process-wide default prompt.
func (s *PromptStore) Default() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def
}

// SetDefault replaces the process-wide default prompt. It persists for
// the daemon lifetime.
func (s *PromptStore) SetDefault(prompt string) {
	s.mu.Lock()
	s.def = prompt
	s.mu.Unlock()
}

// SetOverride sets the per-document prompt override. An empty prompt
// clears the override.
func (s *PromptStore) SetOverride(docID, prompt string) {
	if strings.TrimSpace(prompt) == "" {
		s.overrides.Delete(docID)
		return
	}
	s.overrides.Set(docID, prompt, ttlcache.DefaultTTL)
}

// Resolve returns the prompt governing a request for docID. The
// per-document override wins when present and non-empty; an empty
// override is treated as absent.
func (s *PromptStore) Resolve(docID string) string {
	if docID != "" {
		if item := s.overrides.Get(docID); item != nil {
			if v := item.Value(); strings.TrimSpace(v) != "" {
				return v
			}
		}
	}
	return s.Default()
}

// LoadPresets reads named prompt presets from a TOML file mapping preset
// names to instruction text. A missing file is reported via the returned
// error; callers decide whether that matters.
func (s *PromptStore) LoadPresets(path string) error {
	presets := map[string]string{}
	if _, err := toml.DecodeFile(path, &presets); err != nil {
		return err
	}
	s.mu.Lock()
	s.presets = presets
	s.mu.Unlock()
	return nil
}

// Preset returns the instruction text for a named preset.
func (s *PromptStore) Preset(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.presets[name]
	return text, ok
}

// Presets returns a copy of the loaded preset map.
func (s *PromptStore) Presets() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.presets))
	for k, v := range s.presets {
		out[k] = v
	}
	return out
}
