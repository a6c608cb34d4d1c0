package agent

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"financeos/pkg/core/llm"

	"gopkg.in/yaml.v2"
)

// Config is the roles section of config/models.yaml.
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Roles          map[string]RoleConfig `yaml:"roles"`
}

// RoleConfig lets one role pin a provider or model different from the global
// default. The classifier wants cheap deterministic JSON while the assistant
// wants a conversational model, so overrides per role matter here.
type RoleConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Model       string `yaml:"model"`    // Optional override
	Description string `yaml:"description"`
}

// Manager routes role-tagged prompts to the configured LLM provider.
type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"openai":   &llm.OpenAIProvider{},
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
		},
	}
}

// LoadConfig reads the roles config from a yaml file. A missing file is not
// an error: the zero Config falls back to OpenAI for everything.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{ActiveProvider: "openai"}, nil
		}
		return cfg, fmt.Errorf("CONFIG_READ_ERROR: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("CONFIG_PARSE_ERROR: %v", err)
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = "openai"
	}
	return cfg, nil
}

func (m *Manager) GetProvider(role string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 1. Check for role-specific override
	if rc, ok := m.config.Roles[role]; ok && rc.Provider != "" {
		if p, ok := m.providers[rc.Provider]; ok {
			return p
		}
	}

	// 2. Use global active provider
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}

	// 3. Fallback
	return m.providers["openai"]
}

// ExecutePrompt handles instruction adaptation before sending to the model.
// A role-level model override is injected into options unless the caller
// already set one.
func (m *Manager) ExecutePrompt(ctx context.Context, role string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(role)

	m.mu.RLock()
	rc := m.config.Roles[role]
	m.mu.RUnlock()
	if rc.Model != "" {
		if options == nil {
			options = map[string]interface{}{}
		}
		if _, set := options["model"]; !set {
			options["model"] = rc.Model
		}
	}

	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	fmt.Printf("[AGENT] Global provider set to: %s\n", newProvider)
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// Providers returns the registered provider names, sorted.
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterProvider swaps in a provider implementation, used by tests to
// install mocks.
func (m *Manager) RegisterProvider(name string, p llm.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = p
}
