package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Persona represents a named system prompt configuration
type Persona struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	SystemPrompt string  `json:"system_prompt"`
	Model        string  `json:"model,omitempty"`       // Preferred model (optional)
	Temperature  float64 `json:"temperature,omitempty"` // Preferred temperature (optional)
}

// PersonaConfig stores all personas
type PersonaConfig struct {
	Personas       []Persona `json:"personas"`
	DefaultPersona string    `json:"default_persona,omitempty"`
}

// DefaultPersonas returns pre-configured personas
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Name:         "default",
			Description:  "No system prompt",
			SystemPrompt: "",
		},
		{
			Name:        "coder",
			Description: "Expert programmer assistant",
			SystemPrompt: `You are an expert software developer. When answering:
- Prefer working code over prose
- Explain non-obvious decisions briefly
- Point out edge cases and pitfalls
- Keep answers focused on what was asked`,
		},
		{
			Name:        "writer",
			Description: "Creative writing assistant",
			SystemPrompt: `You are a creative writing assistant. Your goal is to:
- Help with creative writing, storytelling, and content creation
- Provide suggestions that enhance narrative flow
- Maintain consistent tone and style
- Be concise but evocative in descriptions`,
		},
		{
			Name:        "terse",
			Description: "Minimal, direct answers",
			SystemPrompt: `Answer as briefly as possible. No preamble, no filler,
no restating the question. One sentence when one sentence suffices.`,
		},
	}
}

// GetPersonasPath returns the path to the personas file
func GetPersonasPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "personas.json"), nil
}

// LoadPersonas loads the persona configuration
func LoadPersonas() (*PersonaConfig, error) {
	path, err := GetPersonasPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PersonaConfig{
				Personas:       DefaultPersonas(),
				DefaultPersona: "default",
			}, nil
		}
		return nil, fmt.Errorf("failed to read personas: %w", err)
	}

	var cfg PersonaConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}

	if len(cfg.Personas) == 0 {
		cfg.Personas = DefaultPersonas()
	}
	if cfg.DefaultPersona == "" {
		cfg.DefaultPersona = "default"
	}

	return &cfg, nil
}

// SavePersonas persists the persona configuration
func SavePersonas(cfg *PersonaConfig) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal personas: %w", err)
	}

	path := filepath.Join(configDir, "personas.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write personas: %w", err)
	}

	return nil
}

// GetPersona returns a persona by name
func GetPersona(name string) (*Persona, error) {
	cfg, err := LoadPersonas()
	if err != nil {
		return nil, err
	}

	for i := range cfg.Personas {
		if cfg.Personas[i].Name == name {
			return &cfg.Personas[i], nil
		}
	}

	return nil, fmt.Errorf("persona not found: %s", name)
}

// GetDefaultPersona returns the configured default persona
func GetDefaultPersona() (*Persona, error) {
	cfg, err := LoadPersonas()
	if err != nil {
		return nil, err
	}

	for i := range cfg.Personas {
		if cfg.Personas[i].Name == cfg.DefaultPersona {
			return &cfg.Personas[i], nil
		}
	}

	return nil, fmt.Errorf("default persona not found: %s", cfg.DefaultPersona)
}

// AddPersona adds a persona, rejecting duplicate names
func AddPersona(p Persona) error {
	cfg, err := LoadPersonas()
	if err != nil {
		return err
	}

	for _, existing := range cfg.Personas {
		if existing.Name == p.Name {
			return fmt.Errorf("persona already exists: %s", p.Name)
		}
	}

	cfg.Personas = append(cfg.Personas, p)
	return SavePersonas(cfg)
}

// DeletePersona removes a persona by name
func DeletePersona(name string) error {
	if name == "default" {
		return fmt.Errorf("cannot delete the default persona")
	}

	cfg, err := LoadPersonas()
	if err != nil {
		return err
	}

	for i, p := range cfg.Personas {
		if p.Name == name {
			cfg.Personas = append(cfg.Personas[:i], cfg.Personas[i+1:]...)
			if cfg.DefaultPersona == name {
				cfg.DefaultPersona = "default"
			}
			return SavePersonas(cfg)
		}
	}

	return fmt.Errorf("persona not found: %s", name)
}

// SetDefaultPersona marks an existing persona as the default
func SetDefaultPersona(name string) error {
	cfg, err := LoadPersonas()
	if err != nil {
		return err
	}

	for _, p := range cfg.Personas {
		if p.Name == name {
			cfg.DefaultPersona = name
			return SavePersonas(cfg)
		}
	}

	return fmt.Errorf("persona not found: %s", name)
}
