package registry

import (
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/polyprompt/providers/ai"
)

//go:embed catalog.yaml
var builtinCatalog string

// Registry is an immutable set of provider descriptors keyed by id.
type Registry struct {
	byID map[string]Descriptor
	ids  []string
}

// New builds a registry from descriptors. Every descriptor is validated and
// ids must be unique.
func New(descriptors ...Descriptor) (*Registry, error) {
	registry := &Registry{byID: make(map[string]Descriptor, len(descriptors))}
	for _, descriptor := range descriptors {
		if err := descriptor.Validate(); err != nil {
			return nil, err
		}
		if _, exists := registry.byID[descriptor.ID]; exists {
			return nil, fmt.Errorf("provider %q registered twice", descriptor.ID)
		}
		registry.byID[descriptor.ID] = descriptor.clone()
		registry.ids = append(registry.ids, descriptor.ID)
	}
	slices.Sort(registry.ids)
	return registry, nil
}

// Describe returns the descriptor for id. An unknown id yields an error
// matching ai.ErrUnknownProvider.
func (r *Registry) Describe(id string) (Descriptor, error) {
	descriptor, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Descriptor{}, ai.NewError(ai.KindUnknownProvider, "unknown provider %q", id)
	}
	return descriptor.clone(), nil
}

// List returns every descriptor sorted by id.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id].clone())
	}
	return out
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.ids)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry built from the embedded catalog.
// The catalog ships with the binary, so a parse failure is a build defect and
// panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		registry, err := Load(strings.NewReader(builtinCatalog))
		if err != nil {
			panic(fmt.Sprintf("registry: embedded catalog is invalid: %v", err))
		}
		defaultRegistry = registry
	})
	return defaultRegistry
}

type catalogFile struct {
	Providers []catalogEntry `yaml:"providers"`
}

type catalogEntry struct {
	ID                 string            `yaml:"id"`
	Name               string            `yaml:"name"`
	Shape              Shape             `yaml:"shape"`
	Streaming          StreamKind        `yaml:"streaming"`
	Auth               Auth              `yaml:"auth"`
	DefaultModel       string            `yaml:"default_model"`
	Endpoints          []Endpoint        `yaml:"endpoints"`
	Supported          []ai.ParamKey     `yaml:"supported"`
	APIKeyEnv          string            `yaml:"api_key_env"`
	Headers            map[string]string `yaml:"headers"`
	CredentialOptional bool              `yaml:"credential_optional"`
	ThinkTags          bool              `yaml:"think_tags"`
}

// Load parses a YAML catalog (a top-level "providers" list) into a registry.
func Load(r io.Reader) (*Registry, error) {
	var file catalogFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse provider catalog: %w", err)
	}

	descriptors := make([]Descriptor, 0, len(file.Providers))
	for _, entry := range file.Providers {
		descriptors = append(descriptors, Descriptor{
			ID:                 strings.ToLower(entry.ID),
			Name:               entry.Name,
			Shape:              entry.Shape,
			Streaming:          entry.Streaming,
			Auth:               entry.Auth,
			DefaultModel:       entry.DefaultModel,
			Endpoints:          entry.Endpoints,
			Supported:          ai.NewParamSet(entry.Supported...),
			APIKeyEnv:          entry.APIKeyEnv,
			Headers:            entry.Headers,
			CredentialOptional: entry.CredentialOptional,
			ThinkTags:          entry.ThinkTags,
		})
	}
	return New(descriptors...)
}
