// Package topics holds the static catalog of advice categories.
package topics

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/agronova/internal/domain"
)

//go:embed topics.yaml
var defaultCatalog []byte

type catalogFile struct {
	Topics []topicEntry `yaml:"topics"`
}

type topicEntry struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Icon        string   `yaml:"icon"`
	Focus       string   `yaml:"focus"`
	Samples     []string `yaml:"samples"`
}

// Registry is an immutable, ordered topic catalog.
type Registry struct {
	order []domain.TopicID
	byID  map[domain.TopicID]domain.Topic
}

// Default returns the registry built from the embedded catalog.
func Default() (*Registry, error) {
	return Parse(defaultCatalog)
}

// Parse builds a registry from a YAML catalog document.
func Parse(data []byte) (*Registry, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing topic catalog: %w", err)
	}

	r := &Registry{
		byID: make(map[domain.TopicID]domain.Topic, len(f.Topics)),
	}

	for i, e := range f.Topics {
		id := domain.TopicID(strings.TrimSpace(e.ID))
		if id == "" {
			return nil, fmt.Errorf("topic #%d has no id", i)
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("duplicate topic id %q", id)
		}

		t := domain.Topic{
			ID:            id,
			Label:         e.Label,
			Description:   e.Description,
			Icon:          e.Icon,
			SamplePrompts: append([]string(nil), e.Samples...),
		}
		if focus := strings.TrimSpace(e.Focus); focus != "" {
			t.Instruction = "\n\nFocus on: " + focus
		}

		r.byID[id] = t
		r.order = append(r.order, id)
	}

	return r, nil
}

// Lookup resolves a topic id. Unknown ids report false.
func (r *Registry) Lookup(id domain.TopicID) (domain.Topic, bool) {
	if r == nil {
		return domain.Topic{}, false
	}
	t, ok := r.byID[id]
	if !ok {
		return domain.Topic{}, false
	}
	t.SamplePrompts = append([]string(nil), t.SamplePrompts...)
	return t, true
}

// All returns the catalog in declaration order.
func (r *Registry) All() []domain.Topic {
	out := make([]domain.Topic, 0, len(r.order))
	for _, id := range r.order {
		t, _ := r.Lookup(id)
		out = append(out, t)
	}
	return out
}

// SamplePrompts returns every sample prompt, grouped by topic in catalog order.
func (r *Registry) SamplePrompts() []string {
	var out []string
	for _, id := range r.order {
		out = append(out, r.byID[id].SamplePrompts...)
	}
	return out
}

var _ domain.TopicLookup = (*Registry)(nil)
