package guard

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicyYAML []byte

// Rule marks a path prefix as public or protected
type Rule struct {
	Prefix string `yaml:"prefix"`
	Public bool   `yaml:"public"`
}

// Policy is the declarative route access table. Keeping the whole policy in
// one table (instead of per-view pattern matches) makes it centrally
// auditable: the longest matching prefix decides.
type Policy struct {
	rules []Rule
}

// LoadPolicy parses a YAML policy document
func LoadPolicy(data []byte) (*Policy, error) {
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse route policy: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("route policy has no rules")
	}

	rules := make([]Rule, len(doc.Rules))
	copy(rules, doc.Rules)
	// Longest prefix first so the most specific rule wins
	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].Prefix) > len(rules[j].Prefix)
	})

	return &Policy{rules: rules}, nil
}

// DefaultPolicy returns the embedded portal route table
func DefaultPolicy() *Policy {
	policy, err := LoadPolicy(defaultPolicyYAML)
	if err != nil {
		// The embedded table is part of the build; failing to parse it is a
		// programming error, not a runtime condition
		panic(err)
	}
	return policy
}

// IsPublic reports whether the path renders without authentication
func (p *Policy) IsPublic(path string) bool {
	for _, rule := range p.rules {
		if matchesPrefix(path, rule.Prefix) {
			return rule.Public
		}
	}
	// Unlisted paths default to public: only the volunteer area is guarded
	return true
}

// RequiresProfile reports whether visiting the path should trigger the
// session bootstrap profile fetch
func (p *Policy) RequiresProfile(path string) bool {
	return !p.IsPublic(path)
}

// matchesPrefix matches on path-segment boundaries so /wolontariusz does not
// capture /wolontariuszka
func matchesPrefix(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "?")
}
