package ruleconfig

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Permissions is what a rule plugin declared it needs beyond pure
// computation: filesystem roots it may read/write and hosts it may reach
// over the network. Both are empty by default, which wazero enforces as
// "no access" simply by not wiring the corresponding host imports.
type Permissions struct {
	Filesystem []string `json:"filesystem,omitempty" msgpack:"filesystem,omitempty"`
	Network    []string `json:"network,omitempty" msgpack:"network,omitempty"`
}

// Manifest is what a loaded rule plugin reports about itself via its
// get_manifest export.
type Manifest struct {
	Name           string             `json:"name" msgpack:"name"`
	Version        string             `json:"version" msgpack:"version"`
	Description    string             `json:"description,omitempty" msgpack:"description,omitempty"`
	Fixable        bool               `json:"fixable" msgpack:"fixable"`
	NodeTypes      []string           `json:"node_types,omitempty" msgpack:"node_types,omitempty"`
	Schema         *jsonschema.Schema `json:"schema,omitempty" msgpack:"schema,omitempty"`
	IsolationLevel string             `json:"isolation_level,omitempty" msgpack:"isolation_level,omitempty"`
	Languages      []string           `json:"languages,omitempty" msgpack:"languages,omitempty"`
	Capabilities   []string           `json:"capabilities,omitempty" msgpack:"capabilities,omitempty"`
	Permissions    Permissions        `json:"permissions,omitempty" msgpack:"permissions,omitempty"`
}

// WithDescription sets Description and returns the manifest for chaining.
func (m Manifest) WithDescription(d string) Manifest {
	m.Description = d
	return m
}

// WithFixable sets Fixable and returns the manifest for chaining.
func (m Manifest) WithFixable(f bool) Manifest {
	m.Fixable = f
	return m
}

// WithNodeTypes sets NodeTypes and returns the manifest for chaining.
func (m Manifest) WithNodeTypes(nodeTypes []string) Manifest {
	m.NodeTypes = nodeTypes
	return m
}

// ValidateOptions checks configured options against the manifest's
// declared schema. A manifest without a schema accepts anything.
func (m Manifest) ValidateOptions(options json.RawMessage) error {
	if m.Schema == nil {
		return nil
	}
	resolved, err := m.Schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolving schema for rule %s: %w", m.Name, err)
	}
	if len(options) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(options, &value); err != nil {
		return fmt.Errorf("decoding options for rule %s: %w", m.Name, err)
	}
	if err := resolved.Validate(value); err != nil {
		return fmt.Errorf("options for rule %s failed validation: %w", m.Name, err)
	}
	return nil
}

// HandlesNode reports whether the manifest declared interest in the given
// AST node type name. An empty NodeTypes list means "every node type".
func (m Manifest) HandlesNode(nodeType string) bool {
	if len(m.NodeTypes) == 0 {
		return true
	}
	for _, t := range m.NodeTypes {
		if t == nodeType {
			return true
		}
	}
	return false
}
