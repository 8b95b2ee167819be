package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind tags a Node.
type Kind string

const (
	KindEntry     Kind = "ENTRY"
	KindPage      Kind = "PAGE"
	KindComponent Kind = "COMPONENT"
)

// Node is a compiled page, component or the application entry.
type Node struct {
	// Kind is the node variant.
	Kind Kind `json:"type"`

	// Config is the parsed config file of the node (nil when absent).
	Config *NodeConfig `json:"config,omitempty"`

	// StyleImports lists the raw @import targets of the node's style file.
	StyleImports []string `json:"styleImports,omitempty"`
}

// Components returns the node's usingComponents, or nil.
func (n *Node) Components() UsingComponents {
	if n == nil || n.Config == nil {
		return nil
	}
	return n.Config.UsingComponents
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind}
	if n.Config != nil {
		out.Config = n.Config.Clone()
	}
	if n.StyleImports != nil {
		out.StyleImports = append([]string(nil), n.StyleImports...)
	}
	return out
}

// ComponentRef is one usingComponents entry.
type ComponentRef struct {
	Name string
	Path string

	// Raw holds a value that is not an import path, written back verbatim.
	Raw json.RawMessage
}

// IsPath reports whether the entry declares an import path.
func (r ComponentRef) IsPath() bool {
	return r.Raw == nil
}

// UsingComponents is an ordered name -> import path mapping.
type UsingComponents []ComponentRef

// Get returns the import path declared for name.
func (u UsingComponents) Get(name string) (string, bool) {
	for _, ref := range u {
		if ref.Name == name && ref.IsPath() {
			return ref.Path, true
		}
	}
	return "", false
}

// Set replaces the path for name, appending a new entry if name is unknown.
func (u *UsingComponents) Set(name, path string) {
	for i := range *u {
		if (*u)[i].Name == name {
			(*u)[i].Path = path
			(*u)[i].Raw = nil
			return
		}
	}
	*u = append(*u, ComponentRef{Name: name, Path: path})
}

// MarshalJSON encodes the mapping as an object, keeping declaration order.
func (u UsingComponents) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ref := range u {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ref.Name)
		if err != nil {
			return nil, err
		}
		val := []byte(ref.Raw)
		if ref.IsPath() {
			if val, err = json.Marshal(ref.Path); err != nil {
				return nil, err
			}
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object in declaration order. Anything that is not
// an object decodes to an empty mapping. Values that are not strings are kept
// in Raw.
func (u *UsingComponents) UnmarshalJSON(data []byte) error {
	*u = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read usingComponents: %w", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read usingComponents key: %w", err)
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to read usingComponents[%s]: %w", name, err)
		}
		var path string
		if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &path) != nil {
			*u = append(*u, ComponentRef{Name: name, Raw: raw})
			continue
		}
		*u = append(*u, ComponentRef{Name: name, Path: path})
	}
	return nil
}

// NodeConfig is a parsed page/component/app config file.
type NodeConfig struct {
	// UsingComponents is the ordered custom component declaration.
	UsingComponents UsingComponents

	// Component marks a custom component config ("component": true).
	Component bool

	// Extra holds every other field verbatim.
	Extra map[string]json.RawMessage
}

// Clone returns a deep copy of the config.
func (c *NodeConfig) Clone() *NodeConfig {
	out := &NodeConfig{Component: c.Component}
	if c.UsingComponents != nil {
		out.UsingComponents = append(UsingComponents(nil), c.UsingComponents...)
	}
	if c.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// SetExtra encodes value and stores it under key.
func (c *NodeConfig) SetExtra(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if c.Extra == nil {
		c.Extra = make(map[string]json.RawMessage)
	}
	c.Extra[key] = data
	return nil
}

// MarshalJSON writes the known fields followed by Extra in key order.
func (c NodeConfig) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(c.Extra)+2)
	for k, v := range c.Extra {
		fields[k] = v
	}
	if c.Component {
		fields["component"] = json.RawMessage("true")
	}
	if len(c.UsingComponents) > 0 {
		data, err := c.UsingComponents.MarshalJSON()
		if err != nil {
			return nil, err
		}
		fields["usingComponents"] = data
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(k)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON splits usingComponents and component from the other fields.
func (c *NodeConfig) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	*c = NodeConfig{}
	if raw, ok := fields["usingComponents"]; ok {
		if err := c.UsingComponents.UnmarshalJSON(raw); err != nil {
			return err
		}
		delete(fields, "usingComponents")
	}
	if raw, ok := fields["component"]; ok {
		var flag bool
		if err := json.Unmarshal(raw, &flag); err == nil {
			c.Component = flag
			delete(fields, "component")
		}
	}
	if len(fields) > 0 {
		c.Extra = make(map[string]json.RawMessage, len(fields))
		for k, v := range fields {
			var buf bytes.Buffer
			if err := json.Compact(&buf, v); err != nil {
				return fmt.Errorf("failed to parse config field %s: %w", k, err)
			}
			c.Extra[k] = buf.Bytes()
		}
	}
	return nil
}

// Table is the compiled-node table keyed by logical path.
type Table map[string]*Node

// Entry returns the entry node and its logical path.
func (t Table) Entry() (string, *Node, bool) {
	for _, key := range t.Keys() {
		if t[key].Kind == KindEntry {
			return key, t[key], true
		}
	}
	return "", nil, false
}

// Keys returns the logical paths in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, n := range t {
		out[k] = n.Clone()
	}
	return out
}
