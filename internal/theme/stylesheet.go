package theme

import (
	"sort"
	"strings"
	"sync"
)

// StyleSheet is the global style scope of one storefront: CSS custom
// properties on the root element plus root attributes.
type StyleSheet struct {
	mu    sync.RWMutex
	props map[string]string
	attrs map[string]string
}

func NewStyleSheet() *StyleSheet {
	return &StyleSheet{
		props: make(map[string]string),
		attrs: make(map[string]string),
	}
}

func (s *StyleSheet) SetProperty(name, value string) {
	s.mu.Lock()
	s.props[name] = value
	s.mu.Unlock()
}

func (s *StyleSheet) SetAttribute(name, value string) {
	s.mu.Lock()
	s.attrs[name] = value
	s.mu.Unlock()
}

func (s *StyleSheet) Property(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.props[name]
	return v, ok
}

func (s *StyleSheet) Attribute(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.attrs[name]
	return v, ok
}

// Properties returns a copy of every custom property.
func (s *StyleSheet) Properties() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.props))
	for k, v := range s.props {
		out[k] = v
	}
	return out
}

func (s *StyleSheet) Attributes() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.attrs))
	for k, v := range s.attrs {
		out[k] = v
	}
	return out
}

// CSS renders the properties as a :root block, sorted by name.
func (s *StyleSheet) CSS() string {
	props := s.Properties()
	attrs := s.Attributes()

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root")
	if id, ok := attrs[AttrTheme]; ok && id != "" {
		b.WriteString(`[` + AttrTheme + `="` + id + `"]`)
		b.WriteString(", :root")
	}
	b.WriteString(" {\n")
	for _, name := range names {
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(props[name])
		b.WriteString(";\n")
	}
	b.WriteString("}\n")

	return b.String()
}
