package core

import (
	"fmt"
	"sync"
)

var (
	registry   = make(map[EntityKind]*RecordSchema)
	registryMu sync.RWMutex
)

// Register adds a schema to the registry.
// Panics if the kind is already registered or the schema is incomplete.
func Register(s *RecordSchema) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[s.Kind]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Kind))
	}
	if s.Table == "" || s.IDField == "" || s.IDPrefix == "" {
		panic(fmt.Sprintf("schema %s: table, id field and id prefix are required", s.Kind))
	}
	if _, ok := s.Field(s.IDField); !ok {
		panic(fmt.Sprintf("schema %s: id field %q is not a field", s.Kind, s.IDField))
	}
	for _, k := range s.UniqueKeys {
		if _, ok := s.Field(k.Field); !ok {
			panic(fmt.Sprintf("schema %s: unique key %q is not a field", s.Kind, k.Field))
		}
	}

	registry[s.Kind] = s
}

// Get returns the schema registered for kind.
func Get(kind EntityKind) (*RecordSchema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[kind]
	return s, ok
}

// Lookup parses name and returns its schema.
func Lookup(name string) (*RecordSchema, error) {
	kind, err := ParseEntityKind(name)
	if err != nil {
		return nil, err
	}
	s, ok := Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}
	return s, nil
}

// All returns every registered schema in Kinds order.
func All() []*RecordSchema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]*RecordSchema, 0, len(registry))
	for _, k := range Kinds {
		if s, ok := registry[k]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Clear removes all registered schemas.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[EntityKind]*RecordSchema)
}
