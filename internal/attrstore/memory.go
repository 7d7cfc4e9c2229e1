package attrstore

import (
	"context"
	"sort"
)

// Memory is an in-memory attribute store for tests and ephemeral use.
type Memory struct {
	records map[string]Attrs
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: map[string]Attrs{}}
}

func (m *Memory) Get(_ context.Context, id string) (Attrs, error) {
	attrs, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return cloneAttrs(attrs), nil
}

func (m *Memory) Put(_ context.Context, id string, attrs Attrs) error {
	m.records[id] = cloneAttrs(attrs)
	return nil
}

func (m *Memory) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) Remove(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func cloneAttrs(attrs Attrs) Attrs {
	if attrs == nil {
		return nil
	}
	out := make(Attrs, len(attrs))
	for name, value := range attrs {
		out[name] = append([]byte(nil), value...)
	}
	return out
}
