package model

import (
	"context"
	"encoding/json"
	"maps"
)

// KeyID is the attribute whose presence makes Update write to an
// existing record instead of creating a new one.
const KeyID = "id"

// Attributes is a schema-less bag of record fields.
type Attributes map[string]any

// Model is a record of a named resource (a table or a collection).
// It is not safe for concurrent use.
type Model struct {
	resource string
	attrs    Attributes
}

// New binds a model to resource and fills it with the given attributes,
// later mappings overriding earlier ones. It panics on an empty resource.
func New(resource string, attrs ...Attributes) *Model {
	if resource == "" {
		panic("model: empty resource name")
	}

	m := &Model{resource: resource, attrs: make(Attributes)}
	for _, a := range attrs {
		m.MergeAttributes(a)
	}
	return m
}

func (m *Model) Resource() string {
	return m.resource
}

// Get returns the value of the attribute and whether it is set.
func (m *Model) Get(name string) (any, bool) {
	v, ok := m.attrs[name]
	return v, ok
}

// Value is Get without the presence flag; missing attributes are nil.
func (m *Model) Value(name string) any {
	return m.attrs[name]
}

func (m *Model) Set(name string, value any) *Model {
	m.attrs[name] = value
	return m
}

// Has reports whether the attribute is present, whatever its value.
func (m *Model) Has(name string) bool {
	_, ok := m.attrs[name]
	return ok
}

func (m *Model) Unset(name string) *Model {
	delete(m.attrs, name)
	return m
}

func (m *Model) ID() (any, bool) {
	return m.Get(KeyID)
}

// Attributes returns a shallow copy of the attribute bag.
func (m *Model) Attributes() Attributes {
	return maps.Clone(m.attrs)
}

// MergeAttributes overrides the attributes present in partial and keeps
// the rest untouched.
func (m *Model) MergeAttributes(partial Attributes) *Model {
	maps.Copy(m.attrs, partial)
	return m
}

func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.attrs)
}

// All fetches every record of the model's resource. The receiver is only
// used for its resource name.
func (m *Model) All(ctx context.Context) ([]*Model, error) {
	rows, err := Connection().All(ctx, m.resource)
	if err != nil {
		return nil, err
	}

	models := make([]*Model, 0, len(rows))
	for _, row := range rows {
		models = append(models, New(m.resource, row))
	}
	return models, nil
}

// Find fetches the record with the given id into a new model. A missing
// record is reported with an error matching ErrNotFound.
func (m *Model) Find(ctx context.Context, id any) (*Model, error) {
	row, err := Connection().Find(ctx, m.resource, id)
	if err != nil {
		return nil, err
	}

	if row == nil {
		return nil, &NotFoundError{Resource: m.resource, ID: id}
	}

	return New(m.resource, row), nil
}

// Update merges partial into the model and persists the result: records
// that carry an identifier are updated, the others are created, and
// fields assigned on creation are merged back.
//
// The merge is kept even if storage fails, so the model always holds the
// intended state. The returned model is the receiver.
func (m *Model) Update(ctx context.Context, partial Attributes) (*Model, error) {
	m.MergeAttributes(partial)

	if id, ok := m.ID(); ok {
		return m, Connection().Update(ctx, m.resource, id, m.Attributes())
	}

	assigned, err := Connection().Create(ctx, m.resource, m.Attributes())
	if err != nil {
		return m, err
	}

	return m.MergeAttributes(assigned), nil
}
