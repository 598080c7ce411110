package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/mitchellh/copystructure"

	"github.com/nikmy/dynmodel/internal/model"
	"github.com/nikmy/dynmodel/pkg/errors"
)

var ErrAlreadyExists = errors.Error("record already exists")

// Command keeps every resource in process memory. Ids are compared by
// their printed form, so 1 and "1" address the same record. Rows are
// deep-copied on the way in and out.
type Command struct {
	mu     sync.RWMutex
	tables map[string]*table
}

type table struct {
	order []string
	rows  map[string]model.Attributes
}

func New() *Command {
	return &Command{tables: make(map[string]*table)}
}

func (c *Command) All(_ context.Context, resource string) ([]model.Attributes, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[resource]
	if !ok {
		return []model.Attributes{}, nil
	}

	rows := make([]model.Attributes, 0, len(t.order))
	for _, key := range t.order {
		row, err := clone(t.rows[key])
		if err != nil {
			return nil, errors.WrapFailf(err, "copy %s/%s", resource, key)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Command) Find(_ context.Context, resource string, id any) (model.Attributes, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.lookup(resource, id)
	if !ok {
		return nil, &model.NotFoundError{Resource: resource, ID: id}
	}

	return clone(row)
}

// Update merges attrs into the stored row.
func (c *Command) Update(_ context.Context, resource string, id any, attrs model.Attributes) error {
	fields, err := clone(attrs)
	if err != nil {
		return errors.WrapFail(err, "copy attributes")
	}
	delete(fields, model.KeyID)

	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.lookup(resource, id)
	if !ok {
		return &model.NotFoundError{Resource: resource, ID: id}
	}

	for k, v := range fields {
		row[k] = v
	}
	return nil
}

// Create stores a new row, assigning a random UUID when attrs carry no id.
func (c *Command) Create(_ context.Context, resource string, attrs model.Attributes) (model.Attributes, error) {
	row, err := clone(attrs)
	if err != nil {
		return nil, errors.WrapFail(err, "copy attributes")
	}

	id, ok := row[model.KeyID]
	if !ok {
		generated, err := uuid.NewV4()
		if err != nil {
			return nil, errors.WrapFail(err, "generate id")
		}
		id = generated.String()
		row[model.KeyID] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.lookup(resource, id); exists {
		return nil, errors.Wrapf(ErrAlreadyExists, "%s/%v", resource, id)
	}

	c.insert(resource, row)
	return model.Attributes{model.KeyID: id}, nil
}

func (c *Command) lookup(resource string, id any) (model.Attributes, bool) {
	t, ok := c.tables[resource]
	if !ok {
		return nil, false
	}

	row, ok := t.rows[key(id)]
	return row, ok
}

// insert expects the caller to hold the write lock and row to carry an id.
func (c *Command) insert(resource string, row model.Attributes) {
	t, ok := c.tables[resource]
	if !ok {
		t = &table{rows: make(map[string]model.Attributes)}
		c.tables[resource] = t
	}

	k := key(row[model.KeyID])
	if _, exists := t.rows[k]; !exists {
		t.order = append(t.order, k)
	}
	t.rows[k] = row
}

func key(id any) string {
	return fmt.Sprint(id)
}

func clone(attrs model.Attributes) (model.Attributes, error) {
	if attrs == nil {
		return make(model.Attributes), nil
	}

	copied, err := copystructure.Copy(attrs)
	if err != nil {
		return nil, err
	}
	return copied.(model.Attributes), nil
}
