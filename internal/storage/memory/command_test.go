package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nikmy/dynmodel/internal/model"
	"github.com/nikmy/dynmodel/pkg/errors"
)

func TestCommand_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	c := New()

	assigned, err := c.Create(ctx, "posts", model.Attributes{"title": "Foo"})
	require.NoError(t, err)

	id, ok := assigned[model.KeyID]
	require.True(t, ok)
	require.NotEmpty(t, id)

	row, err := c.Find(ctx, "posts", id)
	require.NoError(t, err)
	require.Equal(t, model.Attributes{"id": id, "title": "Foo"}, row)

	_, err = c.Find(ctx, "comments", id)
	require.True(t, model.IsNotFound(err))
}

func TestCommand_Create_givenID(t *testing.T) {
	ctx := context.Background()
	c := New()

	assigned, err := c.Create(ctx, "posts", model.Attributes{"id": 1, "title": "Foo"})
	require.NoError(t, err)
	require.Equal(t, model.Attributes{"id": 1}, assigned)

	_, err = c.Create(ctx, "posts", model.Attributes{"id": "1"})
	require.True(t, errors.Is(err, ErrAlreadyExists))

	row, err := c.Find(ctx, "posts", "1")
	require.NoError(t, err)
	require.Equal(t, "Foo", row["title"])
}

func TestCommand_All(t *testing.T) {
	ctx := context.Background()
	c := New()

	rows, err := c.All(ctx, "posts")
	require.NoError(t, err)
	require.Empty(t, rows)

	for _, title := range []string{"a", "b", "c"} {
		_, err := c.Create(ctx, "posts", model.Attributes{"id": title, "title": title})
		require.NoError(t, err)
	}

	rows, err = c.All(ctx, "posts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, title := range []string{"a", "b", "c"} {
		require.Equal(t, title, rows[i]["title"])
	}
}

func TestCommand_Update(t *testing.T) {
	ctx := context.Background()
	c := New()

	_, err := c.Create(ctx, "posts", model.Attributes{"id": 1, "title": "Foo", "content": "Much Content"})
	require.NoError(t, err)

	err = c.Update(ctx, "posts", 1, model.Attributes{"id": 1, "title": "Bar"})
	require.NoError(t, err)

	row, err := c.Find(ctx, "posts", 1)
	require.NoError(t, err)
	require.Equal(t, model.Attributes{"id": 1, "title": "Bar", "content": "Much Content"}, row)

	err = c.Update(ctx, "posts", 2, model.Attributes{"title": "Bar"})
	require.True(t, model.IsNotFound(err))
}

func TestCommand_isolatesStoredRows(t *testing.T) {
	ctx := context.Background()
	c := New()

	tags := []any{"go"}
	attrs := model.Attributes{"id": 1, "tags": tags}
	_, err := c.Create(ctx, "posts", attrs)
	require.NoError(t, err)

	tags[0] = "changed"
	attrs["title"] = "sneaky"

	row, err := c.Find(ctx, "posts", 1)
	require.NoError(t, err)
	require.Equal(t, model.Attributes{"id": 1, "tags": []any{"go"}}, row)

	row["tags"].([]any)[0] = "changed again"

	row, err = c.Find(ctx, "posts", 1)
	require.NoError(t, err)
	require.Equal(t, []any{"go"}, row["tags"])
}

func TestCommand_withModel(t *testing.T) {
	ctx := context.Background()
	model.SetConnection(New())
	t.Cleanup(func() { model.SetConnection(nil) })

	created, err := model.New("posts").Update(ctx, model.Attributes{"title": "Foo"})
	require.NoError(t, err)

	id, ok := created.ID()
	require.True(t, ok)

	found, err := model.New("posts").Find(ctx, id)
	require.NoError(t, err)

	_, err = found.Update(ctx, model.Attributes{"title": "Bar", "author": "John"})
	require.NoError(t, err)

	all, err := model.New("posts").All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, model.Attributes{"id": id, "title": "Bar", "author": "John"}, all[0].Attributes())
}
