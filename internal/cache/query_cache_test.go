package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilders(t *testing.T) {
	id := uuid.MustParse("5f1c3c1e-8a38-4b53-9f43-6a3f3f0e9d11")

	assert.Equal(t, "stores:owner-1", StoreListKey("owner-1"))
	assert.Equal(t, "settings:"+id.String(), SettingsKey(id))
	assert.Equal(t, "return:"+id.String(), ReturnRequestKey(id))
	assert.Equal(t, "returns:"+id.String()+":all", ReturnListKey(id, ""))
	assert.Equal(t, "returns:"+id.String()+":approved", ReturnListKey(id, "approved"))
	assert.Equal(t, "returns:owner:owner-1", OwnerReturnListKey("owner-1"))
	assert.Equal(t, "dashboard:owner-1:all", DashboardKey("owner-1", ""))

	assert.True(t, len(ReturnListKey(id, "pending")) > len(ReturnListPrefix(id)))
	assert.Contains(t, ReturnListKey(id, "pending"), ReturnListPrefix(id))
	assert.Contains(t, DashboardKey("owner-1", id.String()), DashboardPrefix("owner-1"))
	assert.NotContains(t, OwnerReturnListKey("owner-1"), ReturnListPrefix(id))
}

func TestNoopCache_GetOrLoad(t *testing.T) {
	type row struct {
		Name  string `json:"name"`
		Total int    `json:"total"`
	}

	var dst []row
	calls := 0
	err := NoopCache{}.GetOrLoad(context.Background(), "k", &dst, 0, func() (any, error) {
		calls++
		return []row{{Name: "a", Total: 1}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []row{{Name: "a", Total: 1}}, dst)

	err = NoopCache{}.GetOrLoad(context.Background(), "k", &dst, 0, func() (any, error) {
		calls++
		return nil, errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.Equal(t, 2, calls)
}

func TestNoopCache_Disabled(t *testing.T) {
	c := NewQueryCache(nil, 0)

	assert.IsType(t, NoopCache{}, c)
	assert.Error(t, c.Health(context.Background()))
	assert.Nil(t, c.Stats())
	c.Invalidate(context.Background(), "k")
	c.InvalidatePrefix(context.Background(), "p")
}
