package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmapp/internal/infra/testdb"
)

func TestConfigRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewConfigRepository(testdb.Open(t))

	require.NoError(t, repo.Upsert(ctx, "PRICE_1", "49"))
	require.NoError(t, repo.Upsert(ctx, "PRICE_2", "99"))
	require.NoError(t, repo.Upsert(ctx, "PRICE_1", "59"))

	values, err := repo.GetValues(ctx, []string{"PRICE_1", "PRICE_2", "PRICE_3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"PRICE_1": "59", "PRICE_2": "99"}, values)
}
