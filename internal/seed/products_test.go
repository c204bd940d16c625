package seed_test

import (
	"strconv"
	"testing"

	"catalog/internal/repositories"
	"catalog/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducts_SequentialIDs(t *testing.T) {
	products := seed.Products()
	require.Len(t, products, 16)

	for i, p := range products {
		assert.Equal(t, strconv.Itoa(i+1), p.ID)
		assert.NotEmpty(t, p.ProductImage)
		assert.GreaterOrEqual(t, len(p.Name), 3)
	}
}

func TestLoad(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	require.NoError(t, seed.Load(repo))

	products, err := repo.GetAll()
	require.NoError(t, err)
	assert.Equal(t, seed.Products(), products)

	// Seeding twice collides on the fixed ids.
	assert.ErrorIs(t, seed.Load(repo), repositories.ErrDuplicateProduct)
}
