package memory

import (
	"context"
	"sync"
	"testing"

	"shophub/internal/domain"
	"shophub/internal/repository"
	"shophub/internal/repository/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) repository.Storage {
		return NewStorage()
	})
}

func TestStorage_ReturnsCopies(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	seller, err := s.CreateUser(ctx, domain.User{Email: "s@shophub.test", Name: "Seller", Role: domain.RoleSeller})
	require.NoError(t, err)
	product, err := s.CreateProduct(ctx, domain.Product{
		SellerID: seller.ID,
		Name:     "Bowl",
		Slug:     "bowl",
		Price:    domain.MustMoney("12.00"),
		Images:   domain.StringList{"a.png"},
	})
	require.NoError(t, err)

	product.Name = "Mutated"
	product.Images[0] = "mutated.png"

	stored, err := s.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bowl", stored.Name)
	assert.Equal(t, "a.png", stored.FirstImage())
}

func TestStorage_ConcurrentCartAdds(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	seller, err := s.CreateUser(ctx, domain.User{Email: "seller@shophub.test", Name: "Seller", Role: domain.RoleSeller})
	require.NoError(t, err)
	buyer, err := s.CreateUser(ctx, domain.User{Email: "buyer@shophub.test", Name: "Buyer"})
	require.NoError(t, err)
	product, err := s.CreateProduct(ctx, domain.Product{SellerID: seller.ID, Name: "Cup", Slug: "cup", Price: domain.MustMoney("2.00"), Stock: 100})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddToCart(ctx, domain.CartItem{UserID: buyer.ID, ProductID: product.ID, Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := s.ListCartItems(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 50, items[0].Quantity)
}
