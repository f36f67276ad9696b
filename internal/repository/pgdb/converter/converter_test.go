package converter

import (
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestOrderConverter_ToArrViewEntity(t *testing.T) {
	now := time.Now()
	models := []OrderViewModel{
		{
			OrderModel:        OrderModel{ID: "o1", UserID: "u1", ProductID: ptr("p1"), Status: "pending", CreatedAt: now},
			PurchaserUsername: ptr("alice"),
			JoinedProductID:   ptr("p1"),
			ProductName:       ptr("Lamp"),
			ProductPrice:      ptr(int64(1999)),
			ProductModel:      ptr("L-1"),
		},
		{
			OrderModel: OrderModel{ID: "o2", UserID: "u2", Status: "shipped", CreatedAt: now},
		},
	}

	views := NewOrderConverterImpl().ToArrViewEntity(models)
	require.Len(t, views, 2)

	require.NotNil(t, views[0].Purchaser)
	assert.Equal(t, "alice", views[0].Purchaser.Username)
	require.NotNil(t, views[0].Product)
	assert.Equal(t, domain.OrderProduct{ID: "p1", Name: "Lamp", Price: 1999, Model: "L-1"}, *views[0].Product)

	assert.Nil(t, views[1].Purchaser)
	assert.Nil(t, views[1].Product)
	assert.Nil(t, views[1].ProductID)
	assert.Equal(t, domain.OrderStatus("shipped"), views[1].Status)
}

func TestProfileConverter_UnknownRole(t *testing.T) {
	_, err := NewProfileConverterImpl().ToEntity(&ProfileModel{ID: "u1", Role: "root"})
	assert.Error(t, err)

	p, err := NewProfileConverterImpl().ToEntity(&ProfileModel{ID: "u1", Username: "bob", Role: "admin"})
	require.NoError(t, err)
	assert.True(t, p.Role.IsAdmin())
}

func TestProductConverter_ToArrViewEntity_Empty(t *testing.T) {
	got := NewProductConverterImpl().ToArrViewEntity(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
