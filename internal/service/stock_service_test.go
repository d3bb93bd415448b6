package service

import (
	"context"
	"errors"
	"testing"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/daSkciN/estoque-app-front/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stockProducts = []domain.Product{
	{ID: 1, Name: "Mouse Gamer"},
	{ID: 2, Name: "Teclado"},
	{ID: 3, Name: "Mousepad"},
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{1, 2, 3}},
		{"mouse", []int64{1, 3}},
		{"  MOUSE ", []int64{1, 3}},
		{"tec", []int64{2}},
		{"monitor", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Search(stockProducts, tt.query)
			var ids []int64
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStockProducts_FailureNotifies(t *testing.T) {
	inbox := notify.NewInbox(0)
	_, err := NewStockService(&mockAPI{productsErr: errUpstream}, nil).Products(context.Background(), inbox)

	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	require.Equal(t, 1, inbox.Len())
	assert.Equal(t, "Erro ao carregar produtos", inbox.Drain()[0].Title)
}

func TestStockProducts_Success(t *testing.T) {
	got, err := NewStockService(&mockAPI{products: stockProducts}, nil).Products(context.Background(), notify.Discard{})

	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRegisterIntake_Success(t *testing.T) {
	api := &mockAPI{}
	inbox := notify.NewInbox(0)

	entry, err := NewStockService(api, nil).RegisterIntake(context.Background(), inbox,
		domain.StockIntakeForm{ProductID: ptr(int64(2)), Quantity: ptr(15)})

	require.NoError(t, err)
	assert.Equal(t, domain.StockEntry{ProductID: 2, Quantity: 15}, entry)
	assert.Equal(t, []domain.StockEntry{entry}, api.entries)
	toasts := inbox.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Entrada registrada", toasts[0].Title)
	assert.Equal(t, "15 unidades adicionadas ao estoque.", toasts[0].Description)
}

func TestRegisterIntake_RequiresProduct(t *testing.T) {
	for name, form := range map[string]domain.StockIntakeForm{
		"missing": {Quantity: ptr(1)},
		"zero":    {ProductID: ptr(int64(0)), Quantity: ptr(1)},
	} {
		t.Run(name, func(t *testing.T) {
			api := &mockAPI{}
			inbox := notify.NewInbox(0)

			_, err := NewStockService(api, nil).RegisterIntake(context.Background(), inbox, form)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "select a product", ve.Reason)
			assert.Empty(t, api.entries)
			assert.Equal(t, "Selecione um produto", inbox.Drain()[0].Title)
		})
	}
}

func TestRegisterIntake_RejectsNonPositiveQuantity(t *testing.T) {
	api := &mockAPI{}

	_, err := NewStockService(api, nil).RegisterIntake(context.Background(), notify.Discard{},
		domain.StockIntakeForm{ProductID: ptr(int64(2)), Quantity: ptr(0)})

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "quantity", ve.Field)
	assert.Empty(t, api.entries)
}

func TestRegisterIntake_RemoteFailure(t *testing.T) {
	api := &mockAPI{entryErr: errUpstream}
	inbox := notify.NewInbox(0)

	_, err := NewStockService(api, nil).RegisterIntake(context.Background(), inbox,
		domain.StockIntakeForm{ProductID: ptr(int64(2)), Quantity: ptr(3)})

	assert.True(t, domain.IsNetwork(err))
	assert.Equal(t, "Erro ao registrar entrada", inbox.Drain()[0].Title)
}
