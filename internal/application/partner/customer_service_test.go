package partner

import (
	"context"
	"testing"
	"time"

	"github.com/erp/pos/internal/application/concurrency"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomerService(t *testing.T) (*CustomerService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	policy := concurrency.Policy{MaxAttempts: 3, BaseDelay: time.Microsecond, MaxDelay: time.Millisecond}
	return NewCustomerService(store.Customers, store.Invoices, store.Sequences, policy, nil), store
}

func TestCustomerService_Register(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCustomerService(t)

	ana, err := svc.Register(ctx, RegisterCustomerRequest{Name: "Ana Mora", Type: "occasional", SeniorDiscountEligible: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), ana.ID)
	assert.Equal(t, "OCCASIONAL", ana.Type)
	assert.True(t, ana.SeniorDiscountEligible)

	sol, err := svc.Register(ctx, RegisterCustomerRequest{ID: 304560789, Name: "Sol S.A.", Type: "CORPORATE", Contact: "compras@sol.cr"})
	require.NoError(t, err)
	assert.Equal(t, int64(304560789), sol.ID)
	assert.Equal(t, "compras@sol.cr", sol.Contact)

	_, err = svc.Register(ctx, RegisterCustomerRequest{ID: 304560789, Name: "Again", Type: "OCCASIONAL"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = svc.Register(ctx, RegisterCustomerRequest{Name: "Corp", Type: "CORPORATE"})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = svc.Register(ctx, RegisterCustomerRequest{Name: "Corp", Type: "CORPORATE", Contact: "x", SeniorDiscountEligible: true})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = svc.Register(ctx, RegisterCustomerRequest{Name: "Who", Type: "VIP"})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestCustomerService_Updates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCustomerService(t)
	c, err := svc.Register(ctx, RegisterCustomerRequest{Name: "Ana", Type: "OCCASIONAL"})
	require.NoError(t, err)

	resp, err := svc.Rename(ctx, c.ID, RenameCustomerRequest{Name: "Ana Mora"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Mora", resp.Name)
	assert.Equal(t, 2, resp.Version)

	resp, err = svc.SetSeniorDiscount(ctx, c.ID, SetSeniorDiscountRequest{Eligible: true})
	require.NoError(t, err)
	assert.True(t, resp.SeniorDiscountEligible)

	_, err = svc.SetContact(ctx, c.ID, SetContactRequest{Contact: "someone"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	resp, err = svc.ChangeType(ctx, c.ID, ChangeTypeRequest{Type: "CORPORATE", Contact: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "CORPORATE", resp.Type)
	assert.False(t, resp.SeniorDiscountEligible)

	_, err = svc.SetSeniorDiscount(ctx, c.ID, SetSeniorDiscountRequest{Eligible: true})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.Rename(ctx, 404, RenameCustomerRequest{Name: "x"})
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestCustomerService_Points(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCustomerService(t)
	c, err := svc.Register(ctx, RegisterCustomerRequest{Name: "Ana", Type: "OCCASIONAL", SeniorDiscountEligible: true})
	require.NoError(t, err)

	resp, err := svc.AccruePoints(ctx, c.ID, PointsRequest{Points: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.LoyaltyPoints)

	resp, err = svc.RedeemPoints(ctx, c.ID, PointsRequest{Points: 4, Reason: "coffee"})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.LoyaltyPoints)

	_, err = svc.RedeemPoints(ctx, c.ID, PointsRequest{Points: 7})
	assert.ErrorIs(t, err, shared.ErrInsufficientPoints)

	got, err := svc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.LoyaltyPoints)
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestCustomerService(t)
	busy, err := svc.Register(ctx, RegisterCustomerRequest{Name: "Busy", Type: "OCCASIONAL"})
	require.NoError(t, err)
	idle, err := svc.Register(ctx, RegisterCustomerRequest{Name: "Idle", Type: "OCCASIONAL"})
	require.NoError(t, err)

	inv, err := invoicing.NewInvoice(1, invoicing.CustomerRef{ID: busy.ID, Name: busy.Name, Type: partner.CustomerTypeOccasional}, "")
	require.NoError(t, err)
	require.NoError(t, store.Invoices.Save(ctx, inv))

	err = svc.Delete(ctx, busy.ID)
	assert.ErrorIs(t, err, shared.NewStateError("CUSTOMER_IN_USE", ""))
	assert.Equal(t, shared.KindState, shared.KindOf(err))

	require.NoError(t, svc.Delete(ctx, idle.ID))
	assert.Equal(t, shared.KindNotFound, shared.KindOf(svc.Delete(ctx, idle.ID)))

	list, err := svc.List(ctx, CustomerListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Busy", list[0].Name)
}

func TestCustomerService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCustomerService(t)
	for _, req := range []RegisterCustomerRequest{
		{Name: "Ana Mora", Type: "OCCASIONAL"},
		{Name: "Sol S.A.", Type: "CORPORATE", Contact: "Sol"},
		{Name: "Luis Mora", Type: "OCCASIONAL"},
	} {
		_, err := svc.Register(ctx, req)
		require.NoError(t, err)
	}

	moras, err := svc.List(ctx, CustomerListFilter{Search: "mora"})
	require.NoError(t, err)
	assert.Len(t, moras, 2)

	corporate, err := svc.List(ctx, CustomerListFilter{Type: "CORPORATE"})
	require.NoError(t, err)
	require.Len(t, corporate, 1)
	assert.Equal(t, "Sol S.A.", corporate[0].Name)
}
