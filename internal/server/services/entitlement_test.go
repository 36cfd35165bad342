package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitlement_ExplicitUnlock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEntitlements(t)

	ok, err := svc.IsEntitled(ctx, "u1", catalog.Zen)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.SetUnlocked(ctx, "u1", catalog.Zen))
	require.NoError(t, svc.SetUnlocked(ctx, "u1", catalog.Zen), "repeat is a no-op")

	ok, err = svc.IsEntitled(ctx, "u1", catalog.Zen)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsEntitled(ctx, "u1", catalog.Shadow)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsEntitled(ctx, "u2", catalog.Zen)
	require.NoError(t, err)
	assert.False(t, ok, "other subjects are unaffected")
}

func TestEntitlement_FreePersonaAlwaysEntitled(t *testing.T) {
	svc, _ := newEntitlements(t)
	ok, err := svc.IsEntitled(context.Background(), "nobody", catalog.Stoic)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEntitlement_UnknownFeature(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEntitlements(t)

	_, err := svc.IsEntitled(ctx, "u1", "astrology")
	assert.ErrorIs(t, err, common.ErrUnknownFeature)
	assert.ErrorIs(t, svc.SetUnlocked(ctx, "u1", "astrology"), common.ErrUnknownFeature)
}

func TestEntitlement_LifetimeCoversEveryFeature(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEntitlements(t)

	require.NoError(t, svc.SetUnlocked(ctx, "u1", catalog.Lifetime))

	for _, id := range catalog.Default().IDs() {
		ok, err := svc.IsEntitled(ctx, "u1", id)
		require.NoError(t, err)
		assert.True(t, ok, id)
	}
	ok, err := svc.IsEntitled(ctx, "u1", catalog.Lifetime)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEntitlement_LifetimeCoversFeaturesAddedLater(t *testing.T) {
	ctx := context.Background()
	db, m := newStore(t)

	before := NewEntitlementService(db, m, catalog.Default())
	require.NoError(t, before.SetUnlocked(ctx, "u1", catalog.Lifetime))

	products := append(catalog.Default().Products(), catalog.Product{
		ID:          "sage",
		Kind:        catalog.KindPersona,
		Price:       catalog.Price{AmountMinorUnits: 1299, Currency: "usd", DisplayName: "Sage"},
		Instruction: "Answer like an old sage.",
	})
	extended, err := catalog.New(products...)
	require.NoError(t, err)

	after := NewEntitlementService(db, m, extended)
	ok, err := after.IsEntitled(ctx, "u1", "sage")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = after.IsEntitled(ctx, "u2", "sage")
	require.NoError(t, err)
	assert.False(t, ok)

	unlocked, err := after.ListUnlocked(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, unlocked.Features, catalog.FeatureID("sage"))
}

func TestEntitlement_ListUnlocked(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEntitlements(t)

	got, err := svc.ListUnlocked(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, got.Lifetime)
	assert.Equal(t, []catalog.FeatureID{catalog.Stoic}, got.Features)

	require.NoError(t, svc.SetUnlocked(ctx, "u1", catalog.Shadow))
	got, err = svc.ListUnlocked(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []catalog.FeatureID{catalog.Stoic, catalog.Shadow}, got.Features)

	require.NoError(t, svc.SetUnlocked(ctx, "u1", catalog.Lifetime))
	got, err = svc.ListUnlocked(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.Lifetime)
	assert.Equal(t, catalog.Default().IDs(), got.Features)
}

func TestEntitlement_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	svc, db := newEntitlements(t)
	require.NoError(t, db.Close())

	_, err := svc.IsEntitled(ctx, "u1", catalog.Zen)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.ErrorIs(t, svc.SetUnlocked(ctx, "u1", catalog.Zen), common.ErrStoreUnavailable)
	_, err = svc.ListUnlocked(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}
