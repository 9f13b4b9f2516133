package listing

import (
	"context"
	"strings"
	"sync"
	"testing"

	"pazar/internal/config"
	domainerrors "pazar/internal/errors"
	"pazar/internal/models"
	"pazar/internal/repositories/memory"
	"pazar/internal/services/notification"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recorder) Publish(ctx context.Context, e notification.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func setup(t *testing.T) (Service, *memory.Store, *recorder, uint) {
	t.Helper()
	store := memory.NewStore()
	seller := &models.User{Email: "seller@example.com", Name: "Seller"}
	require.NoError(t, store.CreateUser(context.Background(), seller))
	pub := &recorder{}
	return NewService(store, pub, config.DefaultMarket()), store, pub, seller.ID
}

func bike() Input {
	return Input{
		Title:       "Road bike",
		Description: "Barely used",
		Price:       decimal.NewFromInt(4500),
		Category:    "ikinci-el",
		SubCategory: "Spor",
		City:        "İzmir",
	}
}

func TestCreate(t *testing.T) {
	svc, _, _, sellerID := setup(t)
	ctx := context.Background()

	l, err := svc.Create(ctx, sellerID, bike())
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusPending, l.Status)
	assert.Equal(t, "İkinci El ve Sıfır Alışveriş", l.Category, "slug resolves to the canonical name")
	assert.False(t, l.IsSold)

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"empty title", func(in *Input) { in.Title = " " }},
		{"zero price", func(in *Input) { in.Price = decimal.Zero }},
		{"sub-cent price", func(in *Input) { in.Price = decimal.RequireFromString("10.001") }},
		{"unknown category", func(in *Input) { in.Category = "Spaceships" }},
		{"wrong sub-category", func(in *Input) { in.SubCategory = "Arsa" }},
		{"unknown city", func(in *Input) { in.City = "Atlantis" }},
		{"title too long", func(in *Input) { in.Title = strings.Repeat("a", 151) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bike()
			tt.mutate(&in)
			_, err := svc.Create(ctx, sellerID, in)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidListing)
		})
	}

	t.Run("every bad field is reported", func(t *testing.T) {
		in := bike()
		in.Title = ""
		in.Price = decimal.Zero
		in.City = "Atlantis"
		_, err := svc.Create(ctx, sellerID, in)
		var de *domainerrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Len(t, de.Fields, 3)
		assert.Contains(t, de.Fields, "title")
		assert.Contains(t, de.Fields, "price")
		assert.Contains(t, de.Fields, "city")
	})
}

func TestUpdate(t *testing.T) {
	svc, store, _, sellerID := setup(t)
	ctx := context.Background()
	l, err := svc.Create(ctx, sellerID, bike())
	require.NoError(t, err)
	_, err = svc.Approve(ctx, l.ID)
	require.NoError(t, err)

	t.Run("only the owner may edit", func(t *testing.T) {
		_, err := svc.Update(ctx, l.ID, sellerID+1, bike())
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("location change keeps approval", func(t *testing.T) {
		in := bike()
		in.City = "Ankara"
		updated, err := svc.Update(ctx, l.ID, sellerID, in)
		require.NoError(t, err)
		assert.Equal(t, models.ListingStatusApproved, updated.Status)
	})

	t.Run("price change returns to review", func(t *testing.T) {
		in := bike()
		in.Price = decimal.NewFromInt(4000)
		updated, err := svc.Update(ctx, l.ID, sellerID, in)
		require.NoError(t, err)
		assert.Equal(t, models.ListingStatusPending, updated.Status)
	})

	t.Run("sold listings are frozen", func(t *testing.T) {
		require.NoError(t, store.MarkListingSold(ctx, l.ID))
		_, err := svc.Update(ctx, l.ID, sellerID, bike())
		assert.ErrorIs(t, err, domainerrors.ErrListingNotEditable)
	})
}

func TestReviewNotifiesOwner(t *testing.T) {
	svc, _, pub, sellerID := setup(t)
	ctx := context.Background()
	l, err := svc.Create(ctx, sellerID, bike())
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusApproved, approved.Status)

	rejected, err := svc.Reject(ctx, l.ID, " blurry photos ")
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusRejected, rejected.Status)

	require.Len(t, pub.events, 2)
	assert.Equal(t, notification.EventListingApproved, pub.events[0].Type)
	assert.Equal(t, sellerID, pub.events[0].RecipientID)
	assert.Equal(t, notification.EventListingRejected, pub.events[1].Type)
	assert.Equal(t, "blurry photos", pub.events[1].Reason)

	_, err = svc.Approve(ctx, 999)
	assert.ErrorIs(t, err, domainerrors.ErrListingNotFound)
	assert.Len(t, pub.events, 2)
}

func TestSetUserBanned(t *testing.T) {
	svc, store, _, sellerID := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.SetUserBanned(ctx, sellerID, true))
	u, err := store.GetUserByID(ctx, sellerID)
	require.NoError(t, err)
	assert.True(t, u.IsBanned)

	assert.ErrorIs(t, svc.SetUserBanned(ctx, 999, true), domainerrors.ErrUserNotFound)
}
