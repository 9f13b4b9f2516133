package repositories

import (
	"context"
	"errors"
	"time"

	"pazar/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrStatusChanged     = errors.New("status changed concurrently")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadySold       = errors.New("listing already sold")
	ErrAlreadyFeatured   = errors.New("listing already featured")
	ErrDuplicateEscrow   = errors.New("active escrow already exists")
	ErrEmailTaken        = errors.New("email already taken")
)

// UserRepository covers user rows and the cached balance column.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// LockUser reads the row under an exclusive lock for the rest of the transaction.
	LockUser(ctx context.Context, id uint) (*models.User, error)
	ListUserIDs(ctx context.Context) ([]uint, error)
	// AdjustBalance atomically adds delta and returns the new balance. A debit fails
	// with ErrInsufficientFunds instead of taking the balance below zero; a credit
	// always applies, even onto a negative balance left by reconciliation.
	AdjustBalance(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error)
	// SetBalance overwrites the cached balance. Only reconciliation may call it.
	SetBalance(ctx context.Context, userID uint, balance decimal.Decimal) error
	UpdateSavedCards(ctx context.Context, userID uint, cards models.SavedCards) error
	SetBanned(ctx context.Context, userID uint, banned bool) error
}

type ListingRepository interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListingByID(ctx context.Context, id uint) (*models.Listing, error)
	LockListing(ctx context.Context, id uint) (*models.Listing, error)
	// UpdateListing saves editable fields; it fails with ErrAlreadySold once sold.
	UpdateListing(ctx context.Context, listing *models.Listing) error
	SetListingStatus(ctx context.Context, id uint, status string) error
	// MarkListingSold flips is_sold exactly once.
	MarkListingSold(ctx context.Context, id uint) error
	// SetListingFeatured features a listing that is not currently featured.
	SetListingFeatured(ctx context.Context, id uint, until time.Time) error
	ClearExpiredFeatures(ctx context.Context, now time.Time) (int64, error)
}

// TransactionFilter narrows ListTransactionsByUser. Zero values mean no filter.
type TransactionFilter struct {
	Type  models.TransactionType
	Limit int
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	LockTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	// TransitionTransaction applies change only while the row is still in status from;
	// otherwise it returns ErrStatusChanged.
	TransitionTransaction(ctx context.Context, id uuid.UUID, from models.TransactionStatus, change models.StatusChange) error
	// FindActiveEscrow returns the buyer's non-terminal escrow on the listing, or
	// ErrNotFound when there is none.
	FindActiveEscrow(ctx context.Context, listingID, buyerID uint) (*models.Transaction, error)
	// ListTransactionsByUser returns rows where the user is buyer or seller, newest first.
	ListTransactionsByUser(ctx context.Context, userID uint, filter TransactionFilter) ([]models.Transaction, error)
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessagesByReceiver(ctx context.Context, userID uint, limit int) ([]models.Message, error)
}

type PromotionRepository interface {
	CreatePromotion(ctx context.Context, p *models.Promotion) error
	GetPromotionByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	LockPromotion(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	TransitionPromotion(ctx context.Context, id uuid.UUID, from, to models.PromotionStatus, transactionID *uuid.UUID) error
	ExpirePromotions(ctx context.Context, now time.Time) (int64, error)
}

// Store is the unit of work used by the services. Methods called on the Store passed to
// ExecuteInTransaction's callback run inside a single database transaction.
type Store interface {
	UserRepository
	ListingRepository
	TransactionRepository
	MessageRepository
	PromotionRepository

	ExecuteInTransaction(ctx context.Context, fn func(Store) error) error
}
