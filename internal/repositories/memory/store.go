// Package memory is an in-process repositories.Store. Transactions are serialized
// behind one store-wide lock and roll back by restoring a snapshot.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"pazar/internal/models"
	"pazar/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type state struct {
	users        map[uint]models.User
	listings     map[uint]models.Listing
	transactions []models.Transaction
	messages     []models.Message
	promotions   map[uuid.UUID]models.Promotion
	nextUserID   uint
	nextListID   uint
	nextMsgID    uint
}

func newState() *state {
	return &state{
		users:      make(map[uint]models.User),
		listings:   make(map[uint]models.Listing),
		promotions: make(map[uuid.UUID]models.Promotion),
	}
}

func (st *state) clone() *state {
	cp := &state{
		users:        make(map[uint]models.User, len(st.users)),
		listings:     make(map[uint]models.Listing, len(st.listings)),
		transactions: append([]models.Transaction(nil), st.transactions...),
		messages:     append([]models.Message(nil), st.messages...),
		promotions:   make(map[uuid.UUID]models.Promotion, len(st.promotions)),
		nextUserID:   st.nextUserID,
		nextListID:   st.nextListID,
		nextMsgID:    st.nextMsgID,
	}
	for id, u := range st.users {
		cp.users[id] = copyUser(u)
	}
	for id, l := range st.listings {
		cp.listings[id] = l
	}
	for id, p := range st.promotions {
		cp.promotions[id] = p
	}
	return cp
}

// Store implements repositories.Store in memory.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
	now  func() time.Time
}

var _ repositories.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState(), now: time.Now}
}

// SetClock replaces the time source used for timestamps and featured checks.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: s.st, inTx: true, now: s.now}); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func copyUser(u models.User) models.User {
	if u.SavedCards != nil {
		u.SavedCards = append(models.SavedCards(nil), u.SavedCards...)
	}
	return u
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	defer s.lock()()
	for _, u := range s.st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrEmailTaken
		}
	}
	s.st.nextUserID++
	now := s.now()
	user.ID = s.st.nextUserID
	user.CreatedAt, user.UpdatedAt = now, now
	user.Balance = decimal.Zero
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.TokenVersion == 0 {
		user.TokenVersion = 1
	}
	s.st.users[user.ID] = copyUser(*user)
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	defer s.lock()()
	u, ok := s.st.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u = copyUser(u)
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.st.users {
		if strings.EqualFold(u.Email, email) {
			u = copyUser(u)
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) LockUser(ctx context.Context, id uint) (*models.User, error) {
	return s.GetUserByID(ctx, id)
}

func (s *Store) ListUserIDs(ctx context.Context) ([]uint, error) {
	defer s.lock()()
	ids := make([]uint, 0, len(s.st.users))
	for id := uint(1); id <= s.st.nextUserID; id++ {
		if _, ok := s.st.users[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) AdjustBalance(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	defer s.lock()()
	u, ok := s.st.users[userID]
	if !ok {
		return decimal.Zero, repositories.ErrNotFound
	}
	next := u.Balance.Add(delta)
	if delta.IsNegative() && next.IsNegative() {
		return decimal.Zero, repositories.ErrInsufficientFunds
	}
	u.Balance = next
	u.UpdatedAt = s.now()
	s.st.users[userID] = u
	return next, nil
}

func (s *Store) SetBalance(ctx context.Context, userID uint, balance decimal.Decimal) error {
	return s.updateUser(userID, func(u *models.User) { u.Balance = balance })
}

func (s *Store) UpdateSavedCards(ctx context.Context, userID uint, cards models.SavedCards) error {
	return s.updateUser(userID, func(u *models.User) {
		u.SavedCards = append(models.SavedCards(nil), cards...)
	})
}

func (s *Store) SetBanned(ctx context.Context, userID uint, banned bool) error {
	return s.updateUser(userID, func(u *models.User) { u.IsBanned = banned })
}

func (s *Store) updateUser(id uint, fn func(*models.User)) error {
	defer s.lock()()
	u, ok := s.st.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = s.now()
	s.st.users[id] = u
	return nil
}
