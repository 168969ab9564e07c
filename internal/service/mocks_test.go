package service

import (
	"context"
	"sync"

	"storefront/api/internal/models"
	"storefront/api/internal/payment"
	"storefront/api/internal/repository"
)

// fakeUserStore keeps users in memory, keyed by id and email.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return models.User{}, repository.ErrEmailTaken
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]models.User, 0, len(f.users))
	for id := int64(1); id <= f.nextID; id++ {
		if user, ok := f.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) add(user models.User) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user
}

// fakeTokenStore mirrors the transactional semantics of the real token
// repository: Rotate deletes and inserts under one lock, so exactly one of
// any set of concurrent rotations wins.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]models.RefreshToken)}
}

func (f *fakeTokenStore) Store(ctx context.Context, token models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeTokenStore) Rotate(ctx context.Context, oldToken string, next models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[oldToken]; !ok {
		return repository.ErrTokenNotFound
	}
	delete(f.tokens, oldToken)
	f.tokens[next.Token] = next
	return nil
}

func (f *fakeTokenStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

// fakeOrderStore reproduces the compare-and-set of MarkPaid under a lock.
type fakeOrderStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]models.Order
	lines  map[int64][]models.OrderLine
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[int64]models.Order),
		lines:  make(map[int64][]models.OrderLine),
	}
}

func (f *fakeOrderStore) Create(ctx context.Context, order models.Order) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	order.ID = f.nextID
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id int64) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return models.Order{}, repository.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderStore) List(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	orders := make([]models.Order, 0, len(f.orders))
	for id := int64(1); id <= f.nextID; id++ {
		if order, ok := f.orders[id]; ok {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (f *fakeOrderStore) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []models.Order
	for id := int64(1); id <= f.nextID; id++ {
		if order, ok := f.orders[id]; ok && order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (f *fakeOrderStore) Lines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lines[orderID], nil
}

func (f *fakeOrderStore) MarkPaid(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok || order.Paid {
		return repository.ErrAlreadyPaid
	}
	order.Paid = true
	f.orders[id] = order
	return nil
}

func (f *fakeOrderStore) setLines(orderID int64, lines []models.OrderLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines[orderID] = lines
}

// fakeCheckout records requests and returns a canned session.
type fakeCheckout struct {
	mu        sync.Mutex
	createErr error
	calls     int
	lastItems []payment.LineItem
}

func (f *fakeCheckout) CreateSession(ctx context.Context, clientReference string, items []payment.LineItem) (payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastItems = items
	if f.createErr != nil {
		return payment.Session{}, f.createErr
	}
	return payment.Session{
		ID:  "cs_test_1",
		URL: "https://checkout.example/pay/cs_test_1",
	}, nil
}
