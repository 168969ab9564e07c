package handlers

import (
	"context"
	"sync"

	"storefront/api/internal/models"
	"storefront/api/internal/payment"
	"storefront/api/internal/repository"
)

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

type fakeOrderStore struct {
	mu       sync.Mutex
	nextID   int64
	orders   map[int64]models.Order
	lines    map[int64][]models.OrderLine
	products *fakeProductStore
}

func newFakeOrderStore(products *fakeProductStore) *fakeOrderStore {
	return &fakeOrderStore{
		orders:   make(map[int64]models.Order),
		lines:    make(map[int64][]models.OrderLine),
		products: products,
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
		if f.products != nil {
			if product, err := f.products.GetByID(ctx, order.Items[i].ProductID); err == nil {
				f.lines[order.ID] = append(f.lines[order.ID], models.OrderLine{
					Product:  product,
					Quantity: order.Items[i].Quantity,
				})
			}
		}
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

type fakeProductStore struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[int64]models.Product)}
}

func (f *fakeProductStore) Create(ctx context.Context, product models.Product) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	product.ID = f.nextID
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductStore) GetByID(ctx context.Context, id int64) (models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return models.Product{}, repository.ErrProductNotFound
	}
	return product, nil
}

func (f *fakeProductStore) List(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	products := make([]models.Product, 0, len(f.products))
	for id := int64(1); id <= f.nextID; id++ {
		if product, ok := f.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (f *fakeProductStore) Update(ctx context.Context, product models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductStore) UpdateImage(ctx context.Context, id int64, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.Image = imageURL
	f.products[id] = product
	return nil
}

func (f *fakeProductStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeCategoryStore struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]models.Category
	items      map[int64][]int64
	products   *fakeProductStore
}

func newFakeCategoryStore(products *fakeProductStore) *fakeCategoryStore {
	return &fakeCategoryStore{
		categories: make(map[int64]models.Category),
		items:      make(map[int64][]int64),
		products:   products,
	}
}

func (f *fakeCategoryStore) Create(ctx context.Context, category models.Category) (models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	category.ID = f.nextID
	f.categories[category.ID] = category
	return category, nil
}

func (f *fakeCategoryStore) List(ctx context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	categories := make([]models.Category, 0, len(f.categories))
	for id := int64(1); id <= f.nextID; id++ {
		if category, ok := f.categories[id]; ok {
			categories = append(categories, category)
		}
	}
	return categories, nil
}

func (f *fakeCategoryStore) ListProducts(ctx context.Context, categoryID int64) ([]models.Product, error) {
	f.mu.Lock()
	ids := f.items[categoryID]
	_, ok := f.categories[categoryID]
	f.mu.Unlock()
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}

	var products []models.Product
	for _, id := range ids {
		if product, err := f.products.GetByID(ctx, id); err == nil {
			products = append(products, product)
		}
	}
	return products, nil
}

func (f *fakeCategoryStore) AddProduct(ctx context.Context, categoryID, productID int64) (models.CategoryItem, error) {
	if _, err := f.products.GetByID(ctx, productID); err != nil {
		return models.CategoryItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[categoryID]; !ok {
		return models.CategoryItem{}, repository.ErrCategoryNotFound
	}
	f.items[categoryID] = append(f.items[categoryID], productID)
	return models.CategoryItem{
		ID:         int64(len(f.items[categoryID])),
		CategoryID: categoryID,
		ProductID:  productID,
	}, nil
}

func (f *fakeCategoryStore) RemoveProduct(ctx context.Context, categoryID, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[categoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	ids := f.items[categoryID]
	for i, id := range ids {
		if id == productID {
			f.items[categoryID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeCategoryStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(f.categories, id)
	delete(f.items, id)
	return nil
}

type fakeImageStore struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeImageStore) PutProductImage(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, objectKey)
	return "https://img.example/" + objectKey, nil
}

type fakeCheckout struct {
	mu        sync.Mutex
	calls     int
	createErr error
}

func (f *fakeCheckout) CreateSession(ctx context.Context, clientReference string, items []payment.LineItem) (payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.createErr != nil {
		return payment.Session{}, f.createErr
	}
	return payment.Session{ID: "cs_test_1", URL: "https://checkout.example/pay/cs_test_1"}, nil
}
