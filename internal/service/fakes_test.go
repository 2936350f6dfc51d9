package service

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/repository"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/db"
	"github.com/tuanvumaihuynh/retail-pos/pkg/zerror"
)

// assertErrCode asserts that err carries a ZError with the given code.
func assertErrCode(t *testing.T, err error, code string) {
	t.Helper()
	var zErr zerror.ZError
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, code, zErr.Code())
}

// fakeTxStore is implemented by fakes whose state must roll back when
// a transaction callback fails.
type fakeTxStore interface {
	snapshot() (restore func())
}

// fakeDB satisfies db.DB for services that only need WithTx. The
// in-memory repositories below ignore the db handle entirely; WithTx
// restores the registered stores when the callback errors, mirroring a
// rolled-back transaction.
type fakeDB struct {
	stores []fakeTxStore
}

func newFakeDB(stores ...fakeTxStore) *fakeDB {
	return &fakeDB{stores: stores}
}

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (f *fakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (f *fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	return nil
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	restores := make([]func(), 0, len(f.stores))
	for _, store := range f.stores {
		restores = append(restores, store.snapshot())
	}

	if err := txFunc(f); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]model.Product
}

func newFakeProductRepo(products ...model.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[uuid.UUID]model.Product)}
	for _, product := range products {
		repo.products[product.ID] = product
	}
	return repo
}

func (r *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r *fakeProductRepo) snapshot() func() {
	saved := make(map[uuid.UUID]model.Product, len(r.products))
	for id, product := range r.products {
		saved[id] = product
	}
	return func() { r.products = saved }
}

func (r *fakeProductRepo) CreateProduct(_ context.Context, product model.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return product, nil
}

func (r *fakeProductRepo) ListProducts(_ context.Context, params repository.ListProductsParams) ([]model.Product, error) {
	products := make([]model.Product, 0, len(r.products))
	for _, product := range r.products {
		if params.ActiveOnly && !product.IsActive {
			continue
		}
		if params.Category != nil && product.Category != *params.Category {
			continue
		}
		if params.LowStockOnly && !product.IsLowStock() {
			continue
		}
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *fakeProductRepo) ListLowStockProducts(_ context.Context) ([]model.Product, error) {
	products := make([]model.Product, 0)
	for _, product := range r.products {
		if product.IsActive && product.IsLowStock() {
			products = append(products, product)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Stock < products[j].Stock
	})
	return products, nil
}

func (r *fakeProductRepo) UpdateProduct(_ context.Context, product model.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) SetStock(_ context.Context, id uuid.UUID, stock int) error {
	product, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	product.Stock = stock
	r.products[id] = product
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) (bool, error) {
	product, ok := r.products[id]
	if !ok || product.Stock < qty {
		return false, nil
	}
	product.Stock -= qty
	r.products[id] = product
	return true, nil
}

func (r *fakeProductRepo) CountProducts(context.Context) (int64, error) {
	return int64(len(r.products)), nil
}

type fakeCartRepo struct {
	carts map[uuid.UUID]model.Cart       // by user id
	items map[uuid.UUID][]model.CartItem // by cart id
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{
		carts: make(map[uuid.UUID]model.Cart),
		items: make(map[uuid.UUID][]model.CartItem),
	}
}

func (r *fakeCartRepo) WithDB(db.DB) repository.CartRepository { return r }

func (r *fakeCartRepo) snapshot() func() {
	savedCarts := make(map[uuid.UUID]model.Cart, len(r.carts))
	for id, cart := range r.carts {
		savedCarts[id] = cart
	}
	savedItems := make(map[uuid.UUID][]model.CartItem, len(r.items))
	for id, items := range r.items {
		savedItems[id] = append([]model.CartItem(nil), items...)
	}
	return func() {
		r.carts = savedCarts
		r.items = savedItems
	}
}

func (r *fakeCartRepo) GetOrCreateCart(_ context.Context, userID uuid.UUID) (model.Cart, error) {
	if cart, ok := r.carts[userID]; ok {
		return cart, nil
	}
	cart := model.Cart{ID: uuid.New(), UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.carts[userID] = cart
	return cart, nil
}

func (r *fakeCartRepo) ListItems(_ context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	return append([]model.CartItem(nil), r.items[cartID]...), nil
}

func (r *fakeCartRepo) SetItemQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	for i, item := range r.items[cartID] {
		if item.ProductID == productID {
			r.items[cartID][i].Quantity = quantity
			return nil
		}
	}
	r.items[cartID] = append(r.items[cartID], model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	})
	return nil
}

func (r *fakeCartRepo) RemoveItem(_ context.Context, cartID, productID uuid.UUID) error {
	return r.RemoveItems(context.Background(), cartID, []uuid.UUID{productID})
}

func (r *fakeCartRepo) RemoveItems(_ context.Context, cartID uuid.UUID, productIDs []uuid.UUID) error {
	drop := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		drop[id] = struct{}{}
	}
	kept := make([]model.CartItem, 0, len(r.items[cartID]))
	for _, item := range r.items[cartID] {
		if _, ok := drop[item.ProductID]; !ok {
			kept = append(kept, item)
		}
	}
	r.items[cartID] = kept
	return nil
}

func (r *fakeCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) error {
	r.items[cartID] = nil
	return nil
}

type fakeSaleRepo struct {
	sales []model.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{}
}

func (r *fakeSaleRepo) WithDB(db.DB) repository.SaleRepository { return r }

func (r *fakeSaleRepo) snapshot() func() {
	saved := append([]model.Sale(nil), r.sales...)
	return func() { r.sales = saved }
}

func (r *fakeSaleRepo) CreateSale(_ context.Context, sale model.Sale) error {
	r.sales = append(r.sales, sale)
	return nil
}

func (r *fakeSaleRepo) GetSale(_ context.Context, id uuid.UUID) (model.Sale, error) {
	for _, sale := range r.sales {
		if sale.ID == id {
			return sale, nil
		}
	}
	return model.Sale{}, repository.ErrNotFound
}

func (r *fakeSaleRepo) ListSales(_ context.Context, params repository.ListSalesParams) ([]model.Sale, error) {
	sales := make([]model.Sale, 0)
	for _, sale := range r.sales {
		if params.Start != nil && sale.CreatedAt.Before(*params.Start) {
			continue
		}
		if params.End != nil && !sale.CreatedAt.Before(*params.End) {
			continue
		}
		if params.Status != nil && sale.Status != *params.Status {
			continue
		}
		if params.CustomerID != nil && (sale.CustomerID == nil || *sale.CustomerID != *params.CustomerID) {
			continue
		}
		sales = append(sales, sale)
	}
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return sales, nil
}

func (r *fakeSaleRepo) SumCompletedSales(_ context.Context, since *time.Time) (int64, float64, error) {
	var (
		count int64
		total float64
	)
	for _, sale := range r.sales {
		if sale.Status != model.SaleStatusCompleted {
			continue
		}
		if since != nil && sale.CreatedAt.Before(*since) {
			continue
		}
		count++
		total += sale.TotalAmount
	}
	return count, total, nil
}

type recordedOutboxMsg struct {
	Topic        string
	Payload      json.RawMessage
	PartitionKey *string
}

type fakeOutboxRepo struct {
	msgs []recordedOutboxMsg
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{}
}

func (r *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxRepo) snapshot() func() {
	saved := append([]recordedOutboxMsg(nil), r.msgs...)
	return func() { r.msgs = saved }
}

func (r *fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.msgs = append(r.msgs, recordedOutboxMsg{
		Topic:        params.Topic,
		Payload:      params.Payload,
		PartitionKey: params.PartitionKey,
	})
	return nil
}

func (r *fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func (r *fakeOutboxRepo) topics() []string {
	topics := make([]string, 0, len(r.msgs))
	for _, msg := range r.msgs {
		topics = append(topics, msg.Topic)
	}
	return topics
}

type fakeCache struct {
	values  map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	data, ok := c.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.values, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]model.User
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]model.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) WithDB(db.DB) repository.UserRepository { return r }

func (r *fakeUserRepo) CreateUser(_ context.Context, user model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id uuid.UUID) (model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *fakeUserRepo) ListUsers(_ context.Context, params repository.ListUsersParams) ([]model.User, error) {
	users := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		if params.Role != nil && user.Role != *params.Role {
			continue
		}
		if params.IsActive != nil && user.IsActive != *params.IsActive {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, user model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) SetLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastLogin = &at
	r.users[id] = user
	return nil
}

func (r *fakeUserRepo) CountUsers(context.Context) (repository.UserCounts, error) {
	var counts repository.UserCounts
	for _, user := range r.users {
		counts.Total++
		switch user.Role {
		case model.RoleAdmin:
			counts.Admins++
		case model.RoleStaff:
			counts.Staff++
		case model.RoleCustomer:
			counts.Customers++
		}
		if user.IsActive {
			counts.Active++
		} else {
			counts.Inactive++
		}
	}
	return counts, nil
}
