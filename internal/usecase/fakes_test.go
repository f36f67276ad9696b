package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/auth"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// memStore - хранилище в памяти, реализующее репозитории.
type memStore struct {
	mu         sync.Mutex
	seq        int
	categories map[string]*domain.Category
	products   map[string]*domain.Product
	profiles   map[string]*domain.Profile
	users      map[string]*domain.User
	orders     []domain.Order
	outbox     []*OutboxEvent
	writes     int
	failNext   error
}

func newMemStore() *memStore {
	return &memStore{
		categories: make(map[string]*domain.Category),
		products:   make(map[string]*domain.Product),
		profiles:   make(map[string]*domain.Profile),
		users:      make(map[string]*domain.User),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *memStore) addCategory(name string) *domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &domain.Category{ID: s.nextID("cat"), Name: name, CreatedAt: time.Now()}
	s.categories[c.ID] = c
	return c
}

func (s *memStore) addProduct(name, categoryID string, price, stock int64, description *string) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.NewProduct(name, price, "M-1", stock, categoryID)
	p.ID = s.nextID("prod")
	p.Description = description
	s.products[p.ID] = p
	return p
}

func (s *memStore) withCategory(p *domain.Product) domain.ProductWithCategory {
	view := domain.ProductWithCategory{Product: *p}
	if c, ok := s.categories[p.CategoryID]; ok {
		name := c.Name
		view.CategoryName = &name
	}
	return view
}

// categoryRepo

type memCategoryRepo struct{ s *memStore }

func (r memCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return nil, e.ErrConflict
		}
	}
	saved := *c
	saved.ID = r.s.nextID("cat")
	r.s.categories[saved.ID] = &saved
	r.s.writes++
	return &saved, nil
}

func (r memCategoryRepo) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return nil, e.ErrNotFound
	}
	saved := *c
	r.s.categories[c.ID] = &saved
	r.s.writes++
	return &saved, nil
}

func (r memCategoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return e.ErrNotFound
	}
	delete(r.s.categories, id)
	for pid, p := range r.s.products {
		if p.CategoryID == id {
			delete(r.s.products, pid)
		}
	}
	r.s.writes++
	return nil
}

func (r memCategoryRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.categories[id]
	return ok, nil
}

// productRepo

type memProductRepo struct{ s *memStore }

func (r memProductRepo) List(_ context.Context, filter domain.ProductFilter) ([]domain.ProductWithCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []domain.ProductWithCategory
	for _, p := range r.s.products {
		if matchesFilter(filter, p) {
			out = append(out, r.s.withCategory(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// matchesFilter повторяет условие WHERE из ProductRepo.List.
func matchesFilter(f domain.ProductFilter, p *domain.Product) bool {
	if f.HasCategory() && p.CategoryID != f.CategoryID {
		return false
	}

	if f.SearchText == "" {
		return true
	}

	needle := strings.ToLower(f.SearchText)
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}

	return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), needle)
}

func (r memProductRepo) ListFeatured(ctx context.Context, limit int) ([]domain.ProductWithCategory, error) {
	all, err := r.List(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memProductRepo) GetByID(_ context.Context, id string) (*domain.ProductWithCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	view := r.s.withCategory(p)
	return &view, nil
}

func (r memProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	saved := *p
	saved.ID = r.s.nextID("prod")
	r.s.products[saved.ID] = &saved
	r.s.writes++
	return &saved, nil
}

func (r memProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return nil, e.ErrNotFound
	}
	saved := *p
	r.s.products[p.ID] = &saved
	r.s.writes++
	return &saved, nil
}

func (r memProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return e.ErrNotFound
	}
	delete(r.s.products, id)
	for i := range r.s.orders {
		if pid := r.s.orders[i].ProductID; pid != nil && *pid == id {
			r.s.orders[i].ProductID = nil
		}
	}
	r.s.writes++
	return nil
}

func (r memProductRepo) SetImageURL(_ context.Context, id, url string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	p.ImageURL = &url
	r.s.writes++
	saved := *p
	return &saved, nil
}

func (r memProductRepo) DecrementStock(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	if p.Stock <= 0 {
		return nil, e.ErrOutOfStock
	}
	p.Stock--
	r.s.writes++
	saved := *p
	return &saved, nil
}

// profileRepo / userRepo

type memProfileRepo struct{ s *memStore }

func (r memProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	saved := *p
	return &saved, nil
}

func (r memProfileRepo) Create(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.profiles {
		if existing.Username == p.Username {
			return nil, e.ErrConflict
		}
	}
	saved := *p
	saved.CreatedAt = time.Now()
	r.s.profiles[p.ID] = &saved
	r.s.writes++
	return &saved, nil
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, e.ErrConflict
		}
	}
	saved := *u
	saved.ID = r.s.nextID("user")
	r.s.users[saved.ID] = &saved
	r.s.writes++
	return &saved, nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			saved := *u
			return &saved, nil
		}
	}
	return nil, e.ErrNotFound
}

// orderRepo / outboxRepo / statsRepo

type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	saved := *o
	saved.ID = r.s.nextID("order")
	saved.CreatedAt = time.Now().Add(time.Duration(r.s.seq) * time.Millisecond)
	r.s.orders = append(r.s.orders, saved)
	r.s.writes++
	return &saved, nil
}

func (r memOrderRepo) List(_ context.Context, userID *string) ([]domain.OrderView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.OrderView
	for _, o := range r.s.orders {
		if userID != nil && o.UserID != *userID {
			continue
		}
		view := domain.OrderView{Order: o}
		if p, ok := r.s.profiles[o.UserID]; ok {
			view.Purchaser = &domain.OrderPurchaser{Username: p.Username}
		}
		if o.ProductID != nil {
			if p, ok := r.s.products[*o.ProductID]; ok {
				view.Product = &domain.OrderProduct{ID: p.ID, Name: p.Name, Price: p.Price, Model: p.Model}
			}
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memOutboxRepo struct{ s *memStore }

func (r memOutboxRepo) Create(_ context.Context, ev *OutboxEvent) (*OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ev.ID = int64(len(r.s.outbox) + 1)
	r.s.outbox = append(r.s.outbox, ev)
	return ev, nil
}

func (r memOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r memOutboxRepo) MarkAsProcessed(context.Context, int64) error {
	return nil
}

func (r memOutboxRepo) ReleaseToPending(context.Context, int64) error {
	return nil
}

type memStatsRepo struct{ s *memStore }

func (r memStatsRepo) Counts(context.Context) (*domain.DashboardStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return &domain.DashboardStats{
		Profiles:   int64(len(r.s.profiles)),
		Categories: int64(len(r.s.categories)),
		Products:   int64(len(r.s.products)),
		Orders:     int64(len(r.s.orders)),
	}, nil
}

// cache

type memCache struct {
	mu         sync.Mutex
	products   map[string]domain.ProductWithCategory
	gens       map[string]int64
	allGen     int64
	categories []domain.Category
	hasCats    bool
	revoked    map[string]time.Duration
	setCalls   chan struct{}
}

func newMemCache() *memCache {
	return &memCache{
		products: make(map[string]domain.ProductWithCategory),
		gens:     make(map[string]int64),
		revoked:  make(map[string]time.Duration),
		setCalls: make(chan struct{}, 16),
	}
}

func (c *memCache) GetProduct(_ context.Context, id string) (*domain.ProductWithCategory, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *memCache) ProductVersion(_ context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id] + c.allGen, nil
}

func (c *memCache) SetProduct(_ context.Context, p *domain.ProductWithCategory, version int64) error {
	c.mu.Lock()
	if c.gens[p.ID]+c.allGen == version {
		c.products[p.ID] = *p
	}
	c.mu.Unlock()
	c.setCalls <- struct{}{}
	return nil
}

func (c *memCache) DeleteProduct(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[id]++
	delete(c.products, id)
	return nil
}

func (c *memCache) DeleteAllProducts(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allGen++
	c.products = make(map[string]domain.ProductWithCategory)
	return nil
}

func (c *memCache) GetCategories(context.Context) ([]domain.Category, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories, c.hasCats, nil
}

func (c *memCache) SetCategories(_ context.Context, list []domain.Category) error {
	c.mu.Lock()
	c.categories, c.hasCats = list, true
	c.mu.Unlock()
	c.setCalls <- struct{}{}
	return nil
}

func (c *memCache) DeleteCategories(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories, c.hasCats = nil, false
	return nil
}

func (c *memCache) RevokeToken(_ context.Context, tokenID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[tokenID] = ttl
	return nil
}

func (c *memCache) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.revoked[tokenID]
	return ok, nil
}

func (c *memCache) waitSet(t *testing.T) {
	t.Helper()
	select {
	case <-c.setCalls:
	case <-time.After(time.Second):
		t.Fatal("cache was not filled")
	}
}

// infrastructure

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]domain.Identity
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: make(map[string]domain.Identity)}
}

func (f *fakeTokens) Issue(userID, email string) (*IssuedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := domain.Identity{
		UserID:    userID,
		Email:     email,
		TokenID:   fmt.Sprintf("jti-%d", len(f.tokens)+1),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	token := "token-" + id.TokenID
	f.tokens[token] = id
	return &IssuedToken{Token: token, Identity: id}, nil
}

func (f *fakeTokens) Parse(token string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		return nil, e.ErrInvalidToken
	}
	return &id, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hash:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type fakeEncoder struct{}

func (fakeEncoder) EncodeOrderCreated(ev *OrderCreatedEvent) ([]byte, error) {
	return []byte(strings.Join([]string{ev.OrderID, ev.Username, ev.ProductName}, "|")), nil
}

type fakeImages struct {
	mu      sync.Mutex
	cleaned []string
	failErr error
}

func (f *fakeImages) UploadImage(_ context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	key := req.ProductID + "/image"
	return NewUploadImageRes(key, "http://cdn.local/products/"+key), nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, keys...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (f *fakePublisher) Publish(ev domain.SessionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// testEnv собирает все сценарии поверх одного хранилища.
type testEnv struct {
	store     *memStore
	cache     *memCache
	tokens    *fakeTokens
	images    *fakeImages
	publisher *fakePublisher
	guard     *Guard
	catalog   *CatalogUseCase
	orders    *OrderUseCase
	admin     *AdminUseCase
	auth      *AuthUseCase
}

func newTestEnv() *testEnv {
	store := newMemStore()
	cache := newMemCache()
	tokens := newFakeTokens()
	images := &fakeImages{}
	publisher := &fakePublisher{}
	log := logger.NewNopLogger()

	guard := NewGuard(tokens, cache, memProfileRepo{store})

	return &testEnv{
		store:     store,
		cache:     cache,
		tokens:    tokens,
		images:    images,
		publisher: publisher,
		guard:     guard,
		catalog:   NewCatalogUC(memProductRepo{store}, memCategoryRepo{store}, cache, log),
		orders: NewOrderUC(
			guard, memProductRepo{store}, memOrderRepo{store}, memOutboxRepo{store},
			cache, fakeEncoder{}, inlineTx{}, log,
		),
		admin: NewAdminUC(
			guard, memProductRepo{store}, memCategoryRepo{store}, memStatsRepo{store},
			cache, images, log,
		),
		auth: NewAuthUC(
			guard, memUserRepo{store}, memProfileRepo{store}, cache, tokens,
			fakeHasher{}, inlineTx{}, publisher, []string{"owner@shop.io"}, log,
		),
	}
}

// login создаёт профиль с ролью и возвращает контекст с токеном сессии.
func (env *testEnv) login(username string, role domain.Role) (context.Context, string) {
	env.store.mu.Lock()
	userID := env.store.nextID("user")
	env.store.profiles[userID] = &domain.Profile{ID: userID, Username: username, Role: role}
	env.store.mu.Unlock()

	issued, _ := env.tokens.Issue(userID, username+"@shop.io")
	return auth.WithToken(context.Background(), issued.Token), userID
}

func strPtr(s string) *string {
	return &s
}
