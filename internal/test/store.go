package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/domain/repository"
)

// MemoryStore is a transactional in-memory backend. Transactions run one at a
// time against a staged copy that replaces the committed state on success.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	state *memState

	// CollideNext makes the next N order inserts fail as duplicates.
	CollideNext int
	// PointsErr is returned by every points credit while set.
	PointsErr error
	// LockErr is returned by row locking while set.
	LockErr error

	// Transactions counts WithinTx calls, committed or not.
	Transactions int
	// Locks records every lock request in call order.
	Locks []model.StockRef
}

type memState struct {
	products    map[int64]model.Product
	materials   map[int64]model.Material
	recipes     map[int64]model.Recipe
	members     map[int64]model.Member
	orders      []model.Order
	adjustments []model.InventoryAdjustment
	usage       []model.RecipeUsage
	credits     map[string]decimal.Decimal

	nextOrderID int64
	nextAdjID   int64
	nextUsageID int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		products:  make(map[int64]model.Product),
		materials: make(map[int64]model.Material),
		recipes:   make(map[int64]model.Recipe),
		members:   make(map[int64]model.Member),
		credits:   make(map[string]decimal.Decimal),
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		products:    make(map[int64]model.Product, len(s.products)),
		materials:   make(map[int64]model.Material, len(s.materials)),
		recipes:     s.recipes,
		members:     make(map[int64]model.Member, len(s.members)),
		orders:      append([]model.Order(nil), s.orders...),
		adjustments: append([]model.InventoryAdjustment(nil), s.adjustments...),
		usage:       append([]model.RecipeUsage(nil), s.usage...),
		credits:     make(map[string]decimal.Decimal, len(s.credits)),
		nextOrderID: s.nextOrderID,
		nextAdjID:   s.nextAdjID,
		nextUsageID: s.nextUsageID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.materials {
		c.materials[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.credits {
		c.credits[k] = v
	}
	return c
}

// AddProduct seeds a product.
func (s *MemoryStore) AddProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = p
}

// AddMaterial seeds a material.
func (s *MemoryStore) AddMaterial(m model.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.materials[m.ID] = m
}

// AddRecipe seeds a recipe. Only MaterialID and Percentage of each ingredient
// are kept; the rest is joined from materials on read.
func (s *MemoryStore) AddRecipe(r model.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.recipes[r.ID] = r
}

// AddMember seeds a member.
func (s *MemoryStore) AddMember(m model.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.members[m.ID] = m
}

// Product returns the committed product row.
func (s *MemoryStore) Product(id int64) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.products[id]
}

// Material returns the committed material row.
func (s *MemoryStore) Material(id int64) model.Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.materials[id]
}

// Member returns the committed member row.
func (s *MemoryStore) Member(id int64) model.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.members[id]
}

// CommittedOrders returns every committed order.
func (s *MemoryStore) CommittedOrders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.state.orders...)
}

// Adjustments returns every committed inventory adjustment.
func (s *MemoryStore) Adjustments() []model.InventoryAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.InventoryAdjustment(nil), s.state.adjustments...)
}

// UsageLogs returns every committed recipe usage log.
func (s *MemoryStore) UsageLogs() []model.RecipeUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.RecipeUsage(nil), s.state.usage...)
}

// Credits returns points credited per order number.
func (s *MemoryStore) Credits() map[string]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(s.state.credits))
	for k, v := range s.state.credits {
		out[k] = v
	}
	return out
}

// WithinTx implements repository.Transactor.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(repository.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.Transactions++
	staged := s.state.clone()
	s.mu.Unlock()

	if err := fn(&memTx{store: s, state: staged}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = staged
	s.mu.Unlock()
	return nil
}

// Orders returns an order repository working on committed state.
func (s *MemoryStore) Orders() repository.OrderRepository {
	return &memPoolOrders{store: s}
}

type memTx struct {
	store *MemoryStore
	state *memState
}

func (t *memTx) Catalog() repository.CatalogRepository   { return &memCatalog{t} }
func (t *memTx) Inventory() repository.InventoryLedger   { return &memLedger{t} }
func (t *memTx) Orders() repository.OrderRepository      { return &memOrders{store: t.store, state: t.state} }
func (t *memTx) Usage() repository.RecipeUsageRepository { return &memUsage{t} }
func (t *memTx) Points() repository.PointsRepository     { return &memPoints{t} }

func (t *memTx) Savepoint(ctx context.Context, fn func(repository.Tx) error) error {
	sp := t.state.clone()
	if err := fn(&memTx{store: t.store, state: sp}); err != nil {
		return err
	}
	*t.state = *sp
	return nil
}

func (t *memTx) lockErr() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.LockErr
}

func (t *memTx) recordLocks(kind model.StockKind, ids []int64) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, id := range ids {
		t.store.Locks = append(t.store.Locks, model.StockRef{Kind: kind, ID: id})
	}
}

type memCatalog struct{ tx *memTx }

func (c *memCatalog) Recipes(_ context.Context, ids []int64) (map[int64]model.Recipe, error) {
	out := make(map[int64]model.Recipe, len(ids))
	for _, id := range ids {
		r, ok := c.tx.state.recipes[id]
		if !ok {
			continue
		}
		ingredients := make([]model.Ingredient, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			m, ok := c.tx.state.materials[ing.MaterialID]
			if !ok {
				continue
			}
			ing.MaterialName = m.Name
			ing.StockUnit = m.Unit
			ing.CustomRate = m.CustomRate
			ingredients = append(ingredients, ing)
		}
		sort.Slice(ingredients, func(i, j int) bool { return ingredients[i].MaterialID < ingredients[j].MaterialID })
		r.Ingredients = ingredients
		out[id] = r
	}
	return out, nil
}

func (c *memCatalog) LockMaterials(_ context.Context, ids []int64) (map[int64]model.Material, error) {
	if err := c.tx.lockErr(); err != nil {
		return nil, err
	}
	c.tx.recordLocks(model.StockMaterial, ids)
	out := make(map[int64]model.Material, len(ids))
	for _, id := range ids {
		if m, ok := c.tx.state.materials[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (c *memCatalog) LockProducts(_ context.Context, ids []int64) (map[int64]model.Product, error) {
	if err := c.tx.lockErr(); err != nil {
		return nil, err
	}
	c.tx.recordLocks(model.StockProduct, ids)
	out := make(map[int64]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := c.tx.state.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *memCatalog) Member(_ context.Context, id int64) (*model.Member, error) {
	m, ok := c.tx.state.members[id]
	if !ok {
		return nil, &domainErrors.NotFoundError{Kind: "member", ID: id}
	}
	return &m, nil
}

type memLedger struct{ tx *memTx }

func (l *memLedger) ApplyDeduction(_ context.Context, ref model.StockRef, amount decimal.Decimal, orderNumber string) error {
	st := l.tx.state
	var name, stockUnit string
	var available decimal.Decimal
	switch ref.Kind {
	case model.StockMaterial:
		m, ok := st.materials[ref.ID]
		if !ok {
			return &domainErrors.NotFoundError{Kind: string(ref.Kind), ID: ref.ID}
		}
		name, stockUnit, available = m.Name, m.Unit, m.Stock
		if !available.LessThan(amount) {
			m.Stock = m.Stock.Sub(amount)
			st.materials[ref.ID] = m
		}
	case model.StockProduct:
		p, ok := st.products[ref.ID]
		if !ok {
			return &domainErrors.NotFoundError{Kind: string(ref.Kind), ID: ref.ID}
		}
		name, stockUnit, available = p.Name, p.Unit, p.Stock
		if !available.LessThan(amount) {
			p.Stock = p.Stock.Sub(amount)
			st.products[ref.ID] = p
		}
	default:
		return fmt.Errorf("unknown stock kind %q", ref.Kind)
	}

	if available.LessThan(amount) {
		return &domainErrors.InsufficientStockError{
			Kind:      string(ref.Kind),
			ID:        ref.ID,
			Name:      name,
			Required:  amount,
			Available: available,
			Unit:      stockUnit,
		}
	}

	st.nextAdjID++
	st.adjustments = append(st.adjustments, model.InventoryAdjustment{
		ID:        st.nextAdjID,
		Ref:       ref,
		Delta:     amount.Neg(),
		Reason:    "sale deduction",
		Remark:    "order " + orderNumber,
		CreatedAt: time.Now(),
	})
	return nil
}

type memOrders struct {
	store *MemoryStore
	state *memState
}

func (o *memOrders) Create(_ context.Context, order *model.Order) error {
	o.store.mu.Lock()
	collide := o.store.CollideNext > 0
	if collide {
		o.store.CollideNext--
	}
	o.store.mu.Unlock()
	if collide {
		return fmt.Errorf("%w: %s", domainErrors.ErrOrderNumberTaken, order.Number)
	}

	for _, existing := range o.state.orders {
		if existing.Number == order.Number {
			return fmt.Errorf("%w: %s", domainErrors.ErrOrderNumberTaken, order.Number)
		}
	}
	o.state.nextOrderID++
	order.ID = o.state.nextOrderID
	order.CreatedAt = time.Now()
	stored := *order
	stored.Lines = append([]model.OrderLine(nil), order.Lines...)
	o.state.orders = append(o.state.orders, stored)
	return nil
}

func (o *memOrders) GetByNumber(_ context.Context, number string) (*model.Order, error) {
	for _, existing := range o.state.orders {
		if existing.Number == number {
			found := existing
			return &found, nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", number, domainErrors.ErrNotFound)
}

func (o *memOrders) MarkPoints(_ context.Context, orderID int64, status model.PointsStatus, earned decimal.Decimal) error {
	for i := range o.state.orders {
		if o.state.orders[i].ID == orderID {
			o.state.orders[i].PointsStatus = status
			o.state.orders[i].PointsEarned = earned
			return nil
		}
	}
	return &domainErrors.NotFoundError{Kind: "order", ID: orderID}
}

func (o *memOrders) ClaimPendingPoints(_ context.Context, limit int) ([]model.Order, error) {
	var claimed []model.Order
	for i := range o.state.orders {
		if len(claimed) >= limit {
			break
		}
		if o.state.orders[i].PointsStatus != model.PointsPending {
			continue
		}
		o.state.orders[i].PointsStatus = model.PointsRetrying
		claimed = append(claimed, o.state.orders[i])
	}
	return claimed, nil
}

// memPoolOrders runs each call as its own short transaction.
type memPoolOrders struct {
	store *MemoryStore
}

func (p *memPoolOrders) run(fn func(repository.OrderRepository) error) error {
	return p.store.WithinTx(context.Background(), func(tx repository.Tx) error {
		return fn(tx.Orders())
	})
}

func (p *memPoolOrders) Create(ctx context.Context, order *model.Order) error {
	return p.run(func(r repository.OrderRepository) error { return r.Create(ctx, order) })
}

func (p *memPoolOrders) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	var found *model.Order
	err := p.run(func(r repository.OrderRepository) error {
		var err error
		found, err = r.GetByNumber(ctx, number)
		return err
	})
	return found, err
}

func (p *memPoolOrders) MarkPoints(ctx context.Context, orderID int64, status model.PointsStatus, earned decimal.Decimal) error {
	return p.run(func(r repository.OrderRepository) error { return r.MarkPoints(ctx, orderID, status, earned) })
}

func (p *memPoolOrders) ClaimPendingPoints(ctx context.Context, limit int) ([]model.Order, error) {
	var claimed []model.Order
	err := p.run(func(r repository.OrderRepository) error {
		var err error
		claimed, err = r.ClaimPendingPoints(ctx, limit)
		return err
	})
	return claimed, err
}

type memUsage struct{ tx *memTx }

func (u *memUsage) Log(_ context.Context, usage *model.RecipeUsage) error {
	st := u.tx.state
	st.nextUsageID++
	usage.ID = st.nextUsageID
	usage.CreatedAt = time.Now()
	st.usage = append(st.usage, *usage)
	return nil
}

type memPoints struct{ tx *memTx }

func (p *memPoints) Credit(_ context.Context, memberID int64, orderNumber string, points decimal.Decimal) error {
	p.tx.store.mu.Lock()
	err := p.tx.store.PointsErr
	p.tx.store.mu.Unlock()
	if err != nil {
		return err
	}

	st := p.tx.state
	if _, done := st.credits[orderNumber]; done {
		return nil
	}
	m, ok := st.members[memberID]
	if !ok {
		return &domainErrors.NotFoundError{Kind: "member", ID: memberID}
	}
	m.Points = m.Points.Add(points)
	st.members[memberID] = m
	st.credits[orderNumber] = points
	return nil
}

var _ repository.Transactor = (*MemoryStore)(nil)
