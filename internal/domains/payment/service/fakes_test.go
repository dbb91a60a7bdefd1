package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordermodel "eurd-payments/internal/domains/order/model"
	"eurd-payments/internal/domains/payment/model"
	"eurd-payments/internal/shared"
	pkgcache "eurd-payments/pkg/cache"
)

// memoryOrders backs both OrderRepository and PaymentRequestStore so the
// engine sees one consistent order record.
type memoryOrders struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*ordermodel.Order
	notes     map[uuid.UUID][]string
	markCalls int
	markWins  int
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{
		orders: make(map[uuid.UUID]*ordermodel.Order),
		notes:  make(map[uuid.UUID][]string),
	}
}

func (m *memoryOrders) add(total string) *ordermodel.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	o := &ordermodel.Order{
		ID:            uuid.New(),
		OrderNumber:   "1001",
		Total:         decimal.RequireFromString(total),
		Currency:      "EUR",
		PaymentMethod: ordermodel.PaymentMethodEURD,
		PaymentStatus: ordermodel.PaymentStatusUnpaid,
		Status:        ordermodel.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.orders[o.ID] = o
	return o
}

// get returns a copy of the stored order
func (m *memoryOrders) get(id uuid.UUID) *ordermodel.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.orders[id]
	return &cp
}

func (m *memoryOrders) setTotal(id uuid.UUID, total string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[id].Total = decimal.RequireFromString(total)
}

func (m *memoryOrders) notesFor(id uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.notes[id]...)
}

func (m *memoryOrders) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*ordermodel.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, ordermodel.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memoryOrders) FindOrderIDByPaymentRequestCode(ctx context.Context, code string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, o := range m.orders {
		if o.RequestCode() == code {
			return id, nil
		}
	}
	return uuid.Nil, ordermodel.ErrOrderNotFound
}

func (m *memoryOrders) MarkAwaitingPayment(ctx context.Context, orderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.orders[orderID]
	if o.PaymentStatus == ordermodel.PaymentStatusUnpaid && o.Status != ordermodel.OrderStatusCancelled {
		o.PaymentStatus = ordermodel.PaymentStatusAwaitingGateway
		o.Status = ordermodel.OrderStatusOnHold
	}
	return nil
}

func (m *memoryOrders) MarkAsPaid(ctx context.Context, orderID uuid.UUID, requestCode, reference, note string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.markCalls++
	o := m.orders[orderID]
	if o.RequestCode() != requestCode || o.IsPaid() || o.Status == ordermodel.OrderStatusCancelled {
		return false, nil
	}

	now := time.Now()
	o.PaymentStatus = ordermodel.PaymentStatusPaid
	o.Status = ordermodel.OrderStatusProcessing
	o.PaymentReference = &reference
	o.PaidAt = &now
	o.Version++
	m.markWins++
	if note != "" {
		m.notes[orderID] = append(m.notes[orderID], note)
	}
	return true, nil
}

func (m *memoryOrders) AddNote(ctx context.Context, orderID uuid.UUID, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[orderID] = append(m.notes[orderID], note)
	return nil
}

func (m *memoryOrders) ListNotes(ctx context.Context, orderID uuid.UUID) ([]ordermodel.OrderNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	notes := make([]ordermodel.OrderNote, 0, len(m.notes[orderID]))
	for _, n := range m.notes[orderID] {
		notes = append(notes, ordermodel.OrderNote{ID: uuid.New(), OrderID: orderID, Note: n})
	}
	return notes, nil
}

func (m *memoryOrders) ListAwaitingPayment(ctx context.Context, since time.Time, limit int) ([]ordermodel.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ordermodel.Order, 0)
	for _, o := range m.orders {
		if o.PaymentStatus == ordermodel.PaymentStatusAwaitingGateway && o.RequestCode() != "" && !o.UpdatedAt.Before(since) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PaymentRequestStore

func (m *memoryOrders) GetCode(ctx context.Context, orderID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return "", ordermodel.ErrOrderNotFound
	}
	return o.RequestCode(), nil
}

func (m *memoryOrders) SetCode(ctx context.Context, orderID uuid.UUID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return ordermodel.ErrOrderNotFound
	}
	c := code
	o.PaymentRequestCode = &c
	o.UpdatedAt = time.Now()
	return nil
}

func (m *memoryOrders) ClearCode(ctx context.Context, orderID uuid.UUID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o, ok := m.orders[orderID]; ok && o.RequestCode() == code {
		o.PaymentRequestCode = nil
	}
	return nil
}

// =====================================================
// LOCKER / TASKS / SETTINGS
// =====================================================

type memoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: make(map[string]bool)}
}

func (l *memoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (pkgcache.ReleaseFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, false, l.err
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true

	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

// ttlLocker expires keys after their TTL like redis SET PX does
type ttlLocker struct {
	mu     sync.Mutex
	held   map[string]ttlEntry
	tokens int
}

type ttlEntry struct {
	token   int
	expires time.Time
}

func newTTLLocker() *ttlLocker {
	return &ttlLocker{held: make(map[string]ttlEntry)}
}

func (l *ttlLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (pkgcache.ReleaseFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.held[key]; ok && time.Now().Before(e.expires) {
		return nil, false, nil
	}
	l.tokens++
	token := l.tokens
	l.held[key] = ttlEntry{token: token, expires: time.Now().Add(ttl)}

	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.held[key]; ok && e.token == token {
			delete(l.held, key)
		}
		return nil
	}, true, nil
}

type enqueuedTask struct {
	payload shared.ConfirmOrderPayload
	delay   time.Duration
}

type recordingTasks struct {
	mu    sync.Mutex
	tasks []enqueuedTask
	err   error
}

func (r *recordingTasks) EnqueueConfirmOrder(ctx context.Context, payload shared.ConfirmOrderPayload, delay time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	r.tasks = append(r.tasks, enqueuedTask{payload: payload, delay: delay})
	return nil
}

type staticSettings struct {
	available   bool
	reason      string
	accountCode string
}

func (s staticSettings) IsAvailable(ctx context.Context) (bool, string) {
	return s.available, s.reason
}

func (s staticSettings) AccountCode(ctx context.Context) (string, error) {
	return s.accountCode, nil
}

// =====================================================
// CACHE / SETTINGS REPOSITORY
// =====================================================

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = raw
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

type memorySettingsRepo struct {
	mu       sync.Mutex
	settings *model.Settings
	saves    int
	err      error
}

func (r *memorySettingsRepo) GetSettings(ctx context.Context) (*model.Settings, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, false, r.err
	}
	if r.settings == nil {
		return nil, false, nil
	}
	cp := *r.settings
	return &cp, true, nil
}

func (r *memorySettingsRepo) SaveSettings(ctx context.Context, s *model.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saves++
	s.UpdatedAt = time.Now()
	cp := *s
	r.settings = &cp
	return nil
}

var errRedisDown = errors.New("redis: connection refused")
