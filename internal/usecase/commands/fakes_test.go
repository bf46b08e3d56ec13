//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/domain/coupon"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/repository"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/config"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
	"storefront-core/internal/usecase/shared"
)

// fakeDB satisfies the transaction handle the ports pass around; the
// in-memory fakes never touch it.
type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }

type productRow struct {
	title string
	price int64
	stock int32
}

type orderRow struct {
	userID        uuid.UUID
	items         []order.LineItem
	address       order.ShippingAddress
	phones        []string
	shippingCents int64
	totalCents    int64
	couponID      *uuid.UUID
	method        order.PaymentMethod
	status        order.Status
	paidAt        *time.Time
	deliveredAt   *time.Time
	deliveredBy   *uuid.UUID
	canceledAt    *time.Time
	canceledBy    *uuid.UUID
	refundedAt    *time.Time
	refundedBy    *uuid.UUID
	paymentRef    *string
	createdAt     time.Time
	updatedAt     time.Time
}

// memStore mimics the storage layer in memory. Every conditional state move
// follows the same rule as its SQL counterpart: check and write under one
// lock, report whether a row moved.
type memStore struct {
	mu          sync.Mutex
	clk         clock.Clock
	products    map[uuid.UUID]productRow
	orders      map[uuid.UUID]*orderRow
	coupons     map[uuid.UUID]*coupon.Coupon
	assignments map[string]*coupon.Assignment
	carts       map[uuid.UUID]*cart.Cart
}

func newMemStore(clk clock.Clock) *memStore {
	return &memStore{
		clk:         clk,
		products:    make(map[uuid.UUID]productRow),
		orders:      make(map[uuid.UUID]*orderRow),
		coupons:     make(map[uuid.UUID]*coupon.Coupon),
		assignments: make(map[string]*coupon.Assignment),
		carts:       make(map[uuid.UUID]*cart.Cart),
	}
}

func assignmentKey(couponID, userID uuid.UUID) string {
	return couponID.String() + "/" + userID.String()
}

type storeSnapshot struct {
	products    map[uuid.UUID]productRow
	orders      map[uuid.UUID]orderRow
	coupons     map[uuid.UUID]*coupon.Coupon
	assignments map[string]coupon.Assignment
	carts       map[uuid.UUID]*cart.Cart
}

func copyCoupon(c *coupon.Coupon) *coupon.Coupon {
	return coupon.Reconstruct(
		c.ID(), c.Code(), c.Discount(), c.Status(),
		c.FromDate(), c.ToDate(), c.Enabled(), c.AddedBy(),
		c.DisabledStamp(), c.EnabledStamp(), c.UpdatedStamp(),
		c.CreatedAt(), c.UpdatedAt(),
	)
}

func copyCart(c *cart.Cart) *cart.Cart {
	lines := append([]cart.Line(nil), c.Lines()...)
	return cart.Reconstruct(c.ID(), c.UserID(), lines, c.SubTotalCents(), c.CreatedAt(), c.UpdatedAt())
}

func (s *memStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := storeSnapshot{
		products:    make(map[uuid.UUID]productRow, len(s.products)),
		orders:      make(map[uuid.UUID]orderRow, len(s.orders)),
		coupons:     make(map[uuid.UUID]*coupon.Coupon, len(s.coupons)),
		assignments: make(map[string]coupon.Assignment, len(s.assignments)),
		carts:       make(map[uuid.UUID]*cart.Cart, len(s.carts)),
	}
	for id, row := range s.products {
		snap.products[id] = row
	}
	for id, row := range s.orders {
		snap.orders[id] = *row
	}
	for id, c := range s.coupons {
		snap.coupons[id] = copyCoupon(c)
	}
	for key, a := range s.assignments {
		snap.assignments[key] = *a
	}
	for id, c := range s.carts {
		snap.carts[id] = copyCart(c)
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = snap.products
	s.coupons = snap.coupons
	s.orders = make(map[uuid.UUID]*orderRow, len(snap.orders))
	for id, row := range snap.orders {
		r := row
		s.orders[id] = &r
	}
	s.assignments = make(map[string]*coupon.Assignment, len(snap.assignments))
	for key, a := range snap.assignments {
		v := a
		s.assignments[key] = &v
	}
	s.carts = snap.carts
}

func (s *memStore) orderStatus(id uuid.UUID) order.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id].status
}

func (s *memStore) productStock(id uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].stock
}

func (s *memStore) couponStatus(id uuid.UUID) coupon.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coupons[id].Status()
}

func (s *memStore) usageCount(couponID, userID uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignments[assignmentKey(couponID, userID)].UsageCount
}

func (s *memStore) assignmentMaxUsage(couponID, userID uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignments[assignmentKey(couponID, userID)].MaxUsage
}

// fakeUnitOfWork serializes transactions and rolls the whole store back when
// fn fails, matching what the real transaction gives the use cases.
type fakeUnitOfWork struct {
	s    *memStore
	txMu sync.Mutex
}

func (u *fakeUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, db repository.DBTX) error) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()

	snap := u.s.snapshot()
	if err := fn(ctx, fakeDB{}); err != nil {
		u.s.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*shared.ProductSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.products[id]
	if !ok {
		return nil, infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return &shared.ProductSnapshot{ID: id, Title: row.title, AppliedPriceCents: row.price, Stock: row.stock}, nil
}

func (r *fakeProductRepo) Reserve(_ context.Context, _ repository.DBTX, id uuid.UUID, quantity int32) (*shared.ProductSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.products[id]
	if !ok || row.stock < quantity {
		return nil, infra.WrapRepoErr("product unavailable", nil, infra.KindConflict)
	}
	row.stock -= quantity
	r.s.products[id] = row
	return &shared.ProductSnapshot{ID: id, Title: row.title, AppliedPriceCents: row.price, Stock: row.stock}, nil
}

func (r *fakeProductRepo) Release(_ context.Context, _ repository.DBTX, id uuid.UUID, quantity int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.products[id]
	if !ok {
		return nil
	}
	row.stock += quantity
	r.s.products[id] = row
	return nil
}

type fakeCouponRepo struct{ s *memStore }

func (r *fakeCouponRepo) FindByCode(_ context.Context, _ repository.DBTX, code string) (*coupon.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.coupons {
		if c.Code().String() == code {
			return copyCoupon(c), nil
		}
	}
	return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
}

func (r *fakeCouponRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*coupon.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.coupons[id]
	if !ok {
		return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	return copyCoupon(c), nil
}

func (r *fakeCouponRepo) Create(_ context.Context, _ repository.DBTX, c *coupon.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.coupons {
		if existing.Code() == c.Code() {
			return infra.WrapRepoErr("coupon code already exists", nil, infra.KindDuplicateKey)
		}
	}
	r.s.coupons[c.ID()] = copyCoupon(c)
	return nil
}

func (r *fakeCouponRepo) Update(_ context.Context, _ repository.DBTX, c *coupon.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.coupons[c.ID()]; !ok {
		return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	for id, existing := range r.s.coupons {
		if id != c.ID() && existing.Code() == c.Code() {
			return infra.WrapRepoErr("coupon code already exists", nil, infra.KindDuplicateKey)
		}
	}
	r.s.coupons[c.ID()] = copyCoupon(c)
	return nil
}

func (r *fakeCouponRepo) SetEnabled(_ context.Context, _ repository.DBTX, c *coupon.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.coupons[c.ID()]; !ok {
		return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	r.s.coupons[c.ID()] = copyCoupon(c)
	return nil
}

func (r *fakeCouponRepo) FindAssignment(_ context.Context, _ repository.DBTX, couponID, userID uuid.UUID) (*coupon.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.assignments[assignmentKey(couponID, userID)]
	if !ok {
		return nil, infra.WrapRepoErr("assignment not found", nil, infra.KindNotFound)
	}
	copied := *a
	return &copied, nil
}

func (r *fakeCouponRepo) CreateAssignments(_ context.Context, _ repository.DBTX, assignments []*coupon.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range assignments {
		key := assignmentKey(a.CouponID, a.UserID)
		if _, exists := r.s.assignments[key]; exists {
			return infra.WrapRepoErr("coupon assignment already exists", nil, infra.KindDuplicateKey)
		}
		copied := *a
		r.s.assignments[key] = &copied
	}
	return nil
}

func (r *fakeCouponRepo) IncrementUsage(_ context.Context, _ repository.DBTX, couponID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.assignments[assignmentKey(couponID, userID)]
	if !ok || a.UsageCount >= a.MaxUsage {
		return false, nil
	}
	a.UsageCount++
	return true, nil
}

func (r *fakeCouponRepo) ExpireBefore(_ context.Context, _ repository.DBTX, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, c := range r.s.coupons {
		if c.Status() == coupon.StatusValid && c.ToDate().Before(cutoff) {
			c.MarkExpired()
			count++
		}
	}
	return count, nil
}

type fakeOrderRepo struct{ s *memStore }

func (r *fakeOrderRepo) Create(_ context.Context, _ repository.DBTX, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.clk.Now()
	r.s.orders[o.ID()] = &orderRow{
		userID:        o.UserID(),
		items:         append([]order.LineItem(nil), o.Items()...),
		address:       o.Address(),
		phones:        append([]string(nil), o.PhoneNumbers()...),
		shippingCents: o.ShippingCents(),
		totalCents:    o.TotalCents(),
		couponID:      o.CouponID(),
		method:        o.PaymentMethod(),
		status:        o.Status(),
		createdAt:     now,
		updatedAt:     now,
	}
	return nil
}

func (r *fakeOrderRepo) reconstruct(id uuid.UUID, row *orderRow) *order.Order {
	return order.Reconstruct(
		id, row.userID, row.items, row.address, row.phones,
		row.shippingCents, row.totalCents, row.couponID,
		row.method, row.status,
		row.paidAt,
		row.deliveredAt, row.deliveredBy,
		row.canceledAt, row.canceledBy,
		row.refundedAt, row.refundedBy,
		row.paymentRef,
		row.createdAt, row.updatedAt,
	)
}

func (r *fakeOrderRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return r.reconstruct(id, row), nil
}

func (r *fakeOrderRepo) FindByPaymentRef(_ context.Context, _ repository.DBTX, ref string) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, row := range r.s.orders {
		if row.paymentRef != nil && *row.paymentRef == ref {
			return r.reconstruct(id, row), nil
		}
	}
	return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
}

func (r *fakeOrderRepo) SetPaymentRef(_ context.Context, _ repository.DBTX, id uuid.UUID, ref string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.orders[id]
	if !ok {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	row.paymentRef = &ref
	return nil
}

func (r *fakeOrderRepo) MarkPaid(_ context.Context, _ repository.DBTX, ref string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.orders {
		if row.paymentRef != nil && *row.paymentRef == ref && row.status == order.StatusPending {
			row.status = order.StatusPaid
			row.paidAt = &at
			row.updatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) MarkDelivered(_ context.Context, _ repository.DBTX, id, by uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.orders[id]
	if !ok || row.status != order.StatusPlaced {
		return false, nil
	}
	row.status = order.StatusDelivered
	row.deliveredAt = &at
	row.deliveredBy = &by
	row.updatedAt = at
	return true, nil
}

func (r *fakeOrderRepo) MarkCanceled(_ context.Context, _ repository.DBTX, id, by uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.orders[id]
	if !ok || (row.status != order.StatusPending && row.status != order.StatusPlaced) {
		return false, nil
	}
	row.status = order.StatusCanceled
	row.canceledAt = &at
	row.canceledBy = &by
	row.updatedAt = at
	return true, nil
}

func (r *fakeOrderRepo) MarkRefunded(_ context.Context, _ repository.DBTX, id, by uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.orders[id]
	if !ok || row.status != order.StatusPaid {
		return false, nil
	}
	row.status = order.StatusRefunded
	row.refundedAt = &at
	row.refundedBy = &by
	row.updatedAt = at
	return true, nil
}

type fakeCartRepo struct{ s *memStore }

func (r *fakeCartRepo) FindByUser(_ context.Context, _ repository.DBTX, userID uuid.UUID) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.carts[userID]
	if !ok {
		return nil, infra.WrapRepoErr("cart not found", nil, infra.KindNotFound)
	}
	return copyCart(c), nil
}

func (r *fakeCartRepo) Save(_ context.Context, _ repository.DBTX, c *cart.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.carts[c.UserID()] = copyCart(c)
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, _ repository.DBTX, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.carts, userID)
	return nil
}

type fakeGateway struct {
	mu          sync.Mutex
	chargeErr   error
	discountErr error
	refundErr   error
	charges     []commands.ChargeRequest
	discounts   []uuid.UUID
	refunds     []uuid.UUID
}

func (g *fakeGateway) CreateCharge(_ context.Context, req commands.ChargeRequest) (*commands.ClientHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	g.charges = append(g.charges, req)
	sessionID := "cs_" + req.OrderID.String()
	return &commands.ClientHandle{SessionID: sessionID, URL: "https://checkout.test/" + sessionID}, nil
}

func (g *fakeGateway) CreateDiscountRef(_ context.Context, c *coupon.Coupon) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.discountErr != nil {
		return "", g.discountErr
	}
	g.discounts = append(g.discounts, c.ID())
	return "disc_" + c.ID().String(), nil
}

func (g *fakeGateway) Refund(_ context.Context, orderID uuid.UUID, _ string) (*commands.RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, orderID)
	return &commands.RefundResult{RefundID: "re_" + orderID.String(), Status: "succeeded"}, nil
}

type fakeVerifier struct {
	notice *commands.PaymentNotice
	err    error
}

func (v *fakeVerifier) VerifyEvent([]byte, string) (*commands.PaymentNotice, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.notice, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	placedErr error
	paidErr   error
	placed    []commands.OrderPlacedEvent
	paid      []commands.OrderPaidEvent
}

func (p *fakePublisher) PublishOrderPlaced(_ context.Context, ev commands.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.placedErr != nil {
		return p.placedErr
	}
	p.placed = append(p.placed, ev)
	return nil
}

func (p *fakePublisher) PublishOrderPaid(_ context.Context, ev commands.OrderPaidEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paidErr != nil {
		return p.paidErr
	}
	p.paid = append(p.paid, ev)
	return nil
}

// fakeOrderQueries projects the store into the read models directly.
type fakeOrderQueries struct {
	s       *memStore
	viewErr error
}

func (q *fakeOrderQueries) GetByID(_ context.Context, id uuid.UUID) (*queries.OrderView, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if q.viewErr != nil {
		return nil, q.viewErr
	}
	row, ok := q.s.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	items := make([]queries.OrderItemView, 0, len(row.items))
	for _, item := range row.items {
		items = append(items, queries.OrderItemView{
			ProductID:      item.ProductID,
			Title:          item.Title,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return &queries.OrderView{
		ID:            id,
		UserID:        row.userID,
		Items:         items,
		Address:       row.address.Address,
		City:          row.address.City,
		PostalCode:    row.address.PostalCode,
		Country:       row.address.Country,
		PhoneNumbers:  row.phones,
		ShippingCents: row.shippingCents,
		TotalCents:    row.totalCents,
		CouponID:      row.couponID,
		PaymentMethod: row.method.String(),
		Status:        row.status.String(),
		PaidAt:        row.paidAt,
		DeliveredAt:   row.deliveredAt,
		CanceledAt:    row.canceledAt,
		RefundedAt:    row.refundedAt,
		CreatedAt:     row.createdAt,
		UpdatedAt:     row.updatedAt,
	}, nil
}

func (q *fakeOrderQueries) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*queries.OrderListItem, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	var items []*queries.OrderListItem
	for id, row := range q.s.orders {
		if row.userID != userID {
			continue
		}
		items = append(items, &queries.OrderListItem{
			ID:            id,
			TotalCents:    row.totalCents,
			PaymentMethod: row.method.String(),
			Status:        row.status.String(),
			CreatedAt:     row.createdAt,
		})
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

type fakeCouponQueries struct{ s *memStore }

func (q *fakeCouponQueries) view(id uuid.UUID, c *coupon.Coupon) *queries.CouponView {
	v := &queries.CouponView{
		ID:        id,
		Code:      c.Code().String(),
		Status:    string(c.Status()),
		FromDate:  c.FromDate(),
		ToDate:    c.ToDate(),
		IsEnabled: c.Enabled(),
		AddedBy:   c.AddedBy(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
	if c.Discount().IsFixed() {
		amount := c.Discount().AmountOffCents()
		v.AmountOffCents = &amount
	} else {
		pct := c.Discount().PercentOff()
		v.PercentOff = &pct
	}
	if stamp := c.DisabledStamp(); stamp != nil {
		at := stamp.At
		v.DisabledAt = &at
	}
	if stamp := c.EnabledStamp(); stamp != nil {
		at := stamp.At
		v.EnabledAt = &at
	}
	return v
}

func (q *fakeCouponQueries) GetByID(_ context.Context, id uuid.UUID) (*queries.CouponView, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	c, ok := q.s.coupons[id]
	if !ok {
		return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	return q.view(id, c), nil
}

func (q *fakeCouponQueries) listByEnabled(enabled bool) []*queries.CouponView {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	var views []*queries.CouponView
	for id, c := range q.s.coupons {
		if c.Enabled() == enabled {
			views = append(views, q.view(id, c))
		}
	}
	return views
}

func (q *fakeCouponQueries) ListEnabled(context.Context) ([]*queries.CouponView, error) {
	return q.listByEnabled(true), nil
}

func (q *fakeCouponQueries) ListDisabled(context.Context) ([]*queries.CouponView, error) {
	return q.listByEnabled(false), nil
}

func (q *fakeCouponQueries) ListAssignments(_ context.Context, couponID uuid.UUID) ([]*queries.CouponAssignmentView, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	var views []*queries.CouponAssignmentView
	for _, a := range q.s.assignments {
		if a.CouponID == couponID {
			views = append(views, &queries.CouponAssignmentView{
				UserID:     a.UserID,
				MaxUsage:   a.MaxUsage,
				UsageCount: a.UsageCount,
			})
		}
	}
	return views, nil
}

type fakeCartQueries struct{ s *memStore }

func (q *fakeCartQueries) GetByUser(_ context.Context, userID uuid.UUID) (*queries.CartView, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	c, ok := q.s.carts[userID]
	if !ok {
		return nil, infra.WrapRepoErr("cart not found", nil, infra.KindNotFound)
	}
	lines := make([]queries.CartLineView, 0, len(c.Lines()))
	for _, line := range c.Lines() {
		lines = append(lines, queries.CartLineView{
			ProductID:      line.ProductID,
			Title:          line.Title,
			Quantity:       line.Quantity,
			BasePriceCents: line.BasePriceCents,
			LineTotalCents: line.LineTotalCents,
		})
	}
	return &queries.CartView{
		ID:            c.ID(),
		UserID:        c.UserID(),
		Lines:         lines,
		SubTotalCents: c.SubTotalCents(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}, nil
}

// fixture wires the use cases against the in-memory stack.
type fixture struct {
	store      *memStore
	clk        *clock.FixedClock
	gateway    *fakeGateway
	verifier   *fakeVerifier
	publisher  *fakePublisher
	orderViews *fakeOrderQueries
	cfg        config.OrderConfig

	orders  commands.OrderCommands
	coupons commands.CouponCommands
	carts   commands.CartCommands
}

func newFixture() *fixture {
	clk := clock.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newMemStore(clk)
	gateway := &fakeGateway{}
	verifier := &fakeVerifier{}
	publisher := &fakePublisher{}
	uow := &fakeUnitOfWork{s: store}
	cfg := config.OrderConfig{CancelWindow: 24 * time.Hour, CouponSweepInterval: time.Hour}

	orderRepo := &fakeOrderRepo{s: store}
	productRepo := &fakeProductRepo{s: store}
	couponRepo := &fakeCouponRepo{s: store}
	cartRepo := &fakeCartRepo{s: store}
	orderQueries := &fakeOrderQueries{s: store}
	couponQueries := &fakeCouponQueries{s: store}
	cartQueries := &fakeCartQueries{s: store}

	return &fixture{
		store:      store,
		clk:        clk,
		gateway:    gateway,
		verifier:   verifier,
		publisher:  publisher,
		orderViews: orderQueries,
		cfg:        cfg,
		orders: commands.NewOrderUseCase(
			orderRepo, productRepo, couponRepo, cartRepo,
			orderQueries, gateway, verifier, publisher,
			uow, fakeDB{}, clk, cfg,
		),
		coupons: commands.NewCouponUseCase(couponRepo, couponQueries, uow, fakeDB{}, clk),
		carts:   commands.NewCartUseCase(cartRepo, productRepo, cartQueries, uow),
	}
}

func (f *fixture) addProduct(title string, priceCents int64, stock int32) uuid.UUID {
	id := uuid.New()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.products[id] = productRow{title: title, price: priceCents, stock: stock}
	return id
}

func (f *fixture) addFixedCoupon(code string, amountOffCents int64) *coupon.Coupon {
	now := f.clk.Now()
	amount := amountOffCents
	c, err := coupon.NewCoupon(uuid.New(), code, &amount, nil, now.Add(-time.Hour), now.Add(24*time.Hour), uuid.New())
	if err != nil {
		panic(err)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.coupons[c.ID()] = c
	return c
}

func (f *fixture) assignCoupon(couponID, userID uuid.UUID, maxUsage, used int32) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.assignments[assignmentKey(couponID, userID)] = &coupon.Assignment{
		CouponID:   couponID,
		UserID:     userID,
		MaxUsage:   maxUsage,
		UsageCount: used,
	}
}

func (f *fixture) seedCartLine(userID, productID uuid.UUID, title string, priceCents int64, quantity int32) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	c, ok := f.store.carts[userID]
	if !ok {
		c = cart.NewCart(uuid.New(), userID)
		f.store.carts[userID] = c
	}
	return c.PutProduct(productID, title, priceCents, quantity)
}

// seedOrder inserts an order directly in the given status.
func (f *fixture) seedOrder(userID uuid.UUID, method order.PaymentMethod, status order.Status, paymentRef *string) uuid.UUID {
	id := uuid.New()
	now := f.clk.Now()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.orders[id] = &orderRow{
		userID: userID,
		items: []order.LineItem{
			{ProductID: uuid.New(), Title: "widget", Quantity: 1, UnitPriceCents: 1000},
		},
		address:       order.ShippingAddress{Address: "12 Harbor St", City: "Lisbon", PostalCode: "1100-001", Country: "PT"},
		phones:        []string{"+351911111111"},
		shippingCents: 1000,
		totalCents:    1000,
		method:        method,
		status:        status,
		paymentRef:    paymentRef,
		createdAt:     now,
		updatedAt:     now,
	}
	return id
}
