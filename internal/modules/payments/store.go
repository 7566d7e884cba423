package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mutation is what a MutateFunc wants applied to a locked payment.
// An empty Status keeps the current one.
type Mutation struct {
	Status  Status
	OrderID string
	Note    string
}

// MutateFunc inspects the locked row and decides the change. Returning
// ErrNoChange leaves the row untouched without failing the update.
type MutateFunc func(p *Payment) (Mutation, error)

type ListFilter struct {
	BrandID string
	Status  Status
	Page    int
	Limit   int
}

func (f ListFilter) normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	return f
}

// Store is the durable payment record store.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a Store bound to an open transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

func (s *Store) Create(ctx context.Context, p *Payment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		return tx.Create(&PaymentEvent{
			ID:        uuid.NewString(),
			PaymentID: p.ID,
			ToStatus:  p.Status,
			Source:    SourceCreate,
			OrderID:   p.OrderID(),
			CreatedAt: time.Now().UTC(),
		}).Error
	})
}

// Delete removes a payment and its audit rows.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_id = ?", id).Delete(&PaymentEvent{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Payment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentNotFound
		}
		return nil
	})
}

func (s *Store) GetByReference(ctx context.Context, ref string) (*Payment, error) {
	return s.first(ctx, "reference_id = ?", ref)
}

func (s *Store) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	return s.first(ctx, "processor_order_id = ?", orderID)
}

func (s *Store) first(ctx context.Context, where string, arg any) (*Payment, error) {
	var p Payment
	err := s.db.WithContext(ctx).Preload("Brand").First(&p, where, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns payments newest first with their brand, plus the unpaged total.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Payment, int64, error) {
	f = f.normalize()
	q := s.db.WithContext(ctx).Model(&Payment{})
	if f.BrandID != "" {
		q = q.Where("brand_id = ?", f.BrandID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []Payment
	err := q.Preload("Brand").
		Order("created_at DESC").Order("id DESC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Events(ctx context.Context, paymentID string) ([]PaymentEvent, error) {
	var out []PaymentEvent
	err := s.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

func (s *Store) UpdateByReference(ctx context.Context, ref string, src Source, fn MutateFunc) (*Payment, bool, error) {
	return s.update(ctx, "reference_id = ?", ref, src, fn)
}

func (s *Store) UpdateByOrderID(ctx context.Context, orderID string, src Source, fn MutateFunc) (*Payment, bool, error) {
	return s.update(ctx, "processor_order_id = ?", orderID, src, fn)
}

// update runs fn against the row under a write lock and persists its decision
// together with an audit event. The lock is held only for this local
// read-modify-write.
func (s *Store) update(ctx context.Context, where string, arg any, src Source, fn MutateFunc) (*Payment, bool, error) {
	var (
		p       Payment
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, where, arg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		m, err := fn(&p)
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		if err != nil {
			return err
		}

		from := p.Status
		to := from
		if m.Status != "" {
			to = m.Status
		}
		updates := map[string]any{}
		if to != from {
			updates["status"] = to
		}
		if m.OrderID != "" && m.OrderID != p.OrderID() {
			updates["processor_order_id"] = m.OrderID
		}
		if len(updates) == 0 {
			return nil
		}
		now := time.Now().UTC()
		updates["updated_at"] = now

		res := tx.Model(&Payment{}).Where("id = ? AND status = ?", p.ID, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrConcurrentUpdate
		}

		if err := tx.Create(&PaymentEvent{
			ID:         uuid.NewString(),
			PaymentID:  p.ID,
			FromStatus: from,
			ToStatus:   to,
			Source:     src,
			OrderID:    m.OrderID,
			Note:       truncate(m.Note, 250),
			CreatedAt:  now,
		}).Error; err != nil {
			return err
		}

		p.Status = to
		if m.OrderID != "" {
			id := m.OrderID
			p.ProcessorOrderID = &id
		}
		p.UpdatedAt = now
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &p, changed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
