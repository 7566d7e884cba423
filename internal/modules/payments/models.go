package payments

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"paylink.dev/app/internal/modules/brands"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusApproved   Status = "approved"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusExpired    Status = "expired"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

var AllStatuses = []Status{
	StatusPending, StatusProcessing, StatusApproved, StatusCompleted,
	StatusCancelled, StatusExpired, StatusFailed, StatusRefunded,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Source names what caused a transition; it is recorded on every PaymentEvent.
type Source string

const (
	SourceCreate  Source = "create"
	SourceResume  Source = "resume"
	SourceReturn  Source = "return"
	SourceCancel  Source = "cancel"
	SourceExpiry  Source = "expiry"
	SourceWebhook Source = "webhook"
	SourceAdmin   Source = "admin"
)

type Payment struct {
	ID                 string          `gorm:"type:char(36);primaryKey"`
	ReferenceID        string          `gorm:"type:varchar(64);not null;uniqueIndex:ux_payments_reference_id"`
	BrandID            string          `gorm:"type:char(36);not null;index:ix_payments_brand_id"`
	Brand              *brands.Brand   `gorm:"foreignKey:BrandID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CustomerName       string          `gorm:"type:varchar(191);not null"`
	CustomerEmail      string          `gorm:"type:varchar(191);not null"`
	CustomerPhone      string          `gorm:"type:varchar(64)"`
	ServiceName        string          `gorm:"type:varchar(191);not null"`
	ServiceDescription string          `gorm:"type:text"`
	Amount             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency           string          `gorm:"type:char(3);not null"`
	ProcessorOrderID   *string         `gorm:"type:varchar(64);uniqueIndex:ux_payments_processor_order_id"`
	Status             Status          `gorm:"type:varchar(16);not null;index:ix_payments_status"`
	CreatedByID        *string         `gorm:"type:char(36)"`
	CreatedAt          time.Time       `gorm:"not null;index:ix_payments_created_at"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) OrderID() string {
	if p.ProcessorOrderID == nil {
		return ""
	}
	return *p.ProcessorOrderID
}

// PaymentEvent is the audit row written with every status or order change.
type PaymentEvent struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	PaymentID  string    `gorm:"type:char(36);not null;index:ix_payment_events_payment_created,priority:1" json:"paymentId"`
	FromStatus Status    `gorm:"type:varchar(16)" json:"fromStatus"`
	ToStatus   Status    `gorm:"type:varchar(16);not null" json:"toStatus"`
	Source     Source    `gorm:"type:varchar(16);not null" json:"source"`
	OrderID    string    `gorm:"type:varchar(64)" json:"orderId,omitempty"`
	Note       string    `gorm:"type:varchar(255)" json:"note,omitempty"`
	CreatedAt  time.Time `gorm:"not null;index:ix_payment_events_payment_created,priority:2" json:"createdAt"`
}

func (PaymentEvent) TableName() string { return "payment_events" }

// ProviderEvent records every accepted processor webhook; (provider, event_id) is unique.
type ProviderEvent struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	Provider    string         `gorm:"type:varchar(32);not null;uniqueIndex:ux_provider_events_provider_event,priority:1"`
	EventID     string         `gorm:"type:varchar(128);not null;uniqueIndex:ux_provider_events_provider_event,priority:2"`
	EventType   string         `gorm:"type:varchar(64);not null"`
	OrderID     string         `gorm:"type:varchar(64);index:ix_provider_events_order_id"`
	PayloadJSON datatypes.JSON `gorm:"not null"`

	ReceivedAt   time.Time `gorm:"not null"`
	ProcessedAt  *time.Time
	ProcessError *string `gorm:"type:varchar(255)"`
}

func (ProviderEvent) TableName() string { return "provider_events" }

// Models lists every table owned by this package, in migration order.
func Models() []any {
	return []any{&Payment{}, &PaymentEvent{}, &ProviderEvent{}}
}
