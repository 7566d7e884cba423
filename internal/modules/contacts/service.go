package contacts

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"paylink.dev/app/internal/mailer"
	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/shared/apperr"
	"paylink.dev/app/internal/shared/validate"
)

var ErrContactNotFound = errors.New("contact request not found")

type BrandLookup interface {
	Get(ctx context.Context, id string) (*brands.Brand, error)
}

type CreateInput struct {
	Name     string `json:"name" validate:"required,max=191"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Phone    string `json:"phone" validate:"required,max=64"`
	Message  string `json:"message" validate:"required"`
	BrandID  string `json:"brandId" validate:"required"`
	Country  string `json:"country" validate:"max=64"`
	Budget   string `json:"budget" validate:"max=64"`
	Services string `json:"services" validate:"max=255"`
	Timeline string `json:"timeline" validate:"max=64"`
}

type ListFilter struct {
	BrandID string
	Status  string
	Page    int
	Limit   int
}

type Page struct {
	Items      []ContactRequest
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type Service struct {
	db       *gorm.DB
	brands   BrandLookup
	mail     mailer.Service
	mailFrom string
	logger   *slog.Logger
}

func NewService(db *gorm.DB, brands BrandLookup, mail mailer.Service, mailFrom string) *Service {
	return &Service{db: db, brands: brands, mail: mail, mailFrom: mailFrom, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

func (in CreateInput) normalized() CreateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.BrandID = strings.TrimSpace(in.BrandID)
	if strings.TrimSpace(in.Message) == "" {
		in.Message = ""
	}
	return in
}

// Create stores a lead and notifies the brand by email when it has an
// address. Notification failures are logged only.
func (s *Service) Create(ctx context.Context, in CreateInput) (*ContactRequest, error) {
	in = in.normalized()
	if fields := validate.Struct(in); len(fields) > 0 {
		return nil, apperr.InvalidErr("Missing required fields.", fields)
	}
	brand, err := s.brands.Get(ctx, in.BrandID)
	if errors.Is(err, brands.ErrBrandNotFound) {
		return nil, apperr.NotFoundErr("Brand not found.")
	}
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	cr := &ContactRequest{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Message:  in.Message,
		Country:  in.Country,
		Budget:   in.Budget,
		Services: in.Services,
		Timeline: in.Timeline,
		Status:   StatusNew,
		BrandID:  brand.ID,
	}
	if err := s.db.WithContext(ctx).Create(cr).Error; err != nil {
		return nil, apperr.Wrap(fmt.Errorf("create contact request: %w", err))
	}
	cr.Brand = brand
	s.logger.InfoContext(ctx, "contact request created", "contact_id", cr.ID, "brand_id", brand.ID)

	if brand.Email != "" && s.mail != nil {
		s.notify(ctx, brand, cr)
	}
	return cr, nil
}

func (s *Service) notify(ctx context.Context, brand *brands.Brand, cr *ContactRequest) {
	html, err := renderLead(brand.Name, cr)
	if err != nil {
		s.logger.ErrorContext(ctx, "render lead email failed", "contact_id", cr.ID, "err", err)
		return
	}
	err = s.mail.Send(ctx, mailer.Email{
		From:     s.mailFrom,
		To:       []string{brand.Email},
		ReplyTo:  cr.Email,
		Subject:  "New Lead for " + brand.Name,
		HTMLBody: html,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "lead notification failed", "contact_id", cr.ID, "recipient", brand.Email, "err", err)
		return
	}
	s.logger.InfoContext(ctx, "lead notification sent", "contact_id", cr.ID, "recipient", brand.Email)
}

var leadTmpl = template.Must(template.New("lead").Parse(`<html><body style="font-family: Arial, sans-serif;">
<h1>New Lead for {{.Brand}}</h1>
<p><strong>Lead Name:</strong> {{.C.Name}}</p>
<p><strong>Lead Email:</strong> {{.C.Email}}</p>
<p><strong>Lead Phone:</strong> {{.C.Phone}}</p>
<p><strong>Message:</strong> {{.C.Message}}</p>
{{with .C.Country}}<p><strong>Country:</strong> {{.}}</p>{{end}}
{{with .C.Budget}}<p><strong>Budget:</strong> {{.}}</p>{{end}}
{{with .C.Services}}<p><strong>Services:</strong> {{.}}</p>{{end}}
{{with .C.Timeline}}<p><strong>Timeline:</strong> {{.}}</p>{{end}}
</body></html>`))

func renderLead(brandName string, cr *ContactRequest) (string, error) {
	var b strings.Builder
	err := leadTmpl.Execute(&b, struct {
		Brand string
		C     *ContactRequest
	}{brandName, cr})
	return b.String(), err
}

func (s *Service) List(ctx context.Context, f ListFilter) (Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		return Page{}, apperr.InvalidErr("Invalid status filter.", map[string]string{"status": "invalid"})
	}

	q := s.db.WithContext(ctx).Model(&ContactRequest{})
	if f.BrandID != "" {
		q = q.Where("brand_id = ?", f.BrandID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page{}, apperr.Wrap(err)
	}
	var items []ContactRequest
	if err := q.Preload("Brand").Order("created_at DESC").Order("id DESC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).Find(&items).Error; err != nil {
		return Page{}, apperr.Wrap(err)
	}
	return Page{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*ContactRequest, error) {
	var cr ContactRequest
	err := s.db.WithContext(ctx).Preload("Brand").First(&cr, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundErr("Contact request not found.")
	}
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return &cr, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*ContactRequest, error) {
	if !ValidStatus(status) {
		return nil, apperr.InvalidErr("Invalid status.", map[string]string{"status": "must be new, contacted or closed"})
	}
	res := s.db.WithContext(ctx).Model(&ContactRequest{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, apperr.Wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFoundErr("Contact request not found.")
	}
	return s.Get(ctx, id)
}
