package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paylink.dev/app/internal/database"
)

const minPasswordLen = 8

var (
	ErrAgentNotFound      = errors.New("agent not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidRole        = errors.New("role must be agent or admin")
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
	cost   int
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, logger: slog.Default(), cost: bcrypt.DefaultCost}
}

func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Agent, error) {
	role := in.Role
	if role == "" {
		role = RoleAgent
	}
	if role != RoleAgent && role != RoleAdmin {
		return nil, ErrInvalidRole
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &Agent{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create agent: %w", err)
	}
	s.logger.InfoContext(ctx, "agent registered", "agent_id", a.ID, "role", a.Role)
	return a, nil
}

// Authenticate returns the agent for valid credentials. Unknown emails and
// wrong passwords yield the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Agent, error) {
	var a Agent
	err := s.db.WithContext(ctx).First(&a, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Agent, error) {
	var a Agent
	err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id, name, email string) (*Agent, error) {
	updates := map[string]any{}
	if n := strings.TrimSpace(name); n != "" {
		updates["name"] = n
	}
	if e := normalizeEmail(email); e != "" {
		updates["email"] = e
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&Agent{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if database.IsDuplicate(res.Error) {
				return nil, ErrEmailTaken
			}
			return nil, res.Error
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < minPasswordLen {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&Agent{}).Where("id = ?", id).
		Update("password_hash", string(hash)).Error; err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "agent password changed", "agent_id", id)
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
