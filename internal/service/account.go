package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/readupapp/readup-server/internal/domain"
	domainerrors "github.com/readupapp/readup-server/internal/errors"
	"github.com/readupapp/readup-server/internal/id"
	"github.com/readupapp/readup-server/internal/store"
	"github.com/readupapp/readup-server/internal/validation"
)

// SessionCloser ends live connections for a user.
type SessionCloser interface {
	DisconnectUser(userID string)
}

// CreateUserRequest registers a reader.
type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	DisplayName string `json:"displayName" validate:"max=100"`
}

// AddBookRequest registers a catalog entry.
type AddBookRequest struct {
	Title     string `json:"title" validate:"required,max=500"`
	Author    string `json:"author" validate:"max=500"`
	CoverURL  string `json:"coverUrl" validate:"omitempty,url,max=2048"`
	OwnerID   string `json:"ownerId"`
	IsPrivate bool   `json:"isPrivate"`
}

// AccountService manages users and the catalog entries they read.
type AccountService struct {
	store     store.Store
	rollup    LifetimeRollup
	sessions  SessionCloser
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewAccountService creates an account service.
func NewAccountService(st store.Store, rollup LifetimeRollup, sessions SessionCloser, v *validation.Validator, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:     st,
		rollup:    rollup,
		sessions:  sessions,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateUser registers a reader with default goals.
func (s *AccountService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate user id")
	}

	now := s.now()
	user := &domain.User{
		ID:          userID,
		Email:       req.Email,
		DisplayName: strings.TrimSpace(req.DisplayName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("a user with this email already exists")
		}
		return nil, storeError(err, "user not found")
	}

	s.logger.Info("user created", "user_id", user.ID)
	return user, nil
}

// GetUser returns a user by ID.
func (s *AccountService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return user, nil
}

// AddBook registers a catalog entry. Private books need an owner.
func (s *AccountService) AddBook(ctx context.Context, req AddBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.IsPrivate && req.OwnerID == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"ownerId": "is required for private books"})
	}
	if req.OwnerID != "" {
		if _, err := s.store.GetUser(ctx, req.OwnerID); err != nil {
			return nil, storeError(err, "owner not found")
		}
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate book id")
	}

	now := s.now()
	book := &domain.Book{
		ID:        bookID,
		Title:     strings.TrimSpace(req.Title),
		Author:    strings.TrimSpace(req.Author),
		CoverURL:  req.CoverURL,
		OwnerID:   req.OwnerID,
		IsPrivate: req.IsPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, storeError(err, "book not found")
	}
	return book, nil
}

// DeleteAccount removes the user with every session, shelf entry, note and rollup,
// and closes their live event streams. Their private books are deleted; public
// books they added stay in the catalog unowned.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) (err error) {
	ctx, span := tracer.Start(ctx, "account.DeleteAccount", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer func() { endSpan(span, err) }()

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return storeError(err, "user not found")
	}

	if err := s.rollup.Delete(ctx, userID); err != nil {
		s.logger.Warn("failed to delete lifetime rollup", "user_id", userID, "error", err)
	}
	s.sessions.DisconnectUser(userID)

	s.logger.Info("account deleted", "user_id", userID)
	return nil
}
