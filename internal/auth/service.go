package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost/tradepost/internal/shared"
)

const minPasswordLength = 8

// WelcomeMailer enqueues the post-registration welcome email.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, email, name string) error
}

// Service wraps registration, authentication and credential lifecycle
// rules.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	tokens  *TokenManager
	revoker *Revoker
	audit   *shared.AuditLogger
	mailer  WelcomeMailer
}

// NewService constructs a Service. Audit logger and mailer are optional.
func NewService(logger *slog.Logger, repo Repository, tokens *TokenManager, revoker *Revoker, audit *shared.AuditLogger, mailer WelcomeMailer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, repo: repo, tokens: tokens, revoker: revoker, audit: audit, mailer: mailer}
}

// RegisterInput is the normalized registration payload.
type RegisterInput struct {
	Email           string
	FirstName       string
	LastName        string
	Phone           string
	Password        string
	PasswordConfirm string
}

// Register creates an account and issues its first token pair.
func (s *Service) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*User, TokenPair, error) {
	in.Email = shared.NormalizeEmail(in.Email)
	in.FirstName = shared.NormalizeName(in.FirstName)
	in.LastName = shared.NormalizeName(in.LastName)
	in.Phone = shared.NormalizeName(in.Phone)

	if err := validateRegister(in); err != nil {
		return nil, TokenPair{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user := &User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user, meta)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, user.Email, user.FullName()); err != nil {
			s.logger.Warn("enqueue welcome mail", slog.Any("error", err))
		}
	}
	s.recordAudit(ctx, user.ID, shared.AuditRegister, nil)
	return user, pair, nil
}

// Login authenticates credentials and issues a token pair. Unknown
// accounts, inactive accounts and wrong passwords are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, email, password string, meta RequestMeta) (*User, TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, shared.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, TokenPair{}, shared.ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if !user.IsActive {
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("touch last login", slog.Any("error", err))
	}
	user.LastLoginAt = &now

	pair, err := s.issuePair(ctx, user, meta)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.recordAudit(ctx, user.ID, shared.AuditLogin, nil)
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string, meta RequestMeta) (TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, shared.ErrUnauthorized
	}
	jti, err := claims.JTI()
	if err != nil {
		return TokenPair{}, shared.ErrUnauthorized
	}
	if revoked, err := s.revoker.IsRevoked(ctx, jti.String()); err != nil {
		return TokenPair{}, err
	} else if revoked {
		return TokenPair{}, shared.ErrUnauthorized
	}
	record, err := s.repo.GetToken(ctx, jti)
	if err != nil {
		return TokenPair{}, shared.ErrUnauthorized
	}
	if record.RevokedAt != nil {
		return TokenPair{}, shared.ErrUnauthorized
	}

	userID, err := claims.UserID()
	if err != nil {
		return TokenPair{}, shared.ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil || !user.IsActive {
		return TokenPair{}, shared.ErrUnauthorized
	}

	if err := s.revoke(ctx, jti, claims.RemainingTTL()); err != nil {
		return TokenPair{}, err
	}
	return s.issuePair(ctx, user, meta)
}

// Logout revokes the presented refresh token. Expired tokens are still
// accepted so stale clients can sign out cleanly.
func (s *Service) Logout(ctx context.Context, userID int64, refreshToken string) error {
	claims, err := s.tokens.DecodeRefresh(refreshToken)
	if err != nil {
		return shared.FieldError("refresh_token", "token is invalid")
	}
	subject, err := claims.UserID()
	if err != nil || subject != userID {
		return shared.ErrForbidden
	}
	jti, err := claims.JTI()
	if err != nil {
		return shared.FieldError("refresh_token", "token is invalid")
	}
	if err := s.revoke(ctx, jti, claims.RemainingTTL()); err != nil {
		return err
	}
	s.recordAudit(ctx, userID, shared.AuditLogout, nil)
	return nil
}

// ChangePassword verifies the old password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword, newPasswordConfirm string) error {
	ve := shared.NewValidationError()
	if len(newPassword) < minPasswordLength {
		ve.Fields.Set("new_password", "password must be at least "+strconv.Itoa(minPasswordLength)+" characters")
	} else if newPassword != newPasswordConfirm {
		ve.Fields.Set("new_password", "password fields didn't match")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		ve.Fields.Set("old_password", "old password is not correct")
	}
	if err := ve.ErrOrNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	s.recordAudit(ctx, userID, shared.AuditPasswordChange, nil)
	return nil
}

func (s *Service) issuePair(ctx context.Context, user *User, meta RequestMeta) (TokenPair, error) {
	pair, refreshClaims, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	jti, err := refreshClaims.JTI()
	if err != nil {
		return TokenPair{}, err
	}
	record := TokenRecord{
		JTI:       jti,
		UserID:    user.ID,
		IssuedAt:  refreshClaims.IssuedAt.Time,
		ExpiresAt: refreshClaims.ExpiresAt.Time,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.repo.CreateToken(ctx, record); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

func (s *Service) revoke(ctx context.Context, jti uuid.UUID, ttl time.Duration) error {
	if err := s.revoker.Revoke(ctx, jti.String(), ttl); err != nil {
		return err
	}
	return s.repo.RevokeToken(ctx, jti, time.Now().UTC())
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(actorID, 10),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("record audit", slog.Any("error", err))
	}
}

func validateRegister(in RegisterInput) error {
	ve := shared.NewValidationError()
	if in.Email == "" {
		ve.Fields.Set("email", "this field is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		ve.Fields.Set("email", "must be a valid email address")
	}
	if in.FirstName == "" {
		ve.Fields.Set("first_name", "this field is required")
	}
	if in.LastName == "" {
		ve.Fields.Set("last_name", "this field is required")
	}
	if len(in.Password) < minPasswordLength {
		ve.Fields.Set("password", "password must be at least "+strconv.Itoa(minPasswordLength)+" characters")
	} else if in.Password != in.PasswordConfirm {
		ve.Fields.Set("password", "password fields didn't match")
	}
	return ve.ErrOrNil()
}
