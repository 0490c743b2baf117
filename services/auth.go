package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"foodhub-api/apperror"
	"foodhub-api/mailer"
	"foodhub-api/models"
	"foodhub-api/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenIssuer signs session tokens for a user
type TokenIssuer interface {
	Issue(user *models.User) (token string, expiresAt time.Time, err error)
}

// AuthService is the local identity adapter: registration, email verification and login
type AuthService struct {
	store   *repository.Store
	tokens  TokenIssuer
	mail    mailer.Mailer
	baseURL string
	log     *logrus.Logger
}

func NewAuthService(store *repository.Store, tokens TokenIssuer, mail mailer.Mailer, baseURL string, log *logrus.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, mail: mail, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

type RegisterIn struct {
	Name     string          `json:"name" binding:"required,max=120"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8,max=72"`
	Role     models.UserRole `json:"role" binding:"omitempty,oneof=CUSTOMER PROVIDER"`
	Phone    string          `json:"phone" binding:"max=30"`
	Address  string          `json:"address" binding:"max=500"`
}

type LoginIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register creates an unverified account and mails the verification link.
// Admins are never self-registered.
func (s *AuthService) Register(ctx context.Context, in RegisterIn) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}

	if _, err := s.store.FindUserByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.FromDB(err, "")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}
	token := uuid.NewString()
	user := &models.User{
		Name:              in.Name,
		Email:             in.Email,
		PasswordHash:      string(hash),
		VerificationToken: &token,
		Role:              in.Role,
		Phone:             in.Phone,
		Address:           in.Address,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, apperror.FromDB(err, "")
	}

	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", s.baseURL, url.QueryEscape(token))
	body := fmt.Sprintf(`<p>Hi %s,</p><p>Confirm your email address to start ordering:</p><p><a href="%s">Verify email</a></p>`,
		html.EscapeString(user.Name), link)
	if msgID, err := s.mail.Send(ctx, user.Email, "Verify your email", body); err != nil {
		// the account exists either way; the user can ask for a new link later
		s.log.WithError(err).WithField("user_id", user.ID).Error("failed to send verification email")
	} else {
		s.log.WithFields(logrus.Fields{"user_id": user.ID, "message_id": msgID}).Info("verification email sent")
	}
	return user, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.InvalidArgument("token is required")
	}
	user, err := s.store.FindUserByVerificationToken(ctx, token)
	if err != nil {
		return nil, apperror.FromDB(err, "Verification link is invalid or already used")
	}
	if err := s.store.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, apperror.FromDB(err, "")
	}
	user.EmailVerified = true
	user.VerificationToken = nil
	return user, nil
}

// Login checks the password and issues a session token. Unverified users get a token
// too; the access guard turns them away until they verify.
func (s *AuthService) Login(ctx context.Context, in LoginIn) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthenticated("Invalid email or password")
	}
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.Unauthenticated("Invalid email or password")
	}

	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}
