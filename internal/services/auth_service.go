package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"prospects/internal/models"
	"prospects/internal/repositories"

	"github.com/google/uuid"
)

const (
	msgDuplicateBoth     = "Email and username are already taken"
	msgDuplicateEmail    = "An account with this email already exists"
	msgDuplicateUsername = "Username is already taken"
	msgInvalidLogin      = "Email or password is invalid"
)

// SignupInput is a validated, normalized signup request.
type SignupInput struct {
	FirstName string
	Username  string
	Email     string
	Password  string
}

// LoginInput is a validated, normalized login request.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by successful signups and logins.
type AuthResult struct {
	Token    string        `json:"token"`
	UserData models.Claims `json:"userData"`
}

// AccountView is the public view of an account and its profile.
type AccountView struct {
	ID       string          `json:"id"`
	UserData models.Claims   `json:"userData"`
	Profile  *models.Profile `json:"profile,omitempty"`
}

// AuthService handles signup, login and username availability.
type AuthService struct {
	userRepo  repositories.UserRepository
	hasher    PasswordHasher
	issuer    TokenIssuer
	publisher EventPublisher
	newID     func() string
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. publisher may be nil.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, issuer TokenIssuer, publisher EventPublisher) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		issuer:    issuer,
		publisher: publisher,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Signup creates an account and issues its first credential.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if err := s.checkDuplicates(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}

	id := s.newID()
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, newError(KindUnknown, "Could not register user", err)
	}

	user := models.User{
		ID:           id,
		FirstName:    in.FirstName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		IsAdmin:      false,
	}
	claims := user.Claims()

	token, err := s.issuer.Issue(id, claims)
	if err != nil {
		return nil, newError(KindUpstream, "Could not issue credential", err)
	}

	// The token is only handed out once the batch has committed.
	if err := s.userRepo.CreateAccount(ctx, models.NewAccount(user, s.now())); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// A concurrent signup won the unique index; report what collided.
			if dupErr := s.checkDuplicates(ctx, in.Email, in.Username); dupErr != nil {
				return nil, dupErr
			}
		}
		return nil, newError(KindUpstream, "Could not register user", err)
	}

	publishEvent(s.publisher, EventAccountCreated, map[string]interface{}{
		"userId":   id,
		"username": user.Username,
		"email":    user.Email,
	})
	log.Printf("Registered user %s", id)

	return &AuthResult{Token: token, UserData: claims}, nil
}

// Login verifies an email/password pair and issues a fresh credential.
// Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByField(ctx, repositories.FieldEmail, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.burnVerify(in.Password)
			return nil, newError(KindInvalidCredentials, msgInvalidLogin, nil)
		}
		return nil, newError(KindUpstream, "Could not log in", err)
	}

	if !s.hasher.Verify(user.PasswordHash, in.Password) {
		return nil, newError(KindInvalidCredentials, msgInvalidLogin, nil)
	}

	claims := user.Claims()
	token, err := s.issuer.Issue(user.ID, claims)
	if err != nil {
		return nil, newError(KindUpstream, "Could not issue credential", err)
	}
	return &AuthResult{Token: token, UserData: claims}, nil
}

// CheckUsername reports whether username is still available.
func (s *AuthService) CheckUsername(ctx context.Context, username string) (bool, error) {
	exists, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return false, newError(KindUpstream, "Could not check username", err)
	}
	return !exists, nil
}

// Account returns the public view of the account identified by id.
func (s *AuthService) Account(ctx context.Context, id string) (*AccountView, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(KindNotFound, "User does not exist", err)
		}
		return nil, newError(KindUpstream, "Could not load account", err)
	}

	view := &AccountView{ID: user.ID, UserData: user.Claims()}
	profile, err := s.userRepo.GetProfile(ctx, id)
	switch {
	case err == nil:
		view.Profile = profile
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, newError(KindUpstream, "Could not load account", err)
	}
	return view, nil
}

// checkDuplicates fails with KindDuplicateAccount when email or username is
// already in use.
func (s *AuthService) checkDuplicates(ctx context.Context, email, username string) error {
	emailTaken, err := s.taken(ctx, repositories.FieldEmail, email)
	if err != nil {
		return err
	}
	usernameTaken, err := s.taken(ctx, repositories.FieldUsername, username)
	if err != nil {
		return err
	}

	switch {
	case emailTaken && usernameTaken:
		return &Error{Kind: KindDuplicateAccount, Message: msgDuplicateBoth, Fields: []string{"email", "username"}}
	case emailTaken:
		return &Error{Kind: KindDuplicateAccount, Message: msgDuplicateEmail, Fields: []string{"email"}}
	case usernameTaken:
		return &Error{Kind: KindDuplicateAccount, Message: msgDuplicateUsername, Fields: []string{"username"}}
	}
	return nil
}

func (s *AuthService) taken(ctx context.Context, field repositories.Field, value string) (bool, error) {
	_, err := s.userRepo.FindByField(ctx, field, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, newError(KindUpstream, "Could not register user", err)
	}
}

// burnVerify spends one verification on a throwaway hash so unknown emails
// cost about as much as wrong passwords.
func (s *AuthService) burnVerify(candidate string) {
	s.dummyOnce.Do(func() {
		if h, err := s.hasher.Hash(uuid.NewString()); err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		s.hasher.Verify(s.dummyHash, candidate)
	}
}
