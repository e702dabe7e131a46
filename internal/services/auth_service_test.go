package services_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"prospects/internal/models"
	"prospects/internal/repositories"
	"prospects/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByField(_ context.Context, field repositories.Field, value string) (*models.User, error) {
	args := m.Called(field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockUserRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CreateAccount(_ context.Context, account *models.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

const testJWTSecret = "test_jwt_secret"

var errNotFound = fmt.Errorf("user: %w", repositories.ErrNotFound)

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func fastHasher() services.PasswordHasher {
	return services.NewArgon2idHasher(services.Argon2idParams{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

func newTestIssuer(t *testing.T) *services.JWTIssuer {
	issuer, err := services.NewHMACIssuer(testJWTSecret, services.IssuerOptions{
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	return issuer
}

func signupInput() services.SignupInput {
	return services.SignupInput{
		FirstName: "A",
		Username:  "alice",
		Email:     "a@x.com",
		Password:  "secret12",
	}
}

func requireKind(t *testing.T, err error, kind services.Kind) *services.Error {
	t.Helper()
	require.Error(t, err)
	se := services.AsError(err)
	require.Equal(t, kind, se.Kind, "unexpected error: %v", err)
	return se
}

func TestAuthService_Signup(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMQ := new(MockPublisher)
	issuer := newTestIssuer(t)
	authService := services.NewAuthService(mockRepo, fastHasher(), issuer, mockMQ)

	var created *models.Account
	mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(nil, errNotFound).Once()
	mockRepo.On("FindByField", repositories.FieldUsername, "alice").Return(nil, errNotFound).Once()
	mockRepo.On("CreateAccount", mock.AnythingOfType("*models.Account")).
		Run(func(args mock.Arguments) { created = args.Get(0).(*models.Account) }).
		Return(nil).Once()
	mockMQ.On("Publish", services.EventAccountCreated, mock.Anything).Return(nil).Once()

	result, err := authService.Signup(context.Background(), signupInput())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.Claims{FirstName: "A", Username: "alice", Email: "a@x.com", IsAdmin: false}, result.UserData)
	mockRepo.AssertExpectations(t)
	mockMQ.AssertExpectations(t)

	// The persisted batch holds a hash, never the secret.
	require.NotNil(t, created)
	assert.NotEmpty(t, created.User.ID)
	assert.NotEqual(t, "secret12", created.User.PasswordHash)
	assert.NotEmpty(t, created.User.PasswordHash)
	assert.False(t, created.User.IsAdmin)
	assert.Equal(t, created.User.ID, created.Profile.UserID)
	assert.Equal(t, 0, created.Profile.SavedCount)
	assert.False(t, created.Profile.SignedUpAt.IsZero())
	assert.Equal(t, models.UsernameReservation{Username: "alice", UserID: created.User.ID}, created.Reservation)

	// The credential is bound to the new identifier.
	identity, err := issuer.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, identity.Subject)
	assert.Equal(t, result.UserData, identity.Claims)
}

func TestAuthService_SignupLongPasswordBcrypt(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, services.NewBcryptHasher(bcrypt.MinCost), newTestIssuer(t), nil)

	in := signupInput()
	in.Password = strings.Repeat("p", 80)

	var created *models.Account
	mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(nil, errNotFound).Once()
	mockRepo.On("FindByField", repositories.FieldUsername, "alice").Return(nil, errNotFound).Once()
	mockRepo.On("CreateAccount", mock.AnythingOfType("*models.Account")).
		Run(func(args mock.Arguments) { created = args.Get(0).(*models.Account) }).
		Return(nil).Once()

	_, err := authService.Signup(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, created)

	user := created.User
	mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(&user, nil).Twice()

	_, err = authService.Login(context.Background(), services.LoginInput{Email: "a@x.com", Password: in.Password})
	assert.NoError(t, err)
	_, err = authService.Login(context.Background(), services.LoginInput{Email: "a@x.com", Password: in.Password[:72]})
	requireKind(t, err, services.KindInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_SignupDuplicates(t *testing.T) {
	existing := &models.User{ID: "1"}

	cases := []struct {
		name          string
		emailTaken    bool
		usernameTaken bool
		message       string
		fields        []string
	}{
		{"both", true, true, "Email and username are already taken", []string{"email", "username"}},
		{"email only", true, false, "An account with this email already exists", []string{"email"}},
		{"username only", false, true, "Username is already taken", []string{"username"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			authService := services.NewAuthService(mockRepo, fastHasher(), newTestIssuer(t), nil)

			if tc.emailTaken {
				mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(existing, nil).Once()
			} else {
				mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(nil, errNotFound).Once()
			}
			if tc.usernameTaken {
				mockRepo.On("FindByField", repositories.FieldUsername, "alice").Return(existing, nil).Once()
			} else {
				mockRepo.On("FindByField", repositories.FieldUsername, "alice").Return(nil, errNotFound).Once()
			}

			_, err := authService.Signup(context.Background(), signupInput())
			se := requireKind(t, err, services.KindDuplicateAccount)
			assert.Equal(t, tc.message, se.Message)
			assert.Equal(t, tc.fields, se.Fields)

			mockRepo.AssertExpectations(t)
			mockRepo.AssertNotCalled(t, "CreateAccount", mock.Anything)
		})
	}
}

func TestAuthService_SignupLosesRace(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, fastHasher(), newTestIssuer(t), nil)

	// Both checks pass, then the unique index rejects the insert because a
	// concurrent signup claimed the username in between.
	mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(nil, errNotFound).Twice()
	mockRepo.On("FindByField", repositories.FieldUsername, "alice").Return(nil, errNotFound).Once()
	mockRepo.On("CreateAccount", mock.Anything).Return(fmt.Errorf("insert: %w", repositories.ErrDuplicate)).Once()
	mockRepo.On("FindByField", repositories.FieldUsername, "alice").Return(&models.User{ID: "other"}, nil).Once()

	result, err := authService.Signup(context.Background(), signupInput())
	assert.Nil(t, result)
	se := requireKind(t, err, services.KindDuplicateAccount)
	assert.Equal(t, []string{"username"}, se.Fields)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_SignupStoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMQ := new(MockPublisher)
	authService := services.NewAuthService(mockRepo, fastHasher(), newTestIssuer(t), mockMQ)

	mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(nil, errNotFound).Once()
	mockRepo.On("FindByField", repositories.FieldUsername, "alice").Return(nil, errNotFound).Once()
	mockRepo.On("CreateAccount", mock.Anything).Return(fmt.Errorf("database error")).Once()

	result, err := authService.Signup(context.Background(), signupInput())
	assert.Nil(t, result, "no credential may be returned when the write fails")
	requireKind(t, err, services.KindUpstream)
	mockRepo.AssertExpectations(t)
	mockMQ.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)

	// A lookup failure during the duplicate check is an upstream error too.
	mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(nil, fmt.Errorf("connection refused")).Once()
	_, err = authService.Signup(context.Background(), signupInput())
	requireKind(t, err, services.KindUpstream)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	hasher := fastHasher()
	issuer := newTestIssuer(t)
	authService := services.NewAuthService(mockRepo, hasher, issuer, nil)

	hashed, err := hasher.Hash("secret12")
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-123",
		FirstName:    "A",
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: hashed,
		IsAdmin:      true,
	}

	// Test successful login
	mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(user, nil).Once()
	result, err := authService.Login(context.Background(), services.LoginInput{Email: "a@x.com", Password: "secret12"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.Claims(), result.UserData)

	identity, err := issuer.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", identity.Subject)
	assert.True(t, identity.Claims.IsAdmin)
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(user, nil).Once()
	_, err = authService.Login(context.Background(), services.LoginInput{Email: "a@x.com", Password: "wrong"})
	wrongPassword := requireKind(t, err, services.KindInvalidCredentials)
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (user not found)
	mockRepo.On("FindByField", repositories.FieldEmail, "nobody@x.com").Return(nil, errNotFound).Once()
	_, err = authService.Login(context.Background(), services.LoginInput{Email: "nobody@x.com", Password: "secret12"})
	unknownEmail := requireKind(t, err, services.KindInvalidCredentials)
	mockRepo.AssertExpectations(t)

	// Both failures must be indistinguishable to the caller.
	assert.Equal(t, wrongPassword.Message, unknownEmail.Message)
	assert.Equal(t, wrongPassword.Fields, unknownEmail.Fields)

	// Test store failure
	mockRepo.On("FindByField", repositories.FieldEmail, "a@x.com").Return(nil, fmt.Errorf("timeout")).Once()
	_, err = authService.Login(context.Background(), services.LoginInput{Email: "a@x.com", Password: "secret12"})
	requireKind(t, err, services.KindUpstream)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_CheckUsername(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, fastHasher(), newTestIssuer(t), nil)

	mockRepo.On("UsernameExists", "alice").Return(true, nil).Once()
	mockRepo.On("UsernameExists", "bob").Return(false, nil).Once()
	mockRepo.On("UsernameExists", "carol").Return(false, fmt.Errorf("database error")).Once()

	available, err := authService.CheckUsername(context.Background(), "alice")
	assert.NoError(t, err)
	assert.False(t, available)

	available, err = authService.CheckUsername(context.Background(), "bob")
	assert.NoError(t, err)
	assert.True(t, available)

	_, err = authService.CheckUsername(context.Background(), "carol")
	requireKind(t, err, services.KindUpstream)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Account(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, fastHasher(), newTestIssuer(t), nil)

	user := &models.User{ID: "user-123", FirstName: "A", Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	profile := &models.Profile{UserID: "user-123", SavedCount: 2}
	mockRepo.On("GetByID", "user-123").Return(user, nil).Once()
	mockRepo.On("GetProfile", "user-123").Return(profile, nil).Once()

	view, err := authService.Account(context.Background(), "user-123")
	require.NoError(t, err)
	assert.Equal(t, "user-123", view.ID)
	assert.Equal(t, user.Claims(), view.UserData)
	assert.Equal(t, profile, view.Profile)

	mockRepo.On("GetByID", "missing").Return(nil, errNotFound).Once()
	_, err = authService.Account(context.Background(), "missing")
	requireKind(t, err, services.KindNotFound)
	mockRepo.AssertExpectations(t)
}
