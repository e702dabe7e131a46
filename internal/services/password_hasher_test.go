package services_test

import (
	"strings"
	"testing"

	"prospects/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashers_RoundTrip(t *testing.T) {
	hashers := map[string]services.PasswordHasher{
		"argon2id": fastHasher(),
		"bcrypt":   services.NewBcryptHasher(bcrypt.MinCost),
	}

	for name, hasher := range hashers {
		t.Run(name, func(t *testing.T) {
			for _, secret := range []string{"secret12", "x", "pässwörd with spaces", strings.Repeat("a", 64), strings.Repeat("a", 100)} {
				hashed, err := hasher.Hash(secret)
				require.NoError(t, err)
				assert.NotEqual(t, secret, hashed)
				assert.True(t, hasher.Verify(hashed, secret))
				assert.False(t, hasher.Verify(hashed, secret+"!"))
				assert.False(t, hasher.Verify(hashed, ""))
			}

			// Salted: the same secret never hashes the same way twice.
			first, err := hasher.Hash("secret12")
			require.NoError(t, err)
			second, err := hasher.Hash("secret12")
			require.NoError(t, err)
			assert.NotEqual(t, first, second)
		})
	}
}

func TestArgon2idHasher_Format(t *testing.T) {
	hashed, err := fastHasher().Hash("secret12")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "$argon2id$v=19$m=1024,t=1,p=1$"), hashed)

	// A hash produced with other parameters still verifies.
	strong := services.NewArgon2idHasher(services.Argon2idParams{Memory: 2048, Iterations: 2, Parallelism: 2, SaltLength: 8, KeyLength: 16})
	other, err := strong.Hash("secret12")
	require.NoError(t, err)
	assert.True(t, fastHasher().Verify(other, "secret12"))
}

func TestPasswordHashers_MalformedHash(t *testing.T) {
	malformed := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1024,t=1,p=1$onlysalt",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=8,t=2000000,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$",
		"$2a$10$short",
	}

	hashers := []services.PasswordHasher{fastHasher(), services.NewBcryptHasher(bcrypt.MinCost)}
	for _, hasher := range hashers {
		for _, h := range malformed {
			assert.NotPanics(t, func() {
				assert.False(t, hasher.Verify(h, "secret12"), h)
			})
		}
	}
}

func TestBcryptHasher_LongSecret(t *testing.T) {
	hasher := services.NewBcryptHasher(bcrypt.MinCost)
	long := strings.Repeat("p", 80)

	hashed, err := hasher.Hash(long)
	require.NoError(t, err)
	assert.True(t, hasher.Verify(hashed, long))
	// Bytes past 72 still count.
	assert.False(t, hasher.Verify(hashed, long[:72]))
	assert.False(t, hasher.Verify(hashed, long[:79]+"q"))
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := services.NewPasswordHasher("argon2id")
	require.NoError(t, err)
	assert.IsType(t, &services.Argon2idHasher{}, h)

	h, err = services.NewPasswordHasher("BCRYPT")
	require.NoError(t, err)
	assert.IsType(t, &services.BcryptHasher{}, h)

	_, err = services.NewPasswordHasher("md5")
	assert.Error(t, err)
}
