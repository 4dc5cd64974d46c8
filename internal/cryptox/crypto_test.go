package cryptox

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("MakeItSo")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	assert.Len(t, key1, int(keyLength))

	other := DeriveKey(password, []byte("other-salt"))
	assert.NotEqual(t, key1, other)
}

func TestHashPassword_Format(t *testing.T) {
	h := HashPassword([]byte("abc"))

	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=65536,t=1,p=4$"), h)
	assert.Len(t, strings.Split(h, "$"), 6)
}

func TestHashPassword_Salted(t *testing.T) {
	a := HashPassword([]byte("abc"))
	b := HashPassword([]byte("abc"))
	assert.NotEqual(t, a, b, "same password must hash differently")
}

func TestVerifyPassword(t *testing.T) {
	h := HashPassword([]byte("abc"))

	ok, err := VerifyPassword(h, []byte("abc"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(h, []byte("abd"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyPassword(h, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=1$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
	}

	for _, h := range tests {
		ok, err := VerifyPassword(h, []byte("abc"))
		assert.ErrorIs(t, err, ErrMalformedHash, h)
		assert.False(t, ok)
	}
}
