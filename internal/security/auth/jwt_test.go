package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	tm := NewTokenManager("unit-secret", "helpdesk", "helpdesk-web")

	token, err := tm.Issue(42, "root@example.com", "Admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)

	id, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "Admin", claims.Role)
	assert.Equal(t, "root@example.com", claims.Email)
}

func TestIssueOmitsEmailForSupport(t *testing.T) {
	tm := NewTokenManager("unit-secret", "", "")

	token, err := tm.Issue(7, "", "Support")
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "Support", claims.Role)
	assert.Empty(t, claims.Email)
}

func TestValidateExpiredToken(t *testing.T) {
	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tm := NewTokenManager("unit-secret", "", "").WithClock(func() time.Time { return issued })

	token, err := tm.Issue(1, "", "Support")
	require.NoError(t, err)

	// still valid just inside the 8-hour window
	tm.WithClock(func() time.Time { return issued.Add(TokenTTL - time.Minute) })
	_, err = tm.Validate(token)
	require.NoError(t, err)

	// expired once the boundary has passed
	tm.WithClock(func() time.Time { return issued.Add(TokenTTL + time.Minute) })
	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	tm := NewTokenManager("unit-secret", "", "")

	token, err := tm.Issue(1, "", "Support")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("secret-a", "", "")
	verifier := NewTokenManager("secret-b", "", "")

	token, err := issuer.Issue(1, "", "Admin")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueRequiresSubjectAndRole(t *testing.T) {
	tm := NewTokenManager("unit-secret", "", "")

	_, err := tm.Issue(0, "", "Admin")
	assert.Error(t, err)

	_, err = tm.Issue(1, "", "")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	got, err := ExtractToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", got)

	_, err = ExtractToken("abc.def.ghi")
	assert.Error(t, err)

	_, err = ExtractToken("Basic abc")
	assert.Error(t, err)
}
