package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karigarverse/karigarverse/internal/auth"
)

type authMock struct {
	user  *auth.User
	token string
	err   error
}

func (m *authMock) Register(_ context.Context, _, _, _ string) (*auth.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *authMock) Login(_ context.Context, _, _ string) (*auth.User, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.user, m.token, nil
}

func (m *authMock) Logout(_ context.Context, _ string) error { return m.err }

func TestLoginReturnsToken(t *testing.T) {
	m := &authMock{user: &auth.User{ID: "u1", Email: "mira@example.com"}, token: "opaque-token"}
	h := &AuthHandler{Auth: m}

	body := bytes.NewBufferString(`{"email":"mira@example.com","password":"hunter2hunter2"}`)
	rec := httptest.NewRecorder()
	h.login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var got loginResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "opaque-token", got.Token)
	assert.Equal(t, "u1", got.User.ID)
}

func TestLoginBadCredentials(t *testing.T) {
	h := &AuthHandler{Auth: &authMock{err: auth.ErrInvalidCredentials}}
	body := bytes.NewBufferString(`{"email":"mira@example.com","password":"wrong"}`)
	rec := httptest.NewRecorder()
	h.login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := &AuthHandler{Auth: &authMock{err: auth.ErrEmailTaken}}
	body := bytes.NewBufferString(`{"email":"mira@example.com","name":"Mira","password":"hunter2hunter2"}`)
	rec := httptest.NewRecorder()
	h.register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", body))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
