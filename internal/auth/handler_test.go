package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecomstack/backend/internal/logger"
	"github.com/ecomstack/backend/internal/models"
	"github.com/ecomstack/backend/internal/store"
)

type fixture struct {
	users   *store.MemoryStore
	tokens  *Tokens
	handler *Handler
}

func newFixture() *fixture {
	users := store.NewMemoryStore()
	tokens := NewTokens("test-secret", 0, NewDenylist(0))
	h := NewHandler(users, tokens, logger.Discard())
	h.cost = bcrypt.MinCost
	return &fixture{users: users, tokens: tokens, handler: h}
}

func call(h http.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	var out map[string]any
	json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestSignup(t *testing.T) {
	f := newFixture()

	w, out := call(f.handler.Signup, `{"username":"ann","email":"ann@example.com","password":"12345678"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])

	claims, err := f.tokens.Verify(context.Background(), out["token"].(string))
	require.NoError(t, err)

	u, err := f.users.GetUserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.User.ID)
	assert.Equal(t, "ann", u.Name)
	assert.NotEqual(t, "12345678", u.Password, "password must be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("12345678")))

	cart, err := f.users.GetCart(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, cart, models.CartSlots)
	for slot, n := range cart {
		assert.Zero(t, n, "slot %d", slot)
	}
}

func TestSignupAcceptsUserField(t *testing.T) {
	f := newFixture()
	w, _ := call(f.handler.Signup, `{"user":"bob","email":"bob@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)

	u, err := f.users.GetUserByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Name)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture()
	body := `{"username":"ann","email":"ann@example.com","password":"pw"}`
	w, _ := call(f.handler.Signup, body)
	require.Equal(t, http.StatusOK, w.Code)
	first, err := f.users.GetUserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)

	w, out := call(f.handler.Signup, `{"username":"imposter","email":"ann@example.com","password":"other"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "existing user found with same email address", out["error"])

	still, err := f.users.GetUserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, still.ID)
	assert.Equal(t, "ann", still.Name)
}

func TestSignupRejectsBadBodies(t *testing.T) {
	f := newFixture()
	for _, body := range []string{``, `{`, `{"password":"pw"}`, `{"email":"a@b.co"}`} {
		w, out := call(f.handler.Signup, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, false, out["success"], body)
	}
}

func TestSignupAcceptsFreeFormEmail(t *testing.T) {
	f := newFixture()
	w, out := call(f.handler.Signup, `{"username":"bo","email":"bo","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])

	u, err := f.users.GetUserByEmail(context.Background(), "bo")
	require.NoError(t, err)
	assert.Equal(t, "bo", u.Name)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	w, _ := call(f.handler.Signup, `{"username":"ann","email":"ann@example.com","password":"12345678"}`)
	require.Equal(t, http.StatusOK, w.Code)
	u, err := f.users.GetUserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		w, out := call(f.handler.Login, `{"email":"ann@example.com","password":"12345678"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, out["success"])

		claims, err := f.tokens.Verify(context.Background(), out["token"].(string))
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		w, out := call(f.handler.Login, `{"email":"ann@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, map[string]any{"success": false, "errors": "Wrong Password"}, out)
	})

	t.Run("wrong email", func(t *testing.T) {
		w, out := call(f.handler.Login, `{"email":"zed@example.com","password":"12345678"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, map[string]any{"success": false, "errors": "Wrong Email Id"}, out)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	raw, err := f.tokens.Issue(ctx, "user-1")
	require.NoError(t, err)
	claims, err := f.tokens.Verify(ctx, raw)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	f.handler.Logout(w, r.WithContext(WithClaims(ctx, claims)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	_, err = f.tokens.Verify(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	w = httptest.NewRecorder()
	f.handler.Logout(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
