package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomstack/backend/internal/auth"
	"github.com/ecomstack/backend/internal/logger"
	"github.com/ecomstack/backend/internal/models"
	"github.com/ecomstack/backend/internal/store"
)

type fixture struct {
	handler *Handler
	userID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	u := &models.User{Name: "ann", Email: "ann@example.com", Password: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return &fixture{handler: NewHandler(s, logger.Discard()), userID: u.ID}
}

func (f *fixture) do(h http.HandlerFunc, userID, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r = r.WithContext(auth.WithClaims(r.Context(), &auth.Claims{User: auth.TokenUser{ID: userID}}))
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func (f *fixture) cart(t *testing.T) map[string]int {
	t.Helper()
	w := f.do(f.handler.Get, f.userID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func item(slot int) string {
	return fmt.Sprintf(`{"itemId":%d}`, slot)
}

func TestGetReturnsAllSlots(t *testing.T) {
	f := newFixture(t)
	c := f.cart(t)
	assert.Len(t, c, models.CartSlots)
	assert.Equal(t, 0, c["0"])
	assert.Equal(t, 0, c["299"])
}

func TestAddThenRemoveRestoresCount(t *testing.T) {
	f := newFixture(t)

	w := f.do(f.handler.Add, f.userID, item(17))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Added", w.Body.String())
	assert.Equal(t, 1, f.cart(t)["17"])

	w = f.do(f.handler.Remove, f.userID, item(17))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Removed", w.Body.String())
	assert.Equal(t, 0, f.cart(t)["17"])
}

func TestAddHasNoUpperBound(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		require.Equal(t, http.StatusOK, f.do(f.handler.Add, f.userID, item(3)).Code)
	}
	assert.Equal(t, 25, f.cart(t)["3"])
}

func TestRemoveOnEmptySlotStaysZero(t *testing.T) {
	f := newFixture(t)
	for slot := 0; slot < models.CartSlots; slot++ {
		w := f.do(f.handler.Remove, f.userID, item(slot))
		require.Equal(t, http.StatusOK, w.Code, "slot %d", slot)
	}
	for slot, n := range f.cart(t) {
		assert.Zero(t, n, "slot %s", slot)
	}
}

func TestRejectsSlotsOutsideCart(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{item(-1), item(300), `{}`, `{"itemId":"5"}`, `{"itemId":1.5}`} {
		w := f.do(f.handler.Add, f.userID, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		w = f.do(f.handler.Remove, f.userID, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestUnknownUser(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(f.handler.Add, "ghost", item(1)).Code)
	assert.Equal(t, http.StatusNotFound, f.do(f.handler.Remove, "ghost", item(1)).Code)
	assert.Equal(t, http.StatusNotFound, f.do(f.handler.Get, "ghost", "").Code)
}
