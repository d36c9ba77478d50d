package credsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mwalimu/core/auth"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *GoTrueStore {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoTrueStore(srv.URL, "anon-key")
}

func TestGoTrueStore_SignInWithPassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))

			var creds map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "jane@school.test", creds["email"])
			assert.Equal(t, "pwd123", creds["password"])

			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "tok",
				"token_type":   "bearer",
				"expires_in":   3600,
				"user":         map[string]string{"id": "uid-1", "email": "jane@school.test"},
			})
		})

		sess, err := store.SignInWithPassword(context.Background(), "jane@school.test", "pwd123")
		assert.NoError(t, err)
		assert.Equal(t, "tok", sess.AccessToken)
		assert.Equal(t, "uid-1", sess.User.ID)
		assert.Equal(t, "jane@school.test", sess.User.Email)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
		})

		_, err := store.SignInWithPassword(context.Background(), "jane@school.test", "nope")
		assert.EqualError(t, err, "Invalid login credentials")
	})
}

func TestGoTrueStore_SignUp(t *testing.T) {
	t.Run("session issued immediately", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/signup", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "tok",
				"token_type":   "bearer",
				"expires_in":   3600,
				"user":         map[string]string{"id": "uid-2", "email": "new@school.test"},
			})
		})

		res, err := store.SignUp(context.Background(), "new@school.test", "pwd123")
		assert.NoError(t, err)
		assert.NotNil(t, res.User)
		assert.NotNil(t, res.Session)
		assert.Equal(t, "tok", res.Session.AccessToken)
		assert.Equal(t, "uid-2", res.Session.User.ID)
	})

	t.Run("confirmation pending returns bare user", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":    "uid-3",
				"email": "new@school.test",
			})
		})

		res, err := store.SignUp(context.Background(), "new@school.test", "pwd123")
		assert.NoError(t, err)
		assert.Nil(t, res.Session)
		assert.NotNil(t, res.User)
		assert.Equal(t, "uid-3", res.User.ID)
	})

	t.Run("duplicate account maps to ErrDuplicateAccount", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"msg": "User already registered"})
		})

		_, err := store.SignUp(context.Background(), "jane@school.test", "pwd123")
		assert.Equal(t, auth.ErrDuplicateAccount, errors.Cause(err))
	})

	t.Run("other failure surfaces the raw message", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"msg": "Password should be at least 6 characters"})
		})

		_, err := store.SignUp(context.Background(), "new@school.test", "123")
		assert.EqualError(t, err, "Password should be at least 6 characters")
	})
}
