package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jemaristudio/eshop-go/core"
	"github.com/jemaristudio/eshop-go/session"
)

// newTestClient wires a facade against a test server with an in-memory
// session store. Pass a token to start authenticated.
func newTestClient(t *testing.T, baseURL, token string) *Client {
	t.Helper()

	cfg, err := core.NewConfig(core.WithBaseURL(baseURL))
	require.NoError(t, err)

	sessions := session.NewMemoryStore()
	if token != "" {
		require.NoError(t, sessions.SetCredentials(context.Background(), token, &session.User{ID: "u1", Name: "Ana", Email: "ana@example.com"}))
	}

	c, err := New(cfg, Dependencies{
		Sessions: sessions,
		Logger:   &core.NoOpLogger{},
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func TestLoginSuccess(t *testing.T) {
	var gotBody loginRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, `{
			"success": true,
			"message": "ok",
			"data": {
				"accessToken": "jwt-123",
				"user": {"id": "u1", "name": "Ana", "email": "ana@example.com"}
			}
		}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	user, err := c.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", gotBody.Email)
	assert.Equal(t, "Ana", user.Name)

	// credentials captured in the session
	token, err := c.Sessions().Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt-123", token)
	stored, err := c.Sessions().User(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "u1", stored.ID)
}

// Blank credentials fail locally; the server must never see the request.
func TestLoginBlankInputNoNetwork(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")

	_, err := c.Login(context.Background(), "", "secret")
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))

	_, err = c.Login(context.Background(), "ana@example.com", "")
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Email atau password salah"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	_, err := c.Login(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)

	assert.True(t, core.IsAuthError(err))
	assert.Equal(t, "Email atau password salah", core.ServerMessage(err))

	// a failed login leaves the session unauthenticated
	ok, err := c.Sessions().Authenticated(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

// success=false in a 200 body is still a rejection.
func TestLoginSuccessFalseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"message":"Akun diblokir"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	_, err := c.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))
	assert.Equal(t, "Akun diblokir", core.ServerMessage(err))
}

func TestLoginTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newTestClient(t, server.URL, "")
	_, err := c.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.True(t, core.IsNetworkError(err))
}

func TestRegisterValidation(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"blank name", "", "a@b.c", "pw"},
		{"blank email", "Ana", "", "pw"},
		{"email without at-sign", "Ana", "not-an-email", "pw"},
		{"blank password", "Ana", "a@b.c", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Register(context.Background(), tt.userName, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
		})
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestRegisterSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		writeJSON(w, http.StatusCreated, `{"success":true,"message":"created"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	require.NoError(t, c.Register(context.Background(), "Ana", "ana@example.com", "secret"))
}

func TestLogoutClearsSession(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid", "jwt-123")

	ok, err := c.Sessions().Authenticated(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Logout(context.Background()))

	ok, err = c.Sessions().Authenticated(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "Bearer jwt-123", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "created_at", q.Get("sort"))
		assert.Equal(t, "DESC", q.Get("order"))

		writeJSON(w, http.StatusOK, `{"success":true,"data":[`+productJSON+`,
			{"id":"p2","name":"Pen","description":"Fine","imageUrl":"https://cdn.example.com/p2?s=y","avgRating":3.0,"variants":[],"categories":[]},
			{"id":"p3","name":"Ink","description":"Black","imageUrl":"https://cdn.example.com/p3?s=z","avgRating":5.0,"variants":[],"categories":[]}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "jwt-123")
	products, err := c.Products(context.Background(), ProductQuery{})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p3", products[2].ID)
}

func TestProductsQueryParams(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "jwt-123")

	t.Run("search and category", func(t *testing.T) {
		_, err := c.Products(context.Background(), ProductQuery{Search: "buku tulis", CategoryID: "c7"})
		require.NoError(t, err)
		assert.Equal(t, []string{"buku tulis"}, gotQuery["search"])
		assert.Equal(t, []string{"c7"}, gotQuery["categoryId"])
	})

	t.Run("category zero means no filter", func(t *testing.T) {
		_, err := c.Products(context.Background(), ProductQuery{CategoryID: core.CategoryAll})
		require.NoError(t, err)
		assert.NotContains(t, gotQuery, "categoryId")
		assert.NotContains(t, gotQuery, "search")
	})
}

func TestProductsUnauthenticatedNoNetwork(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	_, err := c.Products(context.Background(), ProductQuery{})
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

// A failing listing returns no partial data.
func TestProductsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"success":false,"message":"database down"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "jwt-123")
	products, err := c.Products(context.Background(), ProductQuery{})
	require.Error(t, err)
	assert.Nil(t, products)
	assert.True(t, core.IsServerError(err))
	assert.Equal(t, "database down", core.ServerMessage(err))
}

func TestProductsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>proxy error</html>`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "jwt-123")
	products, err := c.Products(context.Background(), ProductQuery{})
	require.Error(t, err)
	assert.Nil(t, products)
	assert.ErrorIs(t, err, core.ErrDecode)
}

func TestProductByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/p1":
			writeJSON(w, http.StatusOK, `{"success":true,"data":`+productJSON+`}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"success":false,"message":"Produk tidak ditemukan"}`)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "jwt-123")

	t.Run("found", func(t *testing.T) {
		p, err := c.ProductByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Sketchbook", p.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := c.ProductByID(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := c.ProductByID(context.Background(), "")
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})
}

func TestCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"success":true,"data":[
			{"id":"c1","name":"Paper","description":"Paper goods"},
			{"id":"c2","name":"Art","description":"Art supplies"}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "jwt-123")
	categories, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Paper", categories[0].Name)
}

func TestExpiredTokenMapsToAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Token expired"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "stale-jwt")
	_, err := c.Products(context.Background(), ProductQuery{})
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}
