package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/auth"
	"github.com/nfrund/parley/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

type memoryUserRepo struct {
	byEmail map[string]*domain.User
	seq     int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserAlreadyExists
	}
	r.seq++
	id := surrealmodels.NewRecordID("user", strconv.Itoa(r.seq))
	stored := *user
	stored.ID = &id
	r.byEmail[user.Email] = &stored
	return &stored, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.byEmail[email], nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.byEmail {
		if user.ID.String() == id {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func newAuthFixture() (*AuthHandler, *memoryUserRepo) {
	repo := newMemoryUserRepo()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthHandler(repo, tokens), repo
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_RegisterCreatesUser(t *testing.T) {
	handler, repo := newAuthFixture()
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	require.NoError(t, handler.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.NotEmpty(t, resp.ID)
	assert.NotEmpty(t, resp.Token)

	stored := repo.byEmail["alice@example.com"]
	require.NotNil(t, stored)
	assert.NoError(t, auth.CheckPassword(stored.PasswordHash, "secret1"))
}

func TestAuthHandler_RegisterRejectsDuplicate(t *testing.T) {
	handler, _ := newAuthFixture()
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	require.NoError(t, handler.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = postJSON(e, "/api/auth/register", `{"username":"alice2","email":"alice@example.com","password":"secret1"}`)
	require.NoError(t, handler.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	handler, _ := newAuthFixture()
	e := echo.New()

	cases := map[string]string{
		"short username": `{"username":"al","email":"alice@example.com","password":"secret1"}`,
		"bad email":      `{"username":"alice","email":"not-an-email","password":"secret1"}`,
		"short password": `{"username":"alice","email":"alice@example.com","password":"pw"}`,
		"missing fields": `{}`,
	}
	for name, body := range cases {
		c, rec := postJSON(e, "/api/auth/register", body)
		require.NoError(t, handler.Register(c), name)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestAuthHandler_LoginSucceeds(t *testing.T) {
	handler, _ := newAuthFixture()
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	require.NoError(t, handler.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = postJSON(e, "/api/auth/login", `{"email":"alice@example.com","password":"secret1"}`)
	require.NoError(t, handler.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthHandler_LoginDoesNotRevealWhichFieldWasWrong(t *testing.T) {
	handler, _ := newAuthFixture()
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	require.NoError(t, handler.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, unknownEmail := postJSON(e, "/api/auth/login", `{"email":"nobody@example.com","password":"secret1"}`)
	require.NoError(t, handler.Login(c))

	c, wrongPassword := postJSON(e, "/api/auth/login", `{"email":"alice@example.com","password":"wrong-pass"}`)
	require.NoError(t, handler.Login(c))

	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, unknownEmail.Body.String(), wrongPassword.Body.String())
}
