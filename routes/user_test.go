package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/storage"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildUserTestApp(t *testing.T) *iris.Application {
	t.Helper()
	app := iris.New()
	app.Validator = validator.New()

	user := app.Party("/api/user")
	{
		user.Post("/register", Register)
		user.Post("/login", Login)
	}

	require.NoError(t, app.Build())
	return app
}

func postJSON(app *iris.Application, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func seedUser(t *testing.T, email, password string) {
	t.Helper()
	hashed, err := hashAndSaltPassword(password)
	require.NoError(t, err)
	require.NoError(t, storage.DB.Create(&models.User{
		FirstName: "Ana",
		LastName:  "Souza",
		Email:     email,
		Password:  hashed,
		Role:      "user",
	}).Error)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	setupRoutesDB(t)
	app := buildUserTestApp(t)
	seedUser(t, "ana@example.com", "password123")

	// existing-account lookup is case-insensitive on the email
	resp := postJSON(app, "/api/user/register",
		`{"firstName":"Ana","lastName":"Souza","email":"Ana@Example.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, resp.Code)

	var count int64
	storage.DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	setupRoutesDB(t)
	app := buildUserTestApp(t)

	resp := postJSON(app, "/api/user/login",
		`{"email":"nobody@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	setupRoutesDB(t)
	app := buildUserTestApp(t)
	seedUser(t, "ana@example.com", "password123")

	resp := postJSON(app, "/api/user/login",
		`{"email":"ana@example.com","password":"not-the-password"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
