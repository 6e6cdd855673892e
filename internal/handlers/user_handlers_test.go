package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmoroz/storefront/internal/models"
)

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("Ann", "ann@x.com", "secret1", models.RoleCustomer)
	env.createUser("Bob", "bob@x.com", "secret1", models.RoleAdmin)

	rec, _, c := env.doJSONRequest(http.MethodGet, "/api/v1/admin/users", nil)
	require.NoError(t, env.Users.ListUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.User `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestChangeRole(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("Ann", "ann@x.com", "secret1", models.RoleCustomer)

	rec, _, c := env.doJSONRequest(http.MethodPatch, "/api/v1/admin/users/1/role",
		map[string]string{"role": models.RoleSeller})
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(user.ID))

	require.NoError(t, env.Users.ChangeRole(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.RoleSeller, got.Role)
}

func TestChangeRole_UnknownRole(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("Ann", "ann@x.com", "secret1", models.RoleCustomer)

	_, _, c := env.doJSONRequest(http.MethodPatch, "/api/v1/admin/users/1/role",
		map[string]string{"role": "superuser"})
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(user.ID))

	err := env.Users.ChangeRole(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, "unknown role", he.Message)
}

func TestChangeRole_UserNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, _, c := env.doJSONRequest(http.MethodPatch, "/api/v1/admin/users/99/role",
		map[string]string{"role": models.RoleAdmin})
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := env.Users.ChangeRole(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestChangeStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("Ann", "ann@x.com", "secret1", models.RoleCustomer)

	rec, _, c := env.doJSONRequest(http.MethodPatch, "/api/v1/admin/users/1/status",
		map[string]string{"status": models.StatusBlocked})
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(user.ID))

	require.NoError(t, env.Users.ChangeStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.StatusBlocked, got.Status)

	_, _, c2 := env.doJSONRequest(http.MethodPatch, "/api/v1/admin/users/1/status",
		map[string]string{"status": "frozen"})
	c2.SetParamNames("id")
	c2.SetParamValues(fmt.Sprint(user.ID))

	err := env.Users.ChangeStatus(c2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
