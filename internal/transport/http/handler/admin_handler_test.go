package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"secret-nick/internal/core/auth"
	"secret-nick/internal/domain"
	"secret-nick/internal/domain/mocks"
	"secret-nick/internal/repo"
	"secret-nick/internal/transport/http/handler"
	mdw "secret-nick/internal/transport/http/middleware"
	resp "secret-nick/internal/transport/http/response"
	"secret-nick/pkg/utils"
)

type fakeLister struct {
	got  repo.RoomFilter
	page repo.RoomPage
}

func (f *fakeLister) List(_ context.Context, rf repo.RoomFilter) (repo.RoomPage, error) {
	f.got = rf
	return f.page, nil
}

func newAdmin(t *testing.T, rooms domain.RoomRepository, lister handler.RoomLister) (*gin.Engine, *auth.JWTer) {
	t.Helper()
	hash, err := utils.HashPassword("pa55")
	require.NoError(t, err)
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "secret-nick", TTL: time.Hour}
	h := handler.NewAdminHandler(rooms, lister, j, handler.Operator{Username: "ops", PasswordHash: hash}, nil)

	r := gin.New()
	base := r.Group("/admin/v1")
	h.MountLogin(base)
	protected := base.Group("")
	protected.Use(mdw.AuthJWT(j, "admin"))
	h.MountAdmin(protected)
	return r, j
}

func authed(t *testing.T, r http.Handler, token, target string) envelope {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAdminLogin(t *testing.T) {
	r, j := newAdmin(t, new(mocks.RoomRepository), &fakeLister{})

	env := call(t, r, http.MethodPost, "/admin/v1/login", gin.H{"username": "ops", "password": "wrong"})
	assert.Equal(t, resp.CodeUnauthorized, env.Code)

	env = call(t, r, http.MethodPost, "/admin/v1/login", gin.H{"username": "ops", "password": "pa55"})
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	var out struct{ Token string }
	require.NoError(t, json.Unmarshal(env.Data, &out))
	claims, err := j.Parse(out.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "ops", claims.UID)
}

func TestAdminRooms_RequireToken(t *testing.T) {
	r, _ := newAdmin(t, new(mocks.RoomRepository), &fakeLister{})

	env := authed(t, r, "garbage", "/admin/v1/rooms")

	assert.Equal(t, resp.CodeUnauthorized, env.Code)
}

func TestAdminRooms_ListPassesFilter(t *testing.T) {
	lister := &fakeLister{page: repo.RoomPage{Total: 1, Items: []repo.RoomSummary{{ID: 7, Name: "Office", UserCount: 4}}}}
	r, j := newAdmin(t, new(mocks.RoomRepository), lister)
	tok, err := j.Issue("ops", "admin")
	require.NoError(t, err)

	env := authed(t, r, tok, "/admin/v1/rooms?status=closed&q=off&limit=5")

	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	assert.Equal(t, repo.RoomFilter{Status: "closed", Q: "off", Limit: 5}, lister.got)
	var page repo.RoomPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)

	env = authed(t, r, tok, "/admin/v1/rooms?status=weird")
	assert.Equal(t, resp.CodeBadRequest, env.Code)
}

func TestAdminRoomDetail(t *testing.T) {
	rooms := new(mocks.RoomRepository)
	r, j := newAdmin(t, rooms, &fakeLister{})
	tok, err := j.Issue("ops", "admin")
	require.NoError(t, err)
	rooms.On("FindByID", mock.Anything, domain.RoomID(404)).Return(nil, domain.ErrRoomNotFound).Once()
	rooms.On("FindByID", mock.Anything, domain.RoomID(1)).
		Return(roomOf(t, 1, false, member(1, "secret-a", true), member(2, "secret-b", false)), nil).Once()

	env := authed(t, r, tok, "/admin/v1/rooms/404")
	assert.Equal(t, resp.CodeNotFound, env.Code)

	env = authed(t, r, tok, "/admin/v1/rooms/1")
	require.Equal(t, resp.CodeOK, env.Code, env.Msg)
	assert.False(t, strings.Contains(string(env.Data), "secret-"), "运营视图不应包含成员凭证")
	var v handler.AdminRoomView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "INV", v.InvitationCode)
	assert.Len(t, v.Users, 2)
}
