package controllers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"goblog/auth"
	"goblog/media"
	"goblog/models"
	"goblog/repositories"
	"goblog/services"
)

var dbSeq atomic.Int64

type testApp struct {
	server   *httptest.Server
	client   *http.Client
	accounts services.AccountService
	posts    services.PostService
}

// newTestApp wires the full application against an in-memory database,
// mirroring the route table in main.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:ctl%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))

	accountService := services.NewAccountService(repositories.NewUserRepository(db))
	postService := services.NewPostService(repositories.NewPostRepository(db))
	sessions := auth.NewSessionManager([]byte("test-session"), []byte("test-remember"), accountService)
	pictures := media.NewPictureStore(t.TempDir())
	logger := zap.NewNop()

	userController := NewUserController(accountService, sessions, pictures, logger)
	postController := NewPostController(postService, accountService, sessions, logger)

	r := gin.New()
	r.Use(sessions.CurrentUser())
	r.LoadHTMLGlob("../templates/*.html")

	r.GET("/", postController.Home)
	r.GET("/register", userController.Register)
	r.POST("/register", userController.Register)
	r.GET("/login", userController.Login)
	r.POST("/login", userController.Login)
	r.GET("/logout", userController.Logout)
	r.GET("/posts/:username", postController.UserPosts)

	authed := r.Group("/", sessions.RequireLogin())
	{
		authed.GET("/account", userController.Account)
		authed.POST("/account", userController.Account)
		authed.GET("/change-password", userController.ChangePassword)
		authed.POST("/change-password", userController.ChangePassword)
		authed.GET("/create-post", postController.CreatePost)
		authed.POST("/create-post", postController.CreatePost)
		authed.Any("/post/*path", postController.Dispatch)
	}

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{server: server, client: client, accounts: accountService, posts: postService}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

// do issues a bodyless request with an arbitrary method.
func (a *testApp) do(t *testing.T, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, nil)
	require.NoError(t, err)
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// signup registers a user directly through the service layer.
func (a *testApp) signup(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	user, err := a.accounts.Register(&services.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

// login authenticates through the real login route so the client's jar
// carries the session cookie afterwards.
func (a *testApp) login(t *testing.T, email, password string) {
	t.Helper()
	resp, _ := a.postForm(t, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode, "login should redirect on success")
}

func location(t *testing.T, resp *http.Response) string {
	t.Helper()
	loc := resp.Header.Get("Location")
	require.NotEmpty(t, loc)
	return loc
}

func assertContains(t *testing.T, body, want string) {
	t.Helper()
	require.True(t, strings.Contains(body, want), "body should contain %q", want)
}
