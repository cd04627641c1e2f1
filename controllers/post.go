package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"goblog/auth"
	"goblog/forms"
	"goblog/models"
	"goblog/services"
)

// PostController serves the home feed and the post CRUD views.
type PostController struct {
	posts    services.PostService
	accounts services.AccountService
	sessions *auth.SessionManager
	logger   *zap.Logger
}

func NewPostController(posts services.PostService, accounts services.AccountService, sessions *auth.SessionManager, logger *zap.Logger) *PostController {
	return &PostController{
		posts:    posts,
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

// Dispatch routes the /post subtree by hand. The static update and
// delete segments share their position with the bare post id, which
// gin's route tree cannot express as separate routes.
func (ctl *PostController) Dispatch(c *gin.Context) {
	parts := strings.Split(strings.Trim(c.Param("path"), "/"), "/")
	method := c.Request.Method
	switch {
	case len(parts) == 1:
		// The detail view is read-only.
		if method != http.MethodGet {
			methodNotAllowed(c, http.MethodGet)
			return
		}
		withID(c, parts[0])
		ctl.DetailPost(c)
	case len(parts) == 2 && (parts[0] == "update" || parts[0] == "delete"):
		// Update and delete express intent through the method: GET shows
		// the form or confirmation, POST mutates. Nothing else may fall
		// through to the mutation branch.
		if method != http.MethodGet && method != http.MethodPost {
			methodNotAllowed(c, "GET, POST")
			return
		}
		withID(c, parts[1])
		if parts[0] == "update" {
			ctl.UpdatePost(c)
		} else {
			ctl.DeletePost(c)
		}
	default:
		renderNotFound(c, ctl.sessions)
	}
}

func methodNotAllowed(c *gin.Context, allow string) {
	c.Header("Allow", allow)
	c.Status(http.StatusMethodNotAllowed)
}

func withID(c *gin.Context, value string) {
	c.Params = append(c.Params, gin.Param{Key: "id", Value: value})
}

// Home handles GET /: every post globally, most recent first.
func (ctl *PostController) Home(c *gin.Context) {
	posts, err := ctl.posts.ListRecent()
	if err != nil {
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}
	render(c, ctl.sessions, http.StatusOK, "home.html", gin.H{
		"Title": "Blog | Home page",
		"Posts": posts,
	})
}

// CreatePost handles GET and POST /create-post.
func (ctl *PostController) CreatePost(c *gin.Context) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	form := forms.PostForm{}
	if c.Request.Method == http.MethodGet {
		ctl.renderPostForm(c, "create_post.html", "Blog | Create post", &form, forms.Errors{})
		return
	}

	if err := c.ShouldBind(&form); err != nil {
		ctl.renderPostForm(c, "create_post.html", "Blog | Create post", &form, forms.Translate(err))
		return
	}

	post, err := ctl.posts.Create(user.ID, form.Title, form.Content)
	if err != nil {
		if errors.Is(err, services.ErrTitleTooLong) {
			errs := forms.Errors{}
			errs.Add("title", fmt.Sprintf("Title cannot have more than %d symbols!", models.TitleMaxLen))
			ctl.renderPostForm(c, "create_post.html", "Blog | Create post", &form, errs)
			return
		}
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/post/%d", post.ID))
}

// DetailPost handles GET /post/:id. Unknown ids render the not-found page.
func (ctl *PostController) DetailPost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, ctl.sessions)
		return
	}
	post, err := ctl.posts.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			renderNotFound(c, ctl.sessions)
			return
		}
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}
	render(c, ctl.sessions, http.StatusOK, "detail_post.html", gin.H{
		"Title": "Blog | " + capitalized(post.Title),
		"Post":  post,
	})
}

// UpdatePost handles GET and POST /post/update/:id. Only the owner may
// proceed; anyone else gets the access-denied view.
func (ctl *PostController) UpdatePost(c *gin.Context) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	post, done := ctl.ownedPost(c, user.ID)
	if done {
		return
	}

	if c.Request.Method == http.MethodGet {
		form := forms.PostForm{Title: post.Title, Content: post.Content}
		ctl.renderUpdateForm(c, post, &form, forms.Errors{})
		return
	}

	form := forms.PostForm{}
	if err := c.ShouldBind(&form); err != nil {
		ctl.renderUpdateForm(c, post, &form, forms.Translate(err))
		return
	}

	changed := post.Title != form.Title || post.Content != form.Content

	if _, err := ctl.posts.Update(post.ID, user.ID, form.Title, form.Content); err != nil {
		if errors.Is(err, services.ErrTitleTooLong) {
			errs := forms.Errors{}
			errs.Add("title", fmt.Sprintf("Title cannot have more than %d symbols!", models.TitleMaxLen))
			ctl.renderUpdateForm(c, post, &form, errs)
			return
		}
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}

	if changed {
		ctl.sessions.Flash(c, "Post has been updated!", "success")
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/post/%d", post.ID))
}

func (ctl *PostController) renderUpdateForm(c *gin.Context, post *models.Post, form *forms.PostForm, errs forms.Errors) {
	render(c, ctl.sessions, http.StatusOK, "update_post.html", gin.H{
		"Title":  fmt.Sprintf("Blog | Update %q", capitalized(post.Title)),
		"Post":   post,
		"Form":   form,
		"Errors": errs,
	})
}

// DeletePost handles GET and POST /post/delete/:id: a confirmation view
// on GET, the deletion itself on POST.
func (ctl *PostController) DeletePost(c *gin.Context) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	post, done := ctl.ownedPost(c, user.ID)
	if done {
		return
	}

	if c.Request.Method == http.MethodGet {
		render(c, ctl.sessions, http.StatusOK, "delete_post.html", gin.H{
			"Title": "Blog | Confirm deletion",
			"Post":  post,
		})
		return
	}

	if err := ctl.posts.Delete(post.ID, user.ID); err != nil {
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}
	ctl.sessions.Flash(c, fmt.Sprintf("Post %q has been deleted!", capitalized(post.Title)), "success")
	c.Redirect(http.StatusFound, "/")
}

// UserPosts handles GET /posts/:username, public. Unknown usernames
// render the not-found page.
func (ctl *PostController) UserPosts(c *gin.Context) {
	username := c.Param("username")
	user, err := ctl.accounts.GetByUsername(username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			renderNotFound(c, ctl.sessions)
			return
		}
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}
	posts, err := ctl.posts.ListByAuthor(user.ID)
	if err != nil {
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}
	render(c, ctl.sessions, http.StatusOK, "user_posts.html", gin.H{
		"Title":    "Blog | Posts by " + user.Username,
		"Username": user.Username,
		"Posts":    posts,
	})
}

func (ctl *PostController) renderPostForm(c *gin.Context, name, title string, form *forms.PostForm, errs forms.Errors) {
	render(c, ctl.sessions, http.StatusOK, name, gin.H{
		"Title":  title,
		"Form":   form,
		"Errors": errs,
	})
}

// capitalized upper-cases the first rune and lower-cases the rest, the
// way titles are displayed in page headings and the deletion notice.
func capitalized(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}

// ownedPost resolves the :id parameter and enforces ownership. The bool
// result reports that a response was already written.
func (ctl *PostController) ownedPost(c *gin.Context, requesterID uint) (*models.Post, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, ctl.sessions)
		return nil, true
	}
	post, err := ctl.posts.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			renderNotFound(c, ctl.sessions)
			return nil, true
		}
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return nil, true
	}
	if post.UserID != requesterID {
		renderAccessDenied(c, ctl.sessions)
		return nil, true
	}
	return post, false
}
