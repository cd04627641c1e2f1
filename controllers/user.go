package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"goblog/auth"
	"goblog/forms"
	"goblog/media"
	"goblog/services"
)

// UserController serves registration, login/logout, the account page
// and password changes.
type UserController struct {
	accounts services.AccountService
	sessions *auth.SessionManager
	pictures *media.PictureStore
	logger   *zap.Logger
}

func NewUserController(accounts services.AccountService, sessions *auth.SessionManager, pictures *media.PictureStore, logger *zap.Logger) *UserController {
	return &UserController{
		accounts: accounts,
		sessions: sessions,
		pictures: pictures,
		logger:   logger,
	}
}

// Register handles GET and POST /register. Authenticated users are sent
// back to the home page.
func (ctl *UserController) Register(c *gin.Context) {
	if _, ok := auth.UserFromContext(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	form := forms.RegistrationForm{}
	if c.Request.Method == http.MethodGet {
		ctl.renderRegister(c, &form, forms.Errors{})
		return
	}

	if err := c.ShouldBind(&form); err != nil {
		ctl.renderRegister(c, &form, forms.Translate(err))
		return
	}

	_, err := ctl.accounts.Register(&services.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		errs := forms.Errors{}
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			errs.Add("username", "User with such a username already exists!")
		case errors.Is(err, services.ErrEmailTaken):
			errs.Add("email", "User with such an email already exists!")
		default:
			renderInternalError(c, ctl.sessions, ctl.logger, err)
			return
		}
		ctl.renderRegister(c, &form, errs)
		return
	}

	ctl.sessions.Flash(c, fmt.Sprintf("Account created for %s!", form.Username), "success")
	c.Redirect(http.StatusFound, "/login")
}

func (ctl *UserController) renderRegister(c *gin.Context, form *forms.RegistrationForm, errs forms.Errors) {
	render(c, ctl.sessions, http.StatusOK, "register.html", gin.H{
		"Title":  "Blog | Register",
		"Form":   form,
		"Errors": errs,
	})
}

// Login handles GET and POST /login, honoring the deferred next target.
func (ctl *UserController) Login(c *gin.Context) {
	if _, ok := auth.UserFromContext(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	form := forms.LoginForm{}
	if c.Request.Method == http.MethodGet {
		ctl.renderLogin(c, &form, forms.Errors{})
		return
	}

	if err := c.ShouldBind(&form); err != nil {
		ctl.renderLogin(c, &form, forms.Translate(err))
		return
	}

	user, err := ctl.accounts.Authenticate(form.Email, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserMissing):
			ctl.sessions.Flash(c, "Such user does not exist!", "danger")
		case errors.Is(err, services.ErrWrongPassword):
			ctl.sessions.Flash(c, "Invalid username or password", "danger")
		default:
			renderInternalError(c, ctl.sessions, ctl.logger, err)
			return
		}
		ctl.renderLogin(c, &form, forms.Errors{})
		return
	}

	if err := ctl.sessions.Login(c, user, form.Remember); err != nil {
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}

	if next := c.Query("next"); isLocalPath(next) {
		c.Redirect(http.StatusFound, next)
		return
	}
	c.Redirect(http.StatusFound, "/account")
}

func (ctl *UserController) renderLogin(c *gin.Context, form *forms.LoginForm, errs forms.Errors) {
	render(c, ctl.sessions, http.StatusOK, "login.html", gin.H{
		"Title":  "Blog | Login",
		"Form":   form,
		"Errors": errs,
	})
}

// isLocalPath accepts only same-site redirect targets.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//")
}

// Logout handles GET /logout.
func (ctl *UserController) Logout(c *gin.Context) {
	ctl.sessions.Logout(c)
	c.HTML(http.StatusOK, "logout.html", gin.H{
		"Title": "Blog | Log out",
	})
}

// Account handles GET and POST /account: profile edit including the
// optional picture replacement.
func (ctl *UserController) Account(c *gin.Context) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if c.Request.Method == http.MethodGet {
		form := forms.UpdateAccountForm{Username: user.Username, Email: user.Email}
		ctl.renderAccount(c, &form, forms.Errors{})
		return
	}

	form := forms.UpdateAccountForm{}
	if err := c.ShouldBind(&form); err != nil {
		ctl.renderAccount(c, &form, forms.Translate(err))
		return
	}

	// Errors here (missing file, non-multipart form) all mean no new picture.
	upload, _ := c.FormFile("picture")

	// Nothing changed: re-render without writing.
	if form.Username == user.Username && form.Email == user.Email && upload == nil {
		ctl.renderAccount(c, &form, forms.Errors{})
		return
	}

	imageFile, err := ctl.pictures.Save(upload, user.ImageFile)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedType) {
			errs := forms.Errors{}
			errs.Add("picture", "Only jpg, jpeg and png files are allowed!")
			ctl.renderAccount(c, &form, errs)
			return
		}
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}

	_, err = ctl.accounts.UpdateAccount(user.ID, &services.UpdateAccountInput{
		Username:  form.Username,
		Email:     form.Email,
		ImageFile: imageFile,
	})
	if err != nil {
		errs := forms.Errors{}
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			errs.Add("username", "User with such a username already exists!")
		case errors.Is(err, services.ErrEmailTaken):
			errs.Add("email", "User with such an email already exists!")
		default:
			renderInternalError(c, ctl.sessions, ctl.logger, err)
			return
		}
		ctl.renderAccount(c, &form, errs)
		return
	}

	ctl.sessions.Flash(c, "Your account has been updated!", "success")
	c.Redirect(http.StatusFound, "/account")
}

func (ctl *UserController) renderAccount(c *gin.Context, form *forms.UpdateAccountForm, errs forms.Errors) {
	user, _ := auth.UserFromContext(c)
	render(c, ctl.sessions, http.StatusOK, "account.html", gin.H{
		"Title":     "Blog | Your account",
		"Form":      form,
		"Errors":    errs,
		"ImagePath": "/static/pictures/" + user.ImageFile,
	})
}

// ChangePassword handles GET and POST /change-password.
func (ctl *UserController) ChangePassword(c *gin.Context) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	form := forms.ChangePasswordForm{}
	if c.Request.Method == http.MethodGet {
		ctl.renderChangePassword(c, forms.Errors{})
		return
	}

	if err := c.ShouldBind(&form); err != nil {
		ctl.renderChangePassword(c, forms.Translate(err))
		return
	}

	if err := ctl.accounts.ChangePassword(user.ID, form.OldPassword, form.NewPassword); err != nil {
		if errors.Is(err, services.ErrWrongOldPassword) {
			errs := forms.Errors{}
			errs.Add("old_password", "Please, provide a correct password!")
			ctl.renderChangePassword(c, errs)
			return
		}
		renderInternalError(c, ctl.sessions, ctl.logger, err)
		return
	}

	ctl.sessions.Flash(c, "Your password has been changed!", "success")
	c.Redirect(http.StatusFound, "/account")
}

func (ctl *UserController) renderChangePassword(c *gin.Context, errs forms.Errors) {
	render(c, ctl.sessions, http.StatusOK, "change_password.html", gin.H{
		"Title":  "Blog | Change password",
		"Errors": errs,
	})
}
