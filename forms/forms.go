// Package forms declares the HTML form payloads and turns validator
// failures into per-field messages that templates render inline.
package forms

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"goblog/models"
)

type RegistrationForm struct {
	Username        string `form:"username" binding:"required,min=2,max=20"`
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Remember bool   `form:"remember"`
}

// UpdateAccountForm carries the text fields only; the optional picture
// travels as a multipart file and is handled by the media package.
type UpdateAccountForm struct {
	Username string `form:"username" binding:"required,min=2,max=20"`
	Email    string `form:"email" binding:"required,email"`
}

type PostForm struct {
	Title   string `form:"title" binding:"required,max=100"`
	Content string `form:"content" binding:"required"`
}

type ChangePasswordForm struct {
	OldPassword string `form:"old_password" binding:"required"`
	NewPassword string `form:"new_password" binding:"required"`
}

// Errors maps a form field name to the messages shown next to it.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// Field returns the messages for one field; used by templates.
func (e Errors) Field(name string) []string {
	return e[name]
}

// Translate converts a gin binding error into field-level messages.
// Non-validator errors (malformed bodies) collapse into a form-wide message.
func Translate(err error) Errors {
	out := Errors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("form", "Invalid form submission.")
		return out
	}
	for _, fe := range verrs {
		field := snakeCase(fe.Field())
		out.Add(field, messageFor(field, fe))
	}
	return out
}

func messageFor(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Please enter a valid email address."
	case "eqfield":
		return "Passwords must match."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", fe.Param())
	case "max":
		if field == "title" {
			return fmt.Sprintf("Title cannot have more than %d symbols!", models.TitleMaxLen)
		}
		return fmt.Sprintf("Cannot be longer than %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}

// snakeCase maps a struct field name to its form name ("ConfirmPassword"
// becomes "confirm_password").
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
