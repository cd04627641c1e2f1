package forms

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goblog/models"
)

// validate runs the same validator gin's binding engine uses.
func validate(t *testing.T, form any) Errors {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	err := v.Struct(form)
	if err == nil {
		return Errors{}
	}
	return Translate(err)
}

func TestRegistrationFormValidation(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		errs := validate(t, RegistrationForm{
			Username:        "alice",
			Email:           "alice@example.com",
			Password:        "secret",
			ConfirmPassword: "secret",
		})
		assert.False(t, errs.Any())
	})

	t.Run("Empty form reports every field", func(t *testing.T) {
		errs := validate(t, RegistrationForm{})
		require.True(t, errs.Any())
		for _, field := range []string{"username", "email", "password", "confirm_password"} {
			assert.NotEmpty(t, errs.Field(field), "field %s should carry a message", field)
		}
		assert.Contains(t, errs.Field("username"), "This field is required.")
	})

	t.Run("Bad email", func(t *testing.T) {
		errs := validate(t, RegistrationForm{
			Username:        "alice",
			Email:           "not-an-email",
			Password:        "secret",
			ConfirmPassword: "secret",
		})
		assert.Contains(t, errs.Field("email"), "Please enter a valid email address.")
	})

	t.Run("Mismatched passwords", func(t *testing.T) {
		errs := validate(t, RegistrationForm{
			Username:        "alice",
			Email:           "alice@example.com",
			Password:        "secret",
			ConfirmPassword: "different",
		})
		assert.Contains(t, errs.Field("confirm_password"), "Passwords must match.")
	})

	t.Run("Username too short", func(t *testing.T) {
		errs := validate(t, RegistrationForm{
			Username:        "a",
			Email:           "alice@example.com",
			Password:        "secret",
			ConfirmPassword: "secret",
		})
		assert.Contains(t, errs.Field("username"), "Must be at least 2 characters long.")
	})
}

func TestPostFormValidation(t *testing.T) {
	t.Run("Title over the cap", func(t *testing.T) {
		errs := validate(t, PostForm{
			Title:   strings.Repeat("x", models.TitleMaxLen+1),
			Content: "body",
		})
		assert.Contains(t, errs.Field("title"), "Title cannot have more than 100 symbols!")
	})

	t.Run("Title at the cap passes", func(t *testing.T) {
		errs := validate(t, PostForm{
			Title:   strings.Repeat("x", models.TitleMaxLen),
			Content: "body",
		})
		assert.False(t, errs.Any())
	})
}

func TestTranslateNonValidatorError(t *testing.T) {
	errs := Translate(errors.New("unexpected EOF"))
	assert.Contains(t, errs.Field("form"), "Invalid form submission.")
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "confirm_password", snakeCase("ConfirmPassword"))
	assert.Equal(t, "title", snakeCase("Title"))
}
