package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type entryForm struct {
	Title   string `validate:"required"`
	Content string `validate:"required"`
	Mood    string
	Hidden  bool
}

type habitForm struct {
	Name        string `validate:"required"`
	Description string
}

type moodForm struct {
	Mood  string `validate:"required"`
	Score string `validate:"required"`
	Notes string
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

// formHas reports whether key was submitted at all, like an unchecked checkbox
// being absent.
func formHas(r *http.Request, key string) bool {
	_, ok := r.PostForm[key]
	return ok
}
