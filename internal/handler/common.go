package handler

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	errUnknownFamily = errors.New("unknown family")
	errNotUndoable   = errors.New("history entry cannot be rolled back")
	errBadSnapshot   = errors.New("history entry has no usable snapshot")
)

// mutationError maps a catalog write failure to an HTTP status and a
// client-safe message.
func mutationError(err error) (int, string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "plant not found"
	case errors.Is(err, errUnknownFamily):
		return http.StatusBadRequest, "family does not exist"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "scientific name already exists"
	default:
		return http.StatusInternalServerError, "failed to apply change"
	}
}
