package httpapi

import (
	"net/http"
	"testing"

	"hoopsync/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMapError_NotFound(t *testing.T) {
	err := models.NewNotFoundError("player", "42")
	status, detail := mapError(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, detail, "player")
}

func TestMapError_Validation(t *testing.T) {
	err := models.NewValidationError("category", "unknown leaderboard category")
	status, _ := mapError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestMapError_IdentityConflict(t *testing.T) {
	err := models.NewIdentityConflictError("player", "winner", "101", "102")
	status, _ := mapError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestMapError_Default(t *testing.T) {
	status, detail := mapError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", detail)
}
