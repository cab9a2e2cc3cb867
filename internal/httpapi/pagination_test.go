package httpapi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination_Defaults(t *testing.T) {
	limit, offset := parsePagination(url.Values{})
	assert.Equal(t, defaultLimit, limit)
	assert.Equal(t, 0, offset)
}

func TestParsePagination_ClampsToMax(t *testing.T) {
	q := url.Values{"limit": {"10000"}}
	limit, _ := parsePagination(q)
	assert.Equal(t, maxLimit, limit)
}

func TestParsePagination_NegativeOffsetClampedToZero(t *testing.T) {
	q := url.Values{"offset": {"-5"}}
	_, offset := parsePagination(q)
	assert.Equal(t, 0, offset)
}

func TestParsePagination_InvalidLimitFallsBackToDefault(t *testing.T) {
	q := url.Values{"limit": {"not-a-number"}}
	limit, _ := parsePagination(q)
	assert.Equal(t, defaultLimit, limit)
}

func TestPageResponse(t *testing.T) {
	env := pageResponse([]int{1, 2, 3}, 3)
	assert.Equal(t, 3, env.Total)
}
