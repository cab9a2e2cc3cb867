package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCronSpec_UsesConfiguredInterval(t *testing.T) {
	assert.Equal(t, "@every 30m", cronSpec(30))
}

func TestCronSpec_FallsBackOnNonPositiveInterval(t *testing.T) {
	assert.Equal(t, "@every 60m", cronSpec(0))
	assert.Equal(t, "@every 60m", cronSpec(-5))
}
