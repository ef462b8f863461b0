package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.NoError(t, validEmail("ada@example.com"))

	for _, in := range []string{"", "ada", "ada@", "Ada Lovelace <ada@example.com>"} {
		assert.Error(t, validEmail(in), in)
	}
}
