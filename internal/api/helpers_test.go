package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripPort(t *testing.T) {
	assert.Equal(t, "192.0.2.10", stripPort("192.0.2.10:54321"))
	assert.Equal(t, "[::1]", stripPort("[::1]:8080"))
	assert.Equal(t, "192.0.2.10", stripPort("192.0.2.10"))
}
