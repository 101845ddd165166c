package proxy

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectClient(t *testing.T) {
	c, err := NewHTTPClient("", 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.Timeout)
	assert.Nil(t, c.Transport)
}

func TestSocksClient(t *testing.T) {
	c, err := NewHTTPClient("127.0.0.1:8888", time.Minute)
	require.NoError(t, err)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, tr.DialContext)
}
