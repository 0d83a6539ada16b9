package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_NormalizesURL(t *testing.T) {
	srv, err := NewServer("srv-1", "github", "https://github.com", false)
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/", srv.URLString())
	assert.Equal(t, "https://github.com", srv.BaseURLNoSlash())
	assert.Equal(t, "/", srv.BasePath())
}

func TestNewServer_RejectsInvalidURL(t *testing.T) {
	_, err := NewServer("srv-1", "broken", "not a url", false)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "url", vErr.Field)
}

func TestServer_UpdateURLKeepsID(t *testing.T) {
	srv, err := NewServer("srv-1", "chat", "https://old.example.com/sub", false)
	require.NoError(t, err)

	require.NoError(t, srv.UpdateURL("https://new.example.com/sub"))
	assert.Equal(t, ServerID("srv-1"), srv.ID)
	assert.Equal(t, "https://new.example.com/sub/", srv.URLString())

	require.Error(t, srv.UpdateURL("ftp://files.example.com"))
	assert.Equal(t, "https://new.example.com/sub/", srv.URLString(), "failed update leaves url untouched")
}

func TestServer_CloneIsDeep(t *testing.T) {
	srv, err := NewServer("srv-1", "chat", "https://chat.example.com", false)
	require.NoError(t, err)

	clone := srv.Clone()
	clone.URL.Path = "/changed/"
	assert.Equal(t, "/", srv.URL.Path)
}
