package url

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "http scheme unchanged", input: "http://example.com", want: "http://example.com"},
		{name: "https scheme unchanged", input: "https://example.com", want: "https://example.com"},
		{name: "domain gets https", input: "example.com", want: "https://example.com"},
		{name: "host with port gets https", input: "localhost:8065", want: "https://localhost:8065"},
		{name: "surrounding spaces trimmed", input: "  example.com/path ", want: "https://example.com/path"},
		{name: "plain words unchanged", input: "hello world", want: "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestParseServerURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "root gets trailing slash", input: "https://github.com", want: "https://github.com/"},
		{name: "subpath gets trailing slash", input: "https://s.com/sub", want: "https://s.com/sub/"},
		{name: "duplicate slashes collapsed", input: "https://s.com/sub///", want: "https://s.com/sub/"},
		{name: "query and fragment dropped", input: "https://s.com/?a=1#x", want: "https://s.com/"},
		{name: "host lower-cased", input: "https://Chat.Example.COM", want: "https://chat.example.com/"},
		{name: "bare host accepted", input: "chat.example.com", want: "https://chat.example.com/"},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "unsupported scheme rejected", input: "ftp://files.example.com", wantErr: true},
		{name: "no host rejected", input: "https://", wantErr: true},
		{name: "garbage rejected", input: "not a url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServerURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestHasPathPrefix(t *testing.T) {
	assert.True(t, HasPathPrefix("/anything", ""))
	assert.True(t, HasPathPrefix("/sub", "/sub/"))
	assert.True(t, HasPathPrefix("/sub/type1/x", "/sub/type1"))
	assert.False(t, HasPathPrefix("/subpathology", "/subpath"))
	assert.False(t, HasPathPrefix("/", "/sub"))
}

func TestIsInternalURL(t *testing.T) {
	base, err := ParseServerURL("https://s.com/sub")
	require.NoError(t, err)

	inside, _ := Parse("https://s.com/sub/team/channels/town-square")
	otherPath, _ := Parse("https://s.com/other")
	otherHost, _ := Parse("https://evil.com/sub/team")

	assert.True(t, IsInternalURL(inside, base))
	assert.False(t, IsInternalURL(otherPath, base))
	assert.False(t, IsInternalURL(otherHost, base))
}

func TestCleanPathName(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{name: "root base untouched", base: "/", path: "/team/channels/a", want: "/team/channels/a"},
		{name: "base stripped", base: "/sub/", path: "/sub/team/channels/a", want: "/team/channels/a"},
		{name: "base only becomes root", base: "/sub/", path: "/sub", want: "/"},
		{name: "foreign path untouched", base: "/sub/", path: "/team/channels/a", want: "/team/channels/a"},
		{name: "partial segment untouched", base: "/sub/", path: "/subway/x", want: "/subway/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanPathName(tt.base, tt.path))
		})
	}
}

func TestEquivalent(t *testing.T) {
	assert.True(t, Equivalent("https://s.com/sub/", "https://s.com/sub"))
	assert.False(t, Equivalent("https://s.com/sub/x", "https://s.com/sub"))
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "example.com", ExtractDomain("https://www.example.com/path"))
	assert.Equal(t, "", ExtractDomain("not-a-url"))
}
