package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	data := `[
		{"name":"session","value":"abc","domain":".visasponsor.jobs","path":"","expires":1893456000,"httpOnly":true,"secure":true,"sameSite":"Lax"},
		{"name":"consent","value":"yes","domain":"europeanjobdays.eu","path":"/en","sameSite":"unspecified"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cookies, err := LoadCookies(path)

	require.NoError(t, err)
	require.Len(t, cookies, 2)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "/", *cookies[0].Path)
	assert.Equal(t, 1893456000.0, *cookies[0].Expires)
	assert.True(t, *cookies[0].HttpOnly)
	assert.Equal(t, playwright.SameSiteAttributeLax, cookies[0].SameSite)

	assert.Equal(t, "/en", *cookies[1].Path)
	assert.Nil(t, cookies[1].Expires)
	assert.Nil(t, cookies[1].SameSite)
}

func TestLoadCookies_MissingOrEmptyPath(t *testing.T) {
	cookies, err := LoadCookies("")
	assert.NoError(t, err)
	assert.Nil(t, cookies)

	cookies, err = LoadCookies(filepath.Join(t.TempDir(), "nope.json"))
	assert.NoError(t, err)
	assert.Nil(t, cookies)
}

func TestLoadCookies_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadCookies(path)
	assert.Error(t, err)
}
