package browser

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageState_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	state := StorageState{
		Cookies: []Cookie{
			{Name: "JSESSIONID", Value: "abc", Domain: "srienlinea.sri.gob.ec", Path: "/", Expires: -1, HTTPOnly: true, Secure: true, SameSite: "Lax"},
		},
	}
	state.SetOrigin("https://srienlinea.sri.gob.ec", map[string]string{"b": "2", "a": "1"})

	require.NoError(t, state.Save(path))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
	assert.Equal(t, []NameValue{{"a", "1"}, {"b", "2"}}, loaded.Origins[0].LocalStorage)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStorageState_PlaywrightFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	content := `{
  "cookies": [{"name": "c", "value": "v", "domain": ".sri.gob.ec", "path": "/", "expires": 1767225600, "httpOnly": false, "secure": true, "sameSite": "None"}],
  "origins": [{"origin": "https://srienlinea.sri.gob.ec", "localStorage": [{"name": "token", "value": "xyz"}]}]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	state, err := LoadState(path)
	require.NoError(t, err)
	require.Len(t, state.Cookies, 1)
	assert.Equal(t, ".sri.gob.ec", state.Cookies[0].Domain)

	params := state.CookieParams()
	require.Len(t, params, 1)
	assert.Equal(t, proto.TimeSinceEpoch(1767225600), params[0].Expires)
	assert.Equal(t, proto.NetworkCookieSameSiteNone, params[0].SameSite)
	assert.True(t, params[0].Secure)
}

func TestStorageState_SessionCookiesHaveNoExpiry(t *testing.T) {
	state := StorageState{Cookies: []Cookie{{Name: "s", Value: "1", Expires: -1}}}
	params := state.CookieParams()
	require.Len(t, params, 1)
	assert.Zero(t, params[0].Expires)
}

func TestLoadState_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadState(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0600))
	_, err = LoadState(bad)
	assert.Error(t, err)
}

func TestStorageState_SetOrigin(t *testing.T) {
	var state StorageState
	state.SetOrigin("", map[string]string{"a": "1"})
	state.SetOrigin("null", map[string]string{"a": "1"})
	assert.Empty(t, state.Origins, "opaque origins are ignored")

	state.SetOrigin("https://a", map[string]string{"k": "1"})
	state.SetOrigin("https://a", map[string]string{"k": "2"})
	require.Len(t, state.Origins, 1)
	assert.Equal(t, "2", state.Origins[0].LocalStorage[0].Value)
}

func TestStorageState_LocalStorageScript(t *testing.T) {
	var empty StorageState
	script, err := empty.LocalStorageScript()
	require.NoError(t, err)
	assert.Empty(t, script)

	var state StorageState
	state.SetOrigin("https://srienlinea.sri.gob.ec", map[string]string{"token": `x"y`})
	script, err = state.LocalStorageScript()
	require.NoError(t, err)
	assert.Contains(t, script, `"https://srienlinea.sri.gob.ec":{"token":"x\"y"}`)
	assert.True(t, strings.Contains(script, "localStorage.setItem"))
}

func TestCookiesFromProto(t *testing.T) {
	cookies := cookiesFromProto([]*proto.NetworkCookie{
		{Name: "a", Value: "1", Domain: "d", Path: "/", Expires: 10, Session: false, SameSite: proto.NetworkCookieSameSiteStrict},
		{Name: "b", Value: "2", Expires: 99, Session: true},
	})
	require.Len(t, cookies, 2)
	assert.Equal(t, float64(10), cookies[0].Expires)
	assert.Equal(t, "Strict", cookies[0].SameSite)
	assert.Equal(t, float64(-1), cookies[1].Expires)
}

func TestContainsRegex(t *testing.T) {
	assert.Equal(t, `/Iniciar sesión/i`, containsRegex("Iniciar sesión"))
	assert.Equal(t, `/a\.b\/c/i`, containsRegex("a.b/c"))
}

func TestExactLabel(t *testing.T) {
	tests := []struct {
		label string
		text  string
		want  bool
	}{
		{"1", "1", true},
		{"1", "  1 ", true},
		{"1", "10", false},
		{"1", "11", false},
		{" 2025 ", "2025", true},
		{"Factura", "Factura", true},
		{"Factura", "Facturas", false},
		{"Nota (crédito)", "Nota (crédito)", true},
		{"a.b", "axb", false},
	}

	for _, tt := range tests {
		t.Run(tt.label+"/"+tt.text, func(t *testing.T) {
			re := regexp.MustCompile(exactLabel(tt.label))
			assert.Equal(t, tt.want, re.MatchString(tt.text))
		})
	}
}
