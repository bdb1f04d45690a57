package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bcc.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, `{
		"pointerModel": "word",
		"wordBits": 16,
		"libs": ["m"],
		"includeDirs": ["/usr/local/include"],
		"ccMinVersion": "9.0.0"
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "word", cfg.PointerModel)
	assert.Equal(t, 16, cfg.WordBits)
	assert.Equal(t, []string{"m"}, cfg.Libs)
	assert.Equal(t, "9.0.0", cfg.CCMinVersion)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeTemp(t, `{"pointrModel": "word"}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema violation")
}

func TestLoadRejectsBadWordBits(t *testing.T) {
	path := writeTemp(t, `{"wordBits": 64}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeTemp(t, `{not json`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed JSON")
}

func TestLoadRejectsBadCCMinVersion(t *testing.T) {
	path := writeTemp(t, `{"ccMinVersion": "not-a-version"}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestMeetsMinVersion(t *testing.T) {
	assert.True(t, MeetsMinVersion("11.2.0", "9.0.0"))
	assert.True(t, MeetsMinVersion("v11.2.0", "9.0.0"))
	assert.False(t, MeetsMinVersion("8.1.0", "9.0.0"))
}

func TestApplyDoesNotOverrideExplicitFlags(t *testing.T) {
	fileCfg := &Config{PointerModel: "word", WordBits: 32, Libs: []string{"m"}}
	dst := &Config{PointerModel: "byte"}
	fileCfg.Apply(dst, Overrides{PointerModelSet: true})
	assert.Equal(t, "byte", dst.PointerModel, "CLI-set pointer model must win over file")
	assert.Equal(t, 32, dst.WordBits, "unset field takes the file's value")
	assert.Equal(t, []string{"m"}, dst.Libs)
}
