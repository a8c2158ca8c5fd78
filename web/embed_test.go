package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS(t *testing.T) {
	fsys := FS()

	for _, name := range []string{"index.html", "app.js", "style.css"} {
		_, err := fs.Stat(fsys, name)
		assert.NoError(t, err, name)
	}

	page, err := fs.ReadFile(fsys, "index.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), `src="app.js"`)
	assert.Contains(t, string(page), `id="historyDate"`)

	script, err := fs.ReadFile(fsys, "app.js")
	require.NoError(t, err)
	assert.Contains(t, string(script), "/api/picks/history/")
	assert.Contains(t, string(script), "getElementById('historyDate')")
}
