package download_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"dolabella/internal/download"
	"dolabella/internal/files"
	"dolabella/internal/logger"
	"dolabella/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// the fake converter writes the base name of every input into the output file
const magickScript = `#!/bin/sh
for last; do :; done
for arg; do
	[ "$arg" = "$last" ] || basename "$arg" >> "$last"
done
`

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/manga", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"ok","data":[{"id":"d8f1d7da-8bb1-407b-8be3-10ac2894d3c6","attributes":{
			"title":{"en":"Foo: Bar"},"description":{},"year":2020,"status":"completed",
			"contentRating":"safe","availableTranslatedLanguages":["en"]}}]}`))
	})
	mux.HandleFunc("/manga/d8f1d7da-8bb1-407b-8be3-10ac2894d3c6/aggregate", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"ok","volumes":{"1":{"volume":"1","count":1,
			"chapters":{"1":{"chapter":"1","id":"chap-1","count":1}}}}}`))
	})
	mux.HandleFunc("/at-home/server/chap-1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"ok","baseUrl":"unused","chapter":{"hash":"h",
			"data":["a.png","b.png"],"dataSaver":["a.jpg","b.jpg"]}}`))
	})
	mux.HandleFunc("/data-saver/h/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image " + r.URL.Path))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools are not supported on windows")
	}

	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "magick"), []byte(magickScript), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	srv := catalogServer(t)
	library := t.TempDir()
	temp := t.TempDir()

	catalog := source.NewMangadex(source.Options{
		APIURL:      srv.URL,
		UploadsURL:  srv.URL,
		RetryDelay:  time.Millisecond,
		RetryJitter: time.Millisecond,
	})

	ctx := context.Background()

	results, err := catalog.Search(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, results, 1)

	agg, err := catalog.Aggregate(ctx, results[0].ID)
	require.NoError(t, err)

	d := download.New(catalog, files.NewMagick("magick", time.Minute, logger.Nop()), download.Options{
		LibraryRoot: library,
		TempRoot:    temp,
	}, logger.Nop())

	report, err := d.Run(ctx, results[0], agg.Select([]string{"1"}))
	require.NoError(t, err)
	require.NoError(t, report.Err())

	want := filepath.Join(library, "Foo_ Bar", "1", "1.pdf")

	var outputs []string
	require.NoError(t, filepath.WalkDir(library, func(p string, entry os.DirEntry, err error) error {
		if err == nil && !entry.IsDir() {
			outputs = append(outputs, p)
		}
		return err
	}))
	assert.Equal(t, []string{want}, outputs)

	data, err := os.ReadFile(want)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1-1-"))
	assert.True(t, strings.HasSuffix(lines[0], ".jpg"))
	assert.True(t, strings.HasPrefix(lines[1], "1-2-"))

	entries, err := os.ReadDir(temp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
