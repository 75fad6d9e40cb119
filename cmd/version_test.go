package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.2.0","published_at":"2026-01-02T03:04:05Z"}`))
	}))
	t.Cleanup(srv.Close)

	rel, err := latestRelease(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", rel.TagName)

	assert.Equal(t, "Update available: v1.1.0 -> v1.2.0\nPublished at: 2026-01-02T03:04:05Z", updateMessage("v1.1.0", rel))
	assert.Empty(t, updateMessage("v1.2.0", rel))
	assert.Empty(t, updateMessage("dev", rel))
}

func TestLatestRelease_MissingRepository(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := latestRelease(context.Background(), srv.Client(), srv.URL)
	assert.ErrorContains(t, err, "no release found")
}

func TestVersionCmd_ReleaseCheckFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	old := githubURL
	githubURL = srv.URL
	t.Cleanup(func() { githubURL = old })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// returning at all means the command did not exit the process
	versionCmd.SetContext(ctx)
	versionCmd.Run(versionCmd, nil)
}
