package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withRelease(t *testing.T, status int, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	old := ReleasesURL
	ReleasesURL = srv.URL
	t.Cleanup(func() { ReleasesURL = old })
}

func TestLatestVersion(t *testing.T) {
	withRelease(t, http.StatusOK, `{"tag_name":"v1.3.0"}`)

	latest, newer := LatestVersion(context.Background(), "1.2.0")
	assert.Equal(t, "1.3.0", latest)
	assert.True(t, newer)

	_, newer = LatestVersion(context.Background(), "1.3.0")
	assert.False(t, newer)
}

func TestLatestVersion_ComparesNumerically(t *testing.T) {
	withRelease(t, http.StatusOK, `{"tag_name":"v1.9.0"}`)

	latest, newer := LatestVersion(context.Background(), "1.10.0")
	assert.Equal(t, "1.9.0", latest)
	assert.False(t, newer)
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"1.10.0", "1.9.0", true},
		{"1.9.0", "1.10.0", false},
		{"2.0.0", "1.99.99", true},
		{"1.2.0", "1.2.0-dirty", true},
		{"1.2.0", "1.2.0", false},
		{"nightly", "1.0.0", false},
		{"", "1.0.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.latest+"_vs_"+tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, isNewer(tt.latest, tt.current))
		})
	}
}

func TestLatestVersion_IgnoresDevAndFailures(t *testing.T) {
	withRelease(t, http.StatusInternalServerError, "")

	_, newer := LatestVersion(context.Background(), "0.0.0-dev")
	assert.False(t, newer)

	latest, newer := LatestVersion(context.Background(), "1.0.0")
	assert.Empty(t, latest)
	assert.False(t, newer)
}

func TestFormatVersion(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildTime
	t.Cleanup(func() { Version, Commit, BuildTime = oldV, oldC, oldB })

	Version, Commit, BuildTime = "1.2.3", "", ""
	assert.Equal(t, "1.2.3 (development)", FormatVersion())

	Commit = "abc1234"
	assert.Equal(t, "1.2.3 (commit: abc1234)", FormatVersion())

	BuildTime = "2025-10-23T10:20:30Z"
	assert.Equal(t, "1.2.3 (commit: abc1234, built at: 2025-10-23T10:20:30Z)", FormatVersion())
}
