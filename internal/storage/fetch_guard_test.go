package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-api/pkg/apierror"
)

func TestSourceReaderRefusesInternalHosts(t *testing.T) {
	t.Parallel()

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(tinyPNG)
	}))
	defer server.Close()

	reader := NewSourceReader(NewFetchClient(time.Second), 1024, time.Second)

	_, err := reader.Read(context.Background(), server.URL+"/a.png")
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	assert.Zero(t, hits)

	_, err = reader.Read(context.Background(), "http://169.254.169.254/latest/meta-data/")
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestIsInternalAddr(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"127.0.0.1":       true,
		"10.1.2.3":        true,
		"172.16.0.9":      true,
		"192.168.1.1":     true,
		"169.254.169.254": true,
		"100.64.0.1":      true,
		"0.0.0.0":         true,
		"::1":             true,
		"fe80::1":         true,
		"fd00::1":         true,
		"::ffff:10.0.0.1": true,
		"93.184.216.34":   false,
		"2606:4700::1111": false,
	}

	for raw, want := range tests {
		assert.Equal(t, want, isInternalAddr(netip.MustParseAddr(raw)), raw)
	}
}

func TestCheckFetchRedirect(t *testing.T) {
	t.Parallel()

	redirect := func(target string) *http.Request {
		req, err := http.NewRequest(http.MethodGet, target, http.NoBody)
		require.NoError(t, err)
		return req
	}
	first := redirect("https://img.example.com/a.png")

	assert.NoError(t, checkFetchRedirect(redirect("https://cdn.example.com/a.png"), []*http.Request{first}))
	assert.ErrorIs(t, checkFetchRedirect(redirect("http://10.0.0.5/a.png"), []*http.Request{first}), errBlockedDestination)
	assert.ErrorIs(t, checkFetchRedirect(redirect("http://[::1]/a.png"), []*http.Request{first}), errBlockedDestination)
	assert.Error(t, checkFetchRedirect(redirect("https://cdn.example.com/a.png"), []*http.Request{first, first, first}))
}
