package qbittorrent

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiServer answers the login exchange and delegates everything else to
// handler.
func apiServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/auth/login" {
			w.Header().Set("Set-Cookie", "SID=abc123; path=/")
			w.Write([]byte("Ok."))
			return
		}
		handler(w, r)
	}))
}

func TestDoRequestInjectsCookie(t *testing.T) {
	server := apiServer(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SID=abc123", r.Header.Get("Cookie"))
		w.Write([]byte("v5.0.0"))
	})
	defer server.Close()

	client := testClient(server.URL)

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v5.0.0", version)
}

func TestDoRequestClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrAuthRequired},
		{name: "forbidden", status: http.StatusForbidden, want: ErrAccessDenied},
		{name: "server error", status: http.StatusInternalServerError, want: ErrServerError},
		{name: "bad gateway", status: http.StatusBadGateway, want: ErrServerError},
		{name: "other failure", status: http.StatusTeapot, want: ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := apiServer(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "secret server detail", tt.status)
			})
			defer server.Close()

			client := testClient(server.URL)

			_, err := client.Version(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			// The raw body is reported internally, never echoed.
			assert.NotContains(t, err.Error(), "secret server detail")
		})
	}
}

func TestGetPreferences(t *testing.T) {
	server := apiServer(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/app/preferences", r.URL.Path)
		w.Write([]byte(`{"web_ui_port":8080,"categories":{"tv":{"name":"tv","savePath":"/downloads/tv"}}}`))
	})
	defer server.Close()

	client := testClient(server.URL)

	prefs, err := client.GetPreferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8080, prefs.WebUIPort)
	assert.Equal(t, "/downloads/tv", prefs.Categories["tv"].SavePath)
}

func TestAddTorrentMagnet(t *testing.T) {
	const magnet = "magnet:?xt=urn:btih:c9e15763f722f23e98a29decdfae341b98d53056"

	server := apiServer(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/torrents/add", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, magnet, r.FormValue("urls"))
		assert.Equal(t, "tv", r.FormValue("category"))
		assert.Equal(t, "/downloads", r.FormValue("savepath"))
		assert.Equal(t, "true", r.FormValue("paused"))
		assert.Equal(t, "true", r.FormValue("skip_checking"))
		w.Write([]byte("Ok."))
	})
	defer server.Close()

	client := testClient(server.URL)

	err := client.AddTorrent(context.Background(), AddTorrentRequest{
		MagnetURI:     magnet,
		Category:      "tv",
		SavePath:      "/downloads",
		Paused:        true,
		SkipHashCheck: true,
	})
	require.NoError(t, err)
}

func TestAddTorrentFile(t *testing.T) {
	payload := []byte("d8:announce0:e")

	server := apiServer(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("torrents")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "download.torrent", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, payload, data)
		w.Write([]byte("Ok."))
	})
	defer server.Close()

	client := testClient(server.URL)

	err := client.AddTorrent(context.Background(), AddTorrentRequest{FileData: payload})
	require.NoError(t, err)
}

func TestAddTorrentRejected(t *testing.T) {
	server := apiServer(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Fails. Torrent is already in the download list."))
	})
	defer server.Close()

	client := testClient(server.URL)

	err := client.AddTorrent(context.Background(), AddTorrentRequest{MagnetURI: "magnet:?xt=urn:btih:c9e15763f722f23e98a29decdfae341b98d53056"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubmissionFailed))
	// Submission rejections carry the server text, it is operationally useful.
	assert.Contains(t, err.Error(), "already in the download list")
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServerConfig
		want    string
		wantErr bool
	}{
		{
			name: "plain",
			cfg:  ServerConfig{URL: "http://localhost:8080"},
			want: "http://localhost:8080",
		},
		{
			name: "trailing slash stripped",
			cfg:  ServerConfig{URL: "http://localhost:8080/"},
			want: "http://localhost:8080",
		},
		{
			name: "https forced",
			cfg:  ServerConfig{URL: "http://nas.local:8080", UseHTTPS: true},
			want: "https://nas.local:8080",
		},
		{
			name: "custom port",
			cfg:  ServerConfig{URL: "http://nas.local:8080", CustomPort: 9090},
			want: "http://nas.local:9090",
		},
		{
			name: "custom port without original port",
			cfg:  ServerConfig{URL: "https://nas.local", CustomPort: 8443},
			want: "https://nas.local:8443",
		},
		{
			name:    "bad scheme",
			cfg:     ServerConfig{URL: "ftp://nas.local"},
			wantErr: true,
		},
		{
			name:    "empty",
			cfg:     ServerConfig{URL: ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveBaseURL(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientOptions(t *testing.T) {
	t.Run("with http client", func(t *testing.T) {
		custom := &http.Client{}
		client := NewClient(StaticSettings(ServerConfig{}), zerolog.Nop(), WithHTTPClient(custom))
		assert.Equal(t, custom, client.httpClient)
	})

	t.Run("with session ttl", func(t *testing.T) {
		client := NewClient(StaticSettings(ServerConfig{}), zerolog.Nop(), WithSessionTTL(time.Minute))
		assert.Equal(t, time.Minute, client.session.ttl)
	})
}
