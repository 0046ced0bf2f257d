package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Abyssal_whip", PageTitle(" Abyssal whip "))
	assert.Equal(t, "", PageTitle("  "))
}

func TestFetchIcon(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api.php":
			assert.Equal(t, "Abyssal_whip", r.URL.Query().Get("titles"))
			assert.Equal(t, "pageimages", r.URL.Query().Get("prop"))
			assert.Equal(t, "64", r.URL.Query().Get("pithumbsize"))
			fmt.Fprintf(w, `{"query":{"pages":{"1234":{"title":"Abyssal whip","thumbnail":{"source":"%s/images/whip.png"}}}}}`, srvURL)
		case "/images/whip.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	icons := NewWikiIcons(IconOptions{APIURL: srv.URL + "/api.php", ThumbSize: 64}, noopLogger())
	icon, err := icons.FetchIcon(context.Background(), "Abyssal whip")
	require.NoError(t, err)
	assert.Equal(t, png, icon.Data)
	assert.Equal(t, ".png", icon.Ext())
	assert.Equal(t, srv.URL+"/images/whip.png", icon.SourceURL)
}

func TestFetchIconMissingPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"pages":{"-1":{"title":"Nope","missing":""}}}}`))
	}))
	defer srv.Close()

	icons := NewWikiIcons(IconOptions{APIURL: srv.URL}, noopLogger())
	_, err := icons.FetchIcon(context.Background(), "Nope")
	assert.True(t, errors.Is(err, ErrIconNotFound))
}

func TestFetchIconEmptyName(t *testing.T) {
	icons := NewWikiIcons(IconOptions{}, noopLogger())
	_, err := icons.FetchIcon(context.Background(), "")
	assert.Error(t, err)
}
