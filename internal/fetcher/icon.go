package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"ge-price-monitor/internal/logging"
)

// Icon is a downloaded item image.
type Icon struct {
	Title       string
	SourceURL   string
	ContentType string
	Data        []byte
}

// Ext guesses a file extension from the content type.
func (i Icon) Ext() string {
	switch {
	case strings.Contains(i.ContentType, "png"):
		return ".png"
	case strings.Contains(i.ContentType, "jpeg"), strings.Contains(i.ContentType, "jpg"):
		return ".jpg"
	case strings.Contains(i.ContentType, "gif"):
		return ".gif"
	}
	return ".png"
}

// IconOptions parameterise the wiki icon client.
type IconOptions struct {
	APIURL    string
	ThumbSize int
	Timeout   time.Duration
	UserAgent string
}

// WikiIcons resolves item thumbnails through the wiki pageimages API.
type WikiIcons struct {
	client    *resty.Client
	apiURL    string
	thumbSize int
	logger    zerolog.Logger
}

// NewWikiIcons constructs an icon client.
func NewWikiIcons(opts IconOptions, logger zerolog.Logger) *WikiIcons {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = "https://oldschool.runescape.wiki/api.php"
	}
	size := opts.ThumbSize
	if size <= 0 {
		size = 100
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	return &WikiIcons{
		client:    resty.New().SetTimeout(timeout).SetHeader("User-Agent", ua),
		apiURL:    apiURL,
		thumbSize: size,
		logger:    logging.Component(logger, "icon_fetcher"),
	}
}

// FetchIcon looks up the item's wiki page thumbnail and downloads it.
func (w *WikiIcons) FetchIcon(ctx context.Context, itemName string) (Icon, error) {
	title := PageTitle(itemName)
	if title == "" {
		return Icon{}, errors.New("item name required")
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":      "query",
			"format":      "json",
			"titles":      title,
			"prop":        "pageimages",
			"pithumbsize": strconv.Itoa(w.thumbSize),
		}).
		Get(w.apiURL)
	if err != nil {
		return Icon{}, fmt.Errorf("query wiki: %w", err)
	}
	if resp.StatusCode() != 200 {
		return Icon{}, fmt.Errorf("wiki api error (%d)", resp.StatusCode())
	}

	var res pageImagesResponse
	if err := json.Unmarshal(resp.Body(), &res); err != nil {
		return Icon{}, fmt.Errorf("decode wiki response: %w", err)
	}

	source := res.thumbnailSource()
	if source == "" {
		return Icon{}, ErrIconNotFound
	}

	img, err := w.client.R().SetContext(ctx).Get(source)
	if err != nil {
		return Icon{}, fmt.Errorf("download icon: %w", err)
	}
	if img.StatusCode() != 200 {
		return Icon{}, fmt.Errorf("icon download failed (%d)", img.StatusCode())
	}

	w.logger.Debug().Str("title", title).Str("source", source).Int("bytes", len(img.Body())).Msg("icon downloaded")
	return Icon{
		Title:       title,
		SourceURL:   source,
		ContentType: img.Header().Get("Content-Type"),
		Data:        img.Body(),
	}, nil
}

// PageTitle converts an item name into a wiki page title.
func PageTitle(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

type pageImagesResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			Thumbnail *struct {
				Source string `json:"source"`
			} `json:"thumbnail"`
		} `json:"pages"`
	} `json:"query"`
}

// thumbnailSource picks the first page (by id) carrying a thumbnail.
func (r pageImagesResponse) thumbnailSource() string {
	ids := make([]string, 0, len(r.Query.Pages))
	for id := range r.Query.Pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if thumb := r.Query.Pages[id].Thumbnail; thumb != nil && thumb.Source != "" {
			return thumb.Source
		}
	}
	return ""
}

var _ IconFetcher = (*WikiIcons)(nil)
