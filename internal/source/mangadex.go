package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"sync"
	"time"

	"dolabella/internal/domain"
	"dolabella/internal/sharedhttp"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/ratelimit"
)

const (
	DefaultAPIURL     = "https://api.mangadex.org"
	DefaultUploadsURL = "https://uploads.mangadex.org"

	QualityData      = "data"
	QualityDataSaver = "data-saver"
)

type Options struct {
	APIURL     string
	UploadsURL string // empty uses the base url handed out by the at-home server
	Language   string
	Quality    string

	SearchLimit       int
	RequestsPerSecond int
	Timeout           time.Duration

	RetryAttempts uint
	RetryDelay    time.Duration
	RetryJitter   time.Duration
}

func (o *Options) defaults() {
	if o.APIURL == "" {
		o.APIURL = DefaultAPIURL
	}
	if o.Language == "" {
		o.Language = "en"
	}
	if o.Quality != QualityData {
		o.Quality = QualityDataSaver
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = 10
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	if o.RetryAttempts == 0 {
		o.RetryAttempts = 1
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 3 * time.Second
	}
	if o.RetryJitter <= 0 {
		o.RetryJitter = time.Second
	}
}

// Mangadex is the catalog client for api.mangadex.org.
type Mangadex struct {
	opts    Options
	client  *http.Client
	limiter ratelimit.Limiter

	mu         sync.Mutex
	aggregates map[string]domain.Aggregate
}

func NewMangadex(opts Options) *Mangadex {
	opts.defaults()

	limiter := ratelimit.NewUnlimited()
	if opts.RequestsPerSecond > 0 {
		limiter = ratelimit.New(opts.RequestsPerSecond)
	}

	return &Mangadex{
		opts:       opts,
		client:     sharedhttp.NewClient(opts.Timeout),
		limiter:    limiter,
		aggregates: make(map[string]domain.Aggregate),
	}
}

func (m *Mangadex) String() string {
	return "MangaDex"
}

// ValidateID checks that id looks like a MangaDex resource id.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid mangadex id %q: %w", id, err)
	}
	return nil
}

type mangadexResult struct {
	Result string `json:"result"`
}

type mangadexMangaData struct {
	ID         string `json:"id"`
	Attributes struct {
		Title                        domain.LocalizedString `json:"title"`
		Description                  domain.LocalizedString `json:"description"`
		Year                         *int                   `json:"year"`
		Status                       string                 `json:"status"`
		ContentRating                string                 `json:"contentRating"`
		AvailableTranslatedLanguages []string               `json:"availableTranslatedLanguages"`
	} `json:"attributes"`
}

type mangadexSearch struct {
	Data  []mangadexMangaData `json:"data"`
	Total int                 `json:"total"`
}

type mangadexManga struct {
	Data mangadexMangaData `json:"data"`
}

type mangadexAggregate struct {
	Volumes json.RawMessage `json:"volumes"`
}

type mangadexAggregateVolume struct {
	Volume   string          `json:"volume"`
	Chapters json.RawMessage `json:"chapters"`
}

type mangadexAggregateChapter struct {
	Chapter string `json:"chapter"`
	ID      string `json:"id"`
}

type mangadexAtHome struct {
	BaseURL string `json:"baseUrl"`
	Chapter struct {
		Hash      string   `json:"hash"`
		Data      []string `json:"data"`
		DataSaver []string `json:"dataSaver"`
	} `json:"chapter"`
}

// Search returns the titles matching query in the order the api returned them.
func (m *Mangadex) Search(ctx context.Context, query string) ([]domain.Manga, error) {
	params := url.Values{
		"title": []string{query},
		"limit": []string{strconv.Itoa(m.opts.SearchLimit)},
	}

	var searchResp mangadexSearch
	if err := m.get(ctx, "manga", params, &searchResp); err != nil {
		return nil, err
	}

	mangas := make([]domain.Manga, 0, len(searchResp.Data))
	for _, data := range searchResp.Data {
		manga, err := m.toManga(data)
		if err != nil {
			return nil, err
		}
		mangas = append(mangas, manga)
	}

	return mangas, nil
}

func (m *Mangadex) GetManga(ctx context.Context, mangaID string) (domain.Manga, error) {
	if err := ValidateID(mangaID); err != nil {
		return domain.Manga{}, err
	}

	var mangaResp mangadexManga
	if err := m.get(ctx, path.Join("manga", mangaID), nil, &mangaResp); err != nil {
		return domain.Manga{}, err
	}

	return m.toManga(mangaResp.Data)
}

// Aggregate returns the volume/chapter layout of a title for the configured
// language. Results are kept for the lifetime of the client.
func (m *Mangadex) Aggregate(ctx context.Context, mangaID string) (domain.Aggregate, error) {
	m.mu.Lock()
	cached, ok := m.aggregates[mangaID]
	m.mu.Unlock()
	if ok {
		return cached, nil
	}

	params := url.Values{
		"translatedLanguage[]": []string{m.opts.Language},
	}

	var aggResp mangadexAggregate
	if err := m.get(ctx, path.Join("manga", mangaID, "aggregate"), params, &aggResp); err != nil {
		return nil, err
	}

	volumes, err := decodeKeyed[mangadexAggregateVolume](aggResp.Volumes)
	if err != nil {
		return nil, errors.Wrapf(err, "decode volumes for %s", mangaID)
	}

	agg := make(domain.Aggregate, len(volumes))
	for _, volume := range volumes {
		chapters, err := decodeKeyed[mangadexAggregateChapter](volume.Chapters)
		if err != nil {
			return nil, errors.Wrapf(err, "decode chapters of volume %s", volume.Volume)
		}

		label := volume.Volume
		if label == "" {
			label = domain.NoVolume
		}

		if agg[label] == nil {
			agg[label] = make(map[string]string, len(chapters))
		}
		for _, chapter := range chapters {
			agg[label][chapter.Chapter] = chapter.ID
		}
	}

	m.mu.Lock()
	m.aggregates[mangaID] = agg
	m.mu.Unlock()

	return agg, nil
}

// ListPages resolves the page filenames of a chapter and the token needed to fetch them.
func (m *Mangadex) ListPages(ctx context.Context, chapterID string) (domain.PageList, error) {
	var atHome mangadexAtHome
	if err := m.get(ctx, path.Join("at-home", "server", chapterID), nil, &atHome); err != nil {
		return domain.PageList{}, err
	}

	files := atHome.Chapter.DataSaver
	if m.opts.Quality == QualityData {
		files = atHome.Chapter.Data
	}

	if len(files) == 0 {
		return domain.PageList{}, fmt.Errorf("failed to get pages for chapter id: %s", chapterID)
	}

	return domain.PageList{
		BaseURL: atHome.BaseURL,
		Hash:    atHome.Chapter.Hash,
		Files:   files,
	}, nil
}

// FetchPage downloads the raw bytes of one page.
func (m *Mangadex) FetchPage(ctx context.Context, pages domain.PageList, filename string) ([]byte, error) {
	base := m.opts.UploadsURL
	if base == "" {
		base = pages.BaseURL
	}

	pageURL, err := url.JoinPath(base, m.opts.Quality, pages.Hash, filename)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", sharedhttp.UserAgent)

	var data []byte

	retryErr := retry.Do(func() error {
		m.limiter.Take()

		body, err := sharedhttp.ExecRequest(m.client, req)
		if err != nil {
			return err
		}

		data = body
		return nil
	}, m.retryOptions(ctx)...)
	if retryErr != nil {
		return nil, errors.Wrapf(retryErr, "failed to get page %s", filename)
	}

	return data, nil
}

func (m *Mangadex) retryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Delay(m.opts.RetryDelay),
		retry.Attempts(m.opts.RetryAttempts),
		retry.MaxJitter(m.opts.RetryJitter),
		retry.LastErrorOnly(true),
	}
}

// get fetches an api endpoint and decodes it into v. Any answer whose result
// is not "ok" becomes an UpstreamError carrying the raw body.
func (m *Mangadex) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	u, err := url.Parse(m.opts.APIURL)
	if err != nil {
		return err
	}

	u = u.JoinPath(endpoint)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", sharedhttp.UserAgent)

	var body []byte

	retryErr := retry.Do(func() error {
		m.limiter.Take()

		b, err := sharedhttp.ExecRequest(m.client, req)
		body = b
		return err
	}, m.retryOptions(ctx)...)

	var status mangadexResult
	if len(body) > 0 && json.Unmarshal(body, &status) == nil && status.Result != "ok" {
		return &domain.UpstreamError{Endpoint: endpoint, Result: status.Result, Body: body}
	}

	if retryErr != nil {
		return errors.Wrapf(retryErr, "request to %s failed", endpoint)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", endpoint)
	}

	return nil
}

func (m *Mangadex) toManga(data mangadexMangaData) (domain.Manga, error) {
	title, err := data.Attributes.Title.Resolve(m.opts.Language)
	if err != nil {
		return domain.Manga{}, errors.Wrapf(err, "title of manga %s", data.ID)
	}

	// plenty of titles have no description at all, that is not worth failing over
	description, _ := data.Attributes.Description.Resolve(m.opts.Language)

	return domain.Manga{
		ID:                 data.ID,
		Title:              title,
		Description:        description,
		Year:               data.Attributes.Year,
		Status:             domain.Status(data.Attributes.Status),
		ContentRating:      domain.ContentRating(data.Attributes.ContentRating),
		AvailableLanguages: data.Attributes.AvailableTranslatedLanguages,
	}, nil
}

// decodeKeyed decodes either a keyed object or an array into a slice of values.
// The aggregate endpoint sends [] for empty collections and {} otherwise.
func decodeKeyed[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var keyed map[string]T
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, err
	}

	items := make([]T, 0, len(keyed))
	for _, item := range keyed {
		items = append(items, item)
	}

	return items, nil
}
