// Package quotes fetches an inspirational quote from a chain of public APIs and
// falls back to a fixed local list when every source fails.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/apperr"
	"github.com/AnshRaj112/serenify-journal/internal/logger"
	"github.com/AnshRaj112/serenify-journal/internal/models"
)

const DefaultTimeout = 5 * time.Second

// LastResort is served when there is nothing else left, not even a fallback.
var LastResort = models.Quote{
	Quote:  "Every day is a new beginning. Take a deep breath and start again.",
	Author: "Unknown",
}

var DefaultFallbacks = []models.Quote{
	{Quote: "The only way to do great work is to love what you do.", Author: "Steve Jobs"},
	{Quote: "Life is what happens to you while you're busy making other plans.", Author: "John Lennon"},
	{Quote: "The future belongs to those who believe in the beauty of their dreams.", Author: "Eleanor Roosevelt"},
	{Quote: "It is during our darkest moments that we must focus to see the light.", Author: "Aristotle"},
	{Quote: "Success is not final, failure is not fatal: it is the courage to continue that counts.", Author: "Winston Churchill"},
	{Quote: "The only impossible journey is the one you never begin.", Author: "Tony Robbins"},
	{Quote: "In the middle of difficulty lies opportunity.", Author: "Albert Einstein"},
	{Quote: "Believe you can and you're halfway there.", Author: "Theodore Roosevelt"},
	{Quote: "The only thing we have to fear is fear itself.", Author: "Franklin D. Roosevelt"},
	{Quote: "Be yourself; everyone else is already taken.", Author: "Oscar Wilde"},
}

// Source describes one outside quote API and where the quote lives in its
// response body.
type Source struct {
	URL string
	// ContentPath is a dot-separated path to the quote text, e.g. "slip.advice".
	ContentPath string
	// AuthorPath is empty when the source has no author.
	AuthorPath string
	// Array sources answer with a list; the first element is used.
	Array bool
}

var DefaultSources = []Source{
	{URL: "https://api.quotable.io/random", ContentPath: "content", AuthorPath: "author"},
	{URL: "https://zenquotes.io/api/random", ContentPath: "q", AuthorPath: "a", Array: true},
	{URL: "https://api.adviceslip.com/advice", ContentPath: "slip.advice"},
}

type Service struct {
	sources   []Source
	fallbacks []models.Quote
	client    *http.Client
	timeout   time.Duration
	pick      func(n int) int
	log       logger.Logger
}

type Option func(*Service)

func WithSources(src ...Source) Option {
	return func(s *Service) { s.sources = src }
}

func WithFallbacks(q []models.Quote) Option {
	return func(s *Service) { s.fallbacks = q }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPicker replaces the random fallback choice. pick must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) { s.pick = pick }
}

func NewService(log logger.Logger, opts ...Option) *Service {
	s := &Service{
		sources:   DefaultSources,
		fallbacks: DefaultFallbacks,
		client:    &http.Client{},
		timeout:   DefaultTimeout,
		pick:      rand.Intn,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the first quote any source produces, else a local fallback.
// It never fails.
func (s *Service) Get(ctx context.Context) models.Quote {
	for _, src := range s.sources {
		q, err := s.fetch(ctx, src)
		if err != nil {
			s.log.Warnf("quote source %s failed: %v", src.URL, err)
			continue
		}
		return q
	}
	if len(s.fallbacks) == 0 {
		return LastResort
	}
	return s.fallbacks[s.pick(len(s.fallbacks))]
}

func (s *Service) fetch(ctx context.Context, src Source) (models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return models.Quote{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Quote{}, fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Quote{}, fmt.Errorf("%w: status %d", apperr.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return models.Quote{}, err
	}
	return src.parse(body)
}

func (src Source) parse(body []byte) (models.Quote, error) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return models.Quote{}, fmt.Errorf("decode body: %w", err)
	}
	if src.Array {
		list, ok := data.([]any)
		if !ok || len(list) == 0 {
			return models.Quote{}, fmt.Errorf("expected non-empty array")
		}
		data = list[0]
	}

	content := lookup(data, src.ContentPath)
	if content == "" {
		return models.Quote{}, fmt.Errorf("no quote at %q", src.ContentPath)
	}

	author := "Unknown"
	if src.AuthorPath != "" {
		author = strings.TrimSuffix(lookup(data, src.AuthorPath), ", ")
		if author == "" {
			author = "Unknown"
		}
	}
	return models.Quote{Quote: content, Author: author}, nil
}

func lookup(data any, path string) string {
	cur := data
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	s, _ := cur.(string)
	return s
}
