package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"carscout/internal/models"
)

var (
	ErrMissingAPIKey     = errors.New("firecrawl API key is not configured")
	ErrMalformedResponse = errors.New("malformed extraction response")
)

type Options struct {
	BaseURL string
	APIKey  string
	// RPS caps outgoing requests per second; zero or less disables pacing.
	RPS     float64
	Timeout time.Duration
}

// Client calls the Firecrawl scrape endpoint with a fixed listing schema.
// Requests are paced but never retried: every call spends credits.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	apiKey  string
	log     zerolog.Logger
}

type scrapeRequest struct {
	URL         string      `json:"url"`
	Formats     []string    `json:"formats"`
	JSONOptions jsonOptions `json:"jsonOptions"`
}

type jsonOptions struct {
	Schema       map[string]any `json:"schema"`
	Prompt       string         `json:"prompt"`
	SystemPrompt string         `json:"systemPrompt"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		JSON json.RawMessage `json:"json"`
	} `json:"data"`
}

func NewClient(opts Options, log zerolog.Logger) *Client {
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}

	c := &Client{
		limiter: rate.NewLimiter(limit, 1),
		apiKey:  opts.APIKey,
		log:     log.With().Str("module", "extract").Logger(),
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetAuthToken(opts.APIKey)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.limiter.Wait(req.Context())
	})
	c.http = client

	return c
}

// ExtractListings returns the schema-conforming records found on pageURL.
func (c *Client) ExtractListings(ctx context.Context, pageURL string) ([]models.ListingRecord, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(scrapeRequest{
			URL:     pageURL,
			Formats: []string{"json"},
			JSONOptions: jsonOptions{
				Schema:       listingSchema,
				Prompt:       extractionPrompt,
				SystemPrompt: systemPrompt,
			},
		}).
		Post("/v1/scrape")
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	var body scrapeResponse
	decodeErr := json.Unmarshal(res.Body(), &body)

	if res.IsError() {
		msg := strings.TrimSpace(body.Error)
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(res.String())
		}
		return nil, fmt.Errorf("extraction service returned %s: %s", res.Status(), msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	if !body.Success {
		return nil, fmt.Errorf("extraction service reported failure: %s", body.Error)
	}

	records, dropped, err := decodeListings(body.Data.JSON)
	if err != nil {
		return nil, err
	}

	event := c.log.Info()
	if dropped > 0 {
		event = c.log.Warn()
	}
	event.Str("url", pageURL).
		Str("schema", SchemaVersion).
		Int("records", len(records)).
		Int("dropped", dropped).
		Dur("took", time.Since(start)).
		Msg("Page extracted")

	return records, nil
}
