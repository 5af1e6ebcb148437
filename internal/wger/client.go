// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package wger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/staranto/exefitgo/internal/exercise"
	xlog "github.com/staranto/exefitgo/internal/log"
)

const (
	DefaultBaseURL   = "https://wger.de/api/v2"
	DefaultRPM       = 120
	DefaultLookupTTL = time.Hour

	listTimeout   = 10 * time.Second
	detailTimeout = 5 * time.Second

	// imageConcurrency bounds the parallel image lookups of one listing.
	imageConcurrency = 8
)

// ListOptions are the /exercise/ query parameters. Zero values are omitted.
type ListOptions struct {
	Language  int
	Limit     int
	Offset    int
	Category  int
	Muscle    int
	Equipment int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	set := func(k string, n int) {
		if n != 0 {
			v.Set(k, strconv.Itoa(n))
		}
	}
	set("language", o.Language)
	set("limit", o.Limit)
	set("offset", o.Offset)
	set("category", o.Category)
	set("muscles", o.Muscle)
	set("equipment", o.Equipment)
	return v
}

// Client talks to the wger REST API.
type Client struct {
	baseURL   string
	list      *retryablehttp.Client
	detail    *retryablehttp.Client
	limiter   *rate.Limiter
	lookupTTL time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL. A trailing slash is ignored.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRPM sets the client-side request budget per minute.
func WithRPM(rpm int) Option {
	return func(c *Client) {
		if rpm > 0 {
			c.limiter = newLimiter(rpm)
		}
	}
}

// WithLookupTTL sets how long category/muscle/equipment responses are reused
// from disk. Zero or less disables that reuse.
func WithLookupTTL(ttl time.Duration) Option {
	return func(c *Client) { c.lookupTTL = ttl }
}

// WithRetryWait sets the pause before the single retry.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		for _, rc := range []*retryablehttp.Client{c.list, c.detail} {
			rc.RetryWaitMin, rc.RetryWaitMax = d, d
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		list:      newRetryClient(listTimeout),
		detail:    newRetryClient(detailTimeout),
		limiter:   newLimiter(DefaultRPM),
		lookupTTL: DefaultLookupTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the API root in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func newLimiter(rpm int) *rate.Limiter {
	burst := rpm / 2
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// newRetryClient retries once, and only when no response came back.
func newRetryClient(timeout time.Duration) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 1
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient.Timeout = timeout
	rc.Logger = xlog.RetryLogger{}
	rc.CheckRetry = func(ctx context.Context, _ *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return err != nil, nil
	}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return rc
}

// get fetches path (relative to the base URL) and decodes the JSON body into
// out. It returns the raw body too.
func (c *Client) get(ctx context.Context, rc *retryablehttp.Client, path string, query url.Values, out any, what string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Debugf("GET %s", u)
	resp, err := rc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newTransportError(err, what)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(err, what)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp, body, what)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", u, err)
		}
	}
	return body, nil
}

// Exercises lists exercises and attaches their images. Exercises the API
// returns without a name are labeled by id.
func (c *Client) Exercises(ctx context.Context, opts ListOptions) (exercise.Page[exercise.Exercise], error) {
	if opts.Language == 0 {
		opts.Language = exercise.LanguageEnglish
	}
	if opts.Limit == 0 {
		opts.Limit = 20
	}

	var page exercise.Page[exercise.Exercise]
	if _, err := c.get(ctx, c.list, "/exercise/", opts.values(), &page, "Failed to fetch exercises"); err != nil {
		return exercise.Page[exercise.Exercise]{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageConcurrency)
	for i := range page.Results {
		ex := &page.Results[i]
		if strings.TrimSpace(ex.Name) == "" {
			ex.Name = ex.DisplayName()
		}
		g.Go(func() error {
			ex.Images = c.Images(gctx, ex.ID)
			return nil
		})
	}
	_ = g.Wait()

	log.Debugf("fetched %d of %d exercises", len(page.Results), page.Count)
	return page, nil
}

// Exercise fetches one exercise with its images.
func (c *Client) Exercise(ctx context.Context, id int) (exercise.Exercise, error) {
	q := url.Values{}
	q.Set("language", strconv.Itoa(exercise.LanguageEnglish))

	var ex exercise.Exercise
	what := fmt.Sprintf("Failed to fetch exercise with ID %d", id)
	if _, err := c.get(ctx, c.detail, fmt.Sprintf("/exercise/%d/", id), q, &ex, what); err != nil {
		return exercise.Exercise{}, err
	}

	ex.Images = c.Images(ctx, id)
	return ex, nil
}

// Images returns the images of exercise id. Failures are logged and give an
// empty list.
func (c *Client) Images(ctx context.Context, id int) []exercise.Image {
	q := url.Values{}
	q.Set("exercise", strconv.Itoa(id))

	var page exercise.Page[exercise.Image]
	if _, err := c.get(ctx, c.list, "/exerciseimage/", q, &page, "Failed to fetch images"); err != nil {
		log.WithError(err).Debugf("no images found for exercise %d", id)
		return []exercise.Image{}
	}
	if page.Results == nil {
		return []exercise.Image{}
	}
	return page.Results
}
