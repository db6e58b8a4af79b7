// Package clist fetches upcoming contests from the CLIST v2 API
// (https://clist.by). It is the single source feeding the contest catalog.
package clist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"contest-reminder/internal/domain/entity"
	"contest-reminder/internal/resilience/circuitbreaker"
	"contest-reminder/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

// ErrDisabled is returned when the client is asked to fetch without
// configured credentials.
var ErrDisabled = errors.New("clist: client disabled, credentials not configured")

// clistTime is the timestamp layout CLIST uses, UTC without a zone suffix.
const clistTime = "2006-01-02T15:04:05"

// Client talks to the CLIST API with retry and circuit breaker protection.
type Client struct {
	cfg     Config
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
}

// NewClient builds a CLIST client. The HTTP client may be nil, in which
// case one with the configured timeout is used.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:     cfg,
		client:  httpClient,
		breaker: circuitbreaker.New(circuitbreaker.ContestAPIConfig()),
		retry:   retry.ContestAPIConfig(),
	}
}

// resourceRef is the resource field of a contest object. CLIST has shipped
// it both as a plain host string and as a nested object; accept either.
type resourceRef struct {
	Name string
}

func (r *resourceRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
		Host string `json:"host"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Name != "" {
		r.Name = obj.Name
	} else {
		r.Name = obj.Host
	}
	return nil
}

type contestObject struct {
	ID       int64       `json:"id"`
	Event    string      `json:"event"`
	Href     string      `json:"href"`
	Start    string      `json:"start"`
	Duration int64       `json:"duration"`
	Resource resourceRef `json:"resource"`
	Host     string      `json:"host"`
}

type contestPage struct {
	Objects []contestObject `json:"objects"`
}

type resourceObject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type resourcePage struct {
	Objects []resourceObject `json:"objects"`
}

// FetchUpcoming returns contests starting after now on the configured
// resources, ascending by start time.
func (c *Client) FetchUpcoming(ctx context.Context, now time.Time) ([]*entity.Contest, error) {
	if !c.cfg.Enabled() {
		return nil, ErrDisabled
	}

	ids, err := c.resourceIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchUpcoming: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("FetchUpcoming: no CLIST resources matched %v", c.cfg.Resources)
	}

	params := url.Values{}
	params.Set("resource_id__in", joinInts(ids))
	params.Set("start__gt", now.UTC().Format(clistTime))
	params.Set("order_by", "start")
	params.Set("limit", strconv.Itoa(c.cfg.Limit))

	var page contestPage
	if err := c.getJSON(ctx, "/contest/", params, &page); err != nil {
		return nil, fmt.Errorf("FetchUpcoming: %w", err)
	}

	contests := make([]*entity.Contest, 0, len(page.Objects))
	for _, obj := range page.Objects {
		start, err := time.Parse(clistTime, obj.Start)
		if err != nil {
			slog.Warn("skipping contest with unparseable start time",
				slog.Int64("external_id", obj.ID),
				slog.String("start", obj.Start))
			continue
		}

		resourceName := obj.Resource.Name
		if resourceName == "" {
			resourceName = obj.Host
		}

		contests = append(contests, &entity.Contest{
			ExternalID:      obj.ID,
			Name:            obj.Event,
			Platform:        NormalizePlatform(resourceName),
			StartTime:       start.UTC(),
			DurationSeconds: obj.Duration,
			URL:             obj.Href,
		})
	}

	return contests, nil
}

// resourceIDs resolves the configured resource names to CLIST resource IDs
// with one name__in query.
func (c *Client) resourceIDs(ctx context.Context) ([]int64, error) {
	params := url.Values{}
	params.Set("name__in", strings.Join(c.cfg.Resources, ","))
	params.Set("limit", strconv.Itoa(len(c.cfg.Resources)+10))

	var page resourcePage
	if err := c.getJSON(ctx, "/resource/", params, &page); err != nil {
		return nil, fmt.Errorf("resolve resources: %w", err)
	}

	found := make(map[string]int64, len(page.Objects))
	for _, r := range page.Objects {
		found[strings.ToLower(r.Name)] = r.ID
	}

	ids := make([]int64, 0, len(c.cfg.Resources))
	for _, name := range c.cfg.Resources {
		id, ok := found[strings.ToLower(name)]
		if !ok {
			slog.Warn("CLIST resource not found", slog.String("resource", name))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// getJSON performs one GET through the retry and circuit breaker layers and
// decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + path + "?" + params.Encode()

	return retry.WithBackoff(ctx, c.retry, func() error {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doGet(ctx, endpoint)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("contest API circuit breaker open, request rejected",
					slog.String("path", path))
			}
			return err
		}
		return json.Unmarshal(result.([]byte), out)
	})
}

func (c *Client) doGet(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "ApiKey "+c.cfg.Username+":"+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// NormalizePlatform maps a CLIST resource host to the display name the rest
// of the system uses. Unrecognized hosts keep a cleaned, capitalized form
// of the host name.
func NormalizePlatform(resourceName string) string {
	raw := strings.ToLower(strings.TrimSpace(resourceName))
	if raw == "" {
		return "Unknown"
	}

	switch {
	case strings.Contains(raw, "codechef"):
		return "CodeChef"
	case strings.Contains(raw, "codeforces"):
		return "Codeforces"
	case strings.Contains(raw, "leetcode"):
		return "LeetCode"
	}

	cleaned := raw
	cleaned = strings.TrimPrefix(cleaned, "https://")
	cleaned = strings.TrimPrefix(cleaned, "http://")
	cleaned = strings.TrimPrefix(cleaned, "www.")
	cleaned = strings.TrimSuffix(cleaned, "/")
	cleaned = strings.TrimSuffix(cleaned, ".com")
	if cleaned == "" {
		return "Unknown"
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}

func joinInts(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
