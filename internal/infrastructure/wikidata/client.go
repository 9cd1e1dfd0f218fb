// Package wikidata implements the KnowledgeBase port against the Wikidata
// SPARQL endpoint.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/thodel/outremer/internal/domain/ports"
	"github.com/thodel/outremer/internal/infrastructure/config"
)

// HTTPClient matches the Do method of *http.Client so tests can inject a
// fake transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var reYear = regexp.MustCompile(`^(\d{4})`)

// Client queries Wikidata with enforced pacing between calls and bounded
// retries. It is safe for concurrent use; the pacer serializes the minimum
// delay across goroutines.
type Client struct {
	http       HTTPClient
	endpoint   string
	userAgent  string
	maxRetries int
	pacer      *pacer
	log        *slog.Logger
}

// NewClient creates a Wikidata client from configuration.
func NewClient(cfg config.WikidataConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	timeout := time.Duration(cfg.TimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		pacer:      newPacer(time.Duration(cfg.DelayMS) * time.Millisecond),
		log:        log,
	}
}

// SetHTTPClient replaces the transport, for tests.
func (c *Client) SetHTTPClient(h HTTPClient) { c.http = h }

// SearchPersons runs an EntitySearch-backed SPARQL query restricted to
// instance-of human. The inner search casts wider than limit so persons
// are not lost to non-human items near the top of the raw search.
func (c *Client) SearchPersons(ctx context.Context, name string, limit int) ([]ports.KBCandidate, error) {
	safe := strings.NewReplacer(`"`, "", `\`, "").Replace(name)
	query := fmt.Sprintf(`
SELECT ?item ?itemLabel ?itemDescription WHERE {
  SERVICE wikibase:mwapi {
    bd:serviceParam wikibase:endpoint "www.wikidata.org" ;
                    wikibase:api "EntitySearch" ;
                    mwapi:search "%s" ;
                    mwapi:language "en" ;
                    mwapi:limit "20" .
    ?item wikibase:apiOutputItem mwapi:item .
  }
  ?item wdt:P31 wd:Q5 .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en" . }
}
LIMIT %d
`, safe, limit)

	bindings, err := c.query(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []ports.KBCandidate
	for _, b := range bindings {
		uri := b.value("item")
		qid := uri[strings.LastIndex(uri, "/")+1:]
		label := b.value("itemLabel")
		// A label equal to the QID means the item has no usable label.
		if qid == "" || label == qid {
			continue
		}
		results = append(results, ports.KBCandidate{
			ID:          qid,
			Label:       label,
			Description: b.value("itemDescription"),
		})
	}
	return results, nil
}

// FetchLifespan fetches birth (P569) and death (P570) years for an entity.
// Unknown dates come back as nil fields.
func (c *Client) FetchLifespan(ctx context.Context, id string) (ports.Lifespan, error) {
	query := fmt.Sprintf(`
SELECT ?birth ?death WHERE {
  wd:%s wdt:P569 ?birth .
  OPTIONAL { wd:%s wdt:P570 ?death . }
}
`, id, id)

	bindings, err := c.query(ctx, query)
	if err != nil {
		return ports.Lifespan{}, err
	}

	var span ports.Lifespan
	for _, b := range bindings {
		if span.Birth == nil {
			span.Birth = yearOf(b.value("birth"))
		}
		if span.Death == nil {
			span.Death = yearOf(b.value("death"))
		}
	}
	return span, nil
}

// query runs one paced SPARQL request with bounded retries and backoff.
func (c *Client) query(ctx context.Context, sparql string) ([]binding, error) {
	params := url.Values{}
	params.Set("query", sparql)
	params.Set("format", "json")
	reqURL := c.endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<(attempt-1))) * time.Millisecond
			c.log.Debug("retrying wikidata query", "attempt", attempt, "backoff", backoff)
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
		}

		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		bindings, retryable, err := c.once(ctx, reqURL)
		if err == nil {
			return bindings, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("wikidata query failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// once performs a single request. The bool reports whether the failure is
// worth retrying (transport errors and 5xx/429), as opposed to malformed
// responses which will not improve.
func (c *Client) once(ctx context.Context, reqURL string) ([]binding, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("wikidata returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("wikidata returned status %d", resp.StatusCode)
	}

	var parsed sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, fmt.Errorf("decoding sparql response: %w", err)
	}
	return parsed.Results.Bindings, false, nil
}

// sparqlResponse is the subset of the SPARQL JSON results format we read.
type sparqlResponse struct {
	Results struct {
		Bindings []binding `json:"bindings"`
	} `json:"results"`
}

type binding map[string]struct {
	Value string `json:"value"`
}

func (b binding) value(key string) string {
	return b[key].Value
}

// yearOf parses the leading four-digit year of an ISO timestamp, nil when
// absent.
func yearOf(s string) *int {
	m := reYear.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &y
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
