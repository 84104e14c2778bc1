package news

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

	"github.com/ryosukesatoh/morning-summary/internal/provider"
)

// NewsAPI response types

type newsAPIResponse struct {
	Status   string            `json:"status"`
	Articles []json.RawMessage `json:"articles"`
}

type newsAPIArticle struct {
	Source *struct {
		Name *string `json:"name"`
	} `json:"source"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
}

type newsAPIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// removedMarker is what NewsAPI puts in every field of a withdrawn article.
const removedMarker = "[Removed]"

// NewsAPIClient fetches top headlines from newsapi.org.
type NewsAPIClient struct {
	apiKey  string
	country string
	client  *http.Client
	baseURL string
}

func NewNewsAPIClient(apiKey, baseURL, country string, timeout time.Duration) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:  apiKey,
		country: country,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (c *NewsAPIClient) TopHeadlines(ctx context.Context, category string, limit int) (*Digest, error) {
	if limit <= 0 || limit > MaxHeadlines {
		limit = MaxHeadlines
	}

	query := url.Values{}
	query.Set("country", c.country)
	query.Set("category", category)
	query.Set("pageSize", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/top-headlines?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, provider.Errorf(provider.News, "failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, provider.Errorf(provider.News, "request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, provider.Errorf(provider.News, "failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr newsAPIError
		_ = json.Unmarshal(body, &apiErr)
		return nil, provider.StatusError(provider.News, resp.StatusCode, apiErr.Message)
	}

	var parsed newsAPIResponse
	if err := provider.DecodeValidated(provider.News, headlinesSchema, body, &parsed); err != nil {
		return nil, err
	}

	digest := &Digest{Headlines: make([]Headline, 0, limit)}
	for _, raw := range parsed.Articles {
		var a newsAPIArticle
		if err := json.Unmarshal(raw, &a); err != nil {
			continue
		}
		h, ok := a.headline()
		if !ok {
			continue
		}
		digest.Headlines = append(digest.Headlines, h)
		if len(digest.Headlines) == limit {
			break
		}
	}
	return digest, nil
}

// headline converts an article, reporting false when title, source or URL
// is missing.
func (a newsAPIArticle) headline() (Headline, bool) {
	title := deref(a.Title)
	link := deref(a.URL)
	var source string
	if a.Source != nil {
		source = deref(a.Source.Name)
	}
	if title == "" || link == "" || source == "" || title == removedMarker {
		return Headline{}, false
	}
	return Headline{
		Title:       title,
		Source:      source,
		URL:         link,
		Description: deref(a.Description),
	}, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
