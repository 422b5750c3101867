// Package opentdb fetches multiple-choice questions from the Open Trivia
// Database HTTP API.
package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mroshb/trivia_bot/internal/security"
	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/errors"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// Response codes of the questions endpoint.
const (
	CodeSuccess          = 0
	CodeNoResults        = 1
	CodeInvalidParameter = 2
	CodeTokenNotFound    = 3
	CodeTokenEmpty       = 4
	CodeRateLimit        = 5
)

// MaxAmount is the largest batch the API serves in one call.
const MaxAmount = 50

// TokenStore keeps the session token that stops the API from repeating
// questions.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Cache holds the category list between calls.
type Cache interface {
	Load(ctx context.Context, key string, dst interface{}) (bool, error)
	Store(ctx context.Context, key string, v interface{}) error
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	cache   Cache
	group   singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithTokenStore(s TokenStore) Option {
	return func(cl *Client) { cl.tokens = s }
}

func WithCategoryCache(c Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type questionsResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

type apiQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type tokenResponse struct {
	ResponseCode    int    `json:"response_code"`
	ResponseMessage string `json:"response_message"`
	Token           string `json:"token"`
}

type categoriesResponse struct {
	TriviaCategories []Category `json:"trivia_categories"`
}

// FetchQuestions returns count multiple-choice questions, optionally from a
// numeric category id. Text fields come back decoded and free of markup.
func (c *Client) FetchQuestions(ctx context.Context, count int, category string) ([]trivia.Question, error) {
	if count < 1 || count > MaxAmount {
		return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("amount must be between 1 and %d", MaxAmount))
	}

	token := c.sessionToken(ctx)
	tokenRetried := false

	for {
		resp, err := c.getQuestions(ctx, count, category, token)
		if err != nil {
			return nil, err
		}

		switch resp.ResponseCode {
		case CodeSuccess:
			return convert(resp.Results), nil
		case CodeNoResults:
			return nil, errors.New(errors.ErrCodeSourceUnavailable, "not enough questions for this query")
		case CodeInvalidParameter:
			return nil, errors.New(errors.ErrCodeSourceUnavailable, "invalid query parameters")
		case CodeRateLimit:
			return nil, errors.New(errors.ErrCodeSourceUnavailable, "rate limited by trivia api")
		case CodeTokenNotFound, CodeTokenEmpty:
			if tokenRetried || token == "" {
				return nil, errors.New(errors.ErrCodeSourceUnavailable, "session token rejected")
			}
			tokenRetried = true
			if resp.ResponseCode == CodeTokenNotFound {
				token = c.renewToken(ctx)
			} else {
				token = c.resetToken(ctx, token)
			}
			logger.Info("Trivia session token refreshed", "code", resp.ResponseCode)
		default:
			return nil, errors.New(errors.ErrCodeSourceUnavailable, fmt.Sprintf("unexpected response code %d", resp.ResponseCode))
		}
	}
}

func (c *Client) getQuestions(ctx context.Context, count int, category, token string) (*questionsResponse, error) {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(count))
	q.Set("type", "multiple")
	if category != "" {
		q.Set("category", category)
	}
	if token != "" {
		q.Set("token", token)
	}

	var resp questionsResponse
	if err := c.getJSON(ctx, "/api.php", q, &resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "fetch questions")
	}
	return &resp, nil
}

// sessionToken returns the shared token, requesting one if none is stored.
// Token failures are logged and the fetch goes on without a token.
func (c *Client) sessionToken(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		logger.Warn("Failed to load trivia token", "error", err)
		return ""
	}
	if token != "" {
		return token
	}
	return c.renewToken(ctx)
}

func (c *Client) renewToken(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	var resp tokenResponse
	q := url.Values{"command": {"request"}}
	if err := c.getJSON(ctx, "/api_token.php", q, &resp); err != nil || resp.ResponseCode != CodeSuccess {
		logger.Warn("Failed to request trivia token", "error", err, "code", resp.ResponseCode)
		_ = c.tokens.ClearToken(ctx)
		return ""
	}
	if err := c.tokens.SaveToken(ctx, resp.Token); err != nil {
		logger.Warn("Failed to store trivia token", "error", err)
	}
	return resp.Token
}

func (c *Client) resetToken(ctx context.Context, token string) string {
	var resp tokenResponse
	q := url.Values{"command": {"reset"}, "token": {token}}
	if err := c.getJSON(ctx, "/api_token.php", q, &resp); err != nil || resp.ResponseCode != CodeSuccess {
		logger.Warn("Failed to reset trivia token", "error", err, "code", resp.ResponseCode)
		return c.renewToken(ctx)
	}
	if resp.Token != "" {
		token = resp.Token
	}
	if c.tokens != nil {
		if err := c.tokens.SaveToken(ctx, token); err != nil {
			logger.Warn("Failed to store trivia token", "error", err)
		}
	}
	return token
}

// Categories lists the API's categories, cached when a cache is configured.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var cached []Category
	if c.cache != nil {
		hit, err := c.cache.Load(ctx, "all", &cached)
		if err != nil {
			logger.Warn("Failed to read category cache", "error", err)
		}
		if hit {
			return cached, nil
		}
	}

	v, err, _ := c.group.Do("categories", func() (interface{}, error) {
		var resp categoriesResponse
		if err := c.getJSON(ctx, "/api_category.php", nil, &resp); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "fetch categories")
		}
		categories := make([]Category, 0, len(resp.TriviaCategories))
		for _, cat := range resp.TriviaCategories {
			categories = append(categories, Category{ID: cat.ID, Name: security.CleanText(cat.Name)})
		}
		if c.cache != nil {
			if err := c.cache.Store(ctx, "all", categories); err != nil {
				logger.Warn("Failed to write category cache", "error", err)
			}
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Category), nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

func convert(results []apiQuestion) []trivia.Question {
	questions := make([]trivia.Question, 0, len(results))
	for _, r := range results {
		distractors := make([]string, 0, len(r.IncorrectAnswers))
		for _, a := range r.IncorrectAnswers {
			distractors = append(distractors, security.CleanText(a))
		}
		questions = append(questions, trivia.Question{
			Category:    security.CleanText(r.Category),
			Difficulty:  trivia.Difficulty(strings.ToLower(r.Difficulty)),
			Prompt:      security.CleanText(r.Question),
			Correct:     security.CleanText(r.CorrectAnswer),
			Distractors: distractors,
		})
	}
	return questions
}
