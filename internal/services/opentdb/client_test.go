package opentdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/errors"
)

type memoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memoryTokens) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memoryTokens) SaveToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memoryTokens) ClearToken(ctx context.Context) error {
	return m.SaveToken(ctx, "")
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (m *memoryCache) Load(ctx context.Context, key string, dst interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memoryCache) Store(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = raw
	return nil
}

const animeResults = `{
	"response_code": 0,
	"results": [{
		"type": "multiple",
		"difficulty": "medium",
		"category": "Entertainment: Japanese Anime &amp; Manga",
		"question": "In &quot;Naruto&quot;, what is Naruto&#039;s favourite food?",
		"correct_answer": "Iruka Umino",
		"incorrect_answers": ["Kakashi Hatake", "Jiraiya", "Minato Namikaze"]
	}]
}`

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestFetchQuestions(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api_token.php":
			writeJSON(w, `{"response_code":0,"response_message":"Token Generated Successfully!","token":"tok-1"}`)
		case "/api.php":
			gotQuery.Store(r.URL.Query())
			writeJSON(w, animeResults)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tokens := &memoryTokens{}
	client := NewClient(srv.URL+"/", WithTokenStore(tokens))

	questions, err := client.FetchQuestions(context.Background(), 1, "31")
	if err != nil {
		t.Fatalf("FetchQuestions() error = %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("len(questions) = %d, want 1", len(questions))
	}

	q := questions[0]
	if q.Prompt != `In "Naruto", what is Naruto's favourite food?` {
		t.Errorf("Prompt = %q", q.Prompt)
	}
	if q.Category != "Entertainment: Japanese Anime & Manga" {
		t.Errorf("Category = %q", q.Category)
	}
	if q.Difficulty != trivia.DifficultyMedium {
		t.Errorf("Difficulty = %q, want medium", q.Difficulty)
	}
	if q.Correct != "Iruka Umino" || len(q.Distractors) != 3 {
		t.Errorf("Correct = %q, Distractors = %v", q.Correct, q.Distractors)
	}
	if err := q.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	query := gotQuery.Load().(url.Values)
	want := map[string]string{"amount": "1", "type": "multiple", "category": "31", "token": "tok-1"}
	for k, v := range want {
		if len(query[k]) != 1 || query[k][0] != v {
			t.Errorf("query %s = %v, want %q", k, query[k], v)
		}
	}
	if tokens.token != "tok-1" {
		t.Errorf("stored token = %q, want tok-1", tokens.token)
	}
}

func TestFetchQuestions_ResponseCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{"No results", CodeNoResults},
		{"Invalid parameter", CodeInvalidParameter},
		{"Rate limit", CodeRateLimit},
		{"Unknown code", 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"response_code": tt.code, "results": []interface{}{}})
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).FetchQuestions(context.Background(), 2, "")
			if errors.CodeOf(err) != errors.ErrCodeSourceUnavailable {
				t.Errorf("FetchQuestions() error = %v, want %s", err, errors.ErrCodeSourceUnavailable)
			}
		})
	}
}

func TestFetchQuestions_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchQuestions(context.Background(), 2, "")
	if !errors.Is(err, trivia.ErrSourceUnavailable) {
		t.Errorf("FetchQuestions() error = %v, want source unavailable", err)
	}
}

func TestFetchQuestions_InvalidAmount(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	for _, n := range []int{0, MaxAmount + 1} {
		if _, err := client.FetchQuestions(context.Background(), n, ""); errors.CodeOf(err) != errors.ErrCodeValidation {
			t.Errorf("FetchQuestions(%d) error = %v, want validation error", n, err)
		}
	}
}

func TestFetchQuestions_TokenRecovery(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		wantCommand string
	}{
		{"Token not found requests a new one", CodeTokenNotFound, "request"},
		{"Token exhausted resets it", CodeTokenEmpty, "reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			var commands []string
			var mu sync.Mutex
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api_token.php":
					mu.Lock()
					commands = append(commands, r.URL.Query().Get("command"))
					mu.Unlock()
					writeJSON(w, `{"response_code":0,"token":"fresh"}`)
				case "/api.php":
					if atomic.AddInt32(&calls, 1) == 1 {
						_ = json.NewEncoder(w).Encode(map[string]int{"response_code": tt.code})
						return
					}
					if got := r.URL.Query().Get("token"); got != "fresh" {
						t.Errorf("retry token = %q, want fresh", got)
					}
					writeJSON(w, animeResults)
				}
			}))
			defer srv.Close()

			tokens := &memoryTokens{token: "stale"}
			questions, err := NewClient(srv.URL, WithTokenStore(tokens)).FetchQuestions(context.Background(), 1, "")
			if err != nil {
				t.Fatalf("FetchQuestions() error = %v", err)
			}
			if len(questions) != 1 {
				t.Errorf("len(questions) = %d, want 1", len(questions))
			}
			if len(commands) != 1 || commands[0] != tt.wantCommand {
				t.Errorf("token commands = %v, want [%s]", commands, tt.wantCommand)
			}
			if tokens.token != "fresh" {
				t.Errorf("stored token = %q, want fresh", tokens.token)
			}
		})
	}
}

func TestFetchQuestions_TokenRejectedTwice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api_token.php" {
			writeJSON(w, `{"response_code":0,"token":"fresh"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"response_code": CodeTokenNotFound})
	}))
	defer srv.Close()

	tokens := &memoryTokens{token: "stale"}
	_, err := NewClient(srv.URL, WithTokenStore(tokens)).FetchQuestions(context.Background(), 1, "")
	if errors.CodeOf(err) != errors.ErrCodeSourceUnavailable {
		t.Errorf("FetchQuestions() error = %v, want source unavailable", err)
	}
}

func TestCategories_Cached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, `{"trivia_categories":[{"id":9,"name":"General Knowledge"},{"id":31,"name":"Entertainment: Japanese Anime &amp; Manga"}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithCategoryCache(&memoryCache{}))
	for i := 0; i < 2; i++ {
		categories, err := client.Categories(context.Background())
		if err != nil {
			t.Fatalf("Categories() error = %v", err)
		}
		if len(categories) != 2 || categories[1].Name != "Entertainment: Japanese Anime & Manga" {
			t.Fatalf("Categories() = %+v", categories)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("api calls = %d, want 1", got)
	}
}
