package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/apperr"
)

// FirebaseStore talks to the Firebase Realtime Database REST API.
type FirebaseStore struct {
	baseURL    string
	httpClient *http.Client
}

func NewFirebaseStore(databaseURL string, client *http.Client) *FirebaseStore {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FirebaseStore{
		baseURL:    strings.TrimRight(databaseURL, "/"),
		httpClient: client,
	}
}

func (s *FirebaseStore) collectionURL(collection, token string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("store: invalid database url: %w", err)
	}
	u.Path = path.Join("/", u.Path, collection+".json")
	q := u.Query()
	q.Set("auth", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *FirebaseStore) Push(ctx context.Context, collection string, record any, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	endpoint, err := s.collectionURL(collection, token)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("store: encode %s record: %w", collection, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("store: push %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, collection); err != nil {
		return "", err
	}

	var out struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("store: decode push response: %w", err)
	}
	if out.Name == "" {
		return "", fmt.Errorf("store: push %s: empty key in response", collection)
	}
	return out.Name, nil
}

func (s *FirebaseStore) Get(ctx context.Context, collection string, token string) (Snapshot, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	endpoint, err := s.collectionURL(collection, token)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, collection); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		if err == io.EOF {
			return Snapshot{}, nil
		}
		return nil, fmt.Errorf("store: decode %s snapshot: %w", collection, err)
	}

	// Push keys are chronological, so key order is insertion order.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snap := make(Snapshot, 0, len(keys))
	for _, k := range keys {
		snap = append(snap, Item{Key: k, Value: raw[k]})
	}
	return snap, nil
}

func checkStatus(resp *http.Response, collection string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("store: %s: %w: %s", collection, ErrUnauthorized, strings.TrimSpace(string(msg)))
	}
	return fmt.Errorf("store: %s: %w: status %d: %s", collection, apperr.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(msg)))
}

var _ Store = (*FirebaseStore)(nil)
