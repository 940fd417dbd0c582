package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/apperr"
)

const firebaseBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Firebase signs users in with the Identity Toolkit REST API.
type Firebase struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewFirebase(apiKey string, client *http.Client) *Firebase {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Firebase{apiKey: apiKey, baseURL: firebaseBaseURL, httpClient: client}
}

// WithBaseURL points the client at another endpoint, e.g. the auth emulator.
func (f *Firebase) WithBaseURL(u string) *Firebase {
	f.baseURL = strings.TrimRight(u, "/")
	return f
}

type firebaseAuthResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (Account, error) {
	var out firebaseAuthResponse
	if err := f.call(ctx, "accounts:signInWithPassword", email, password, &out); err != nil {
		return Account{}, err
	}
	return Account{UserID: out.LocalID, Email: out.Email, IDToken: out.IDToken}, nil
}

func (f *Firebase) CreateUser(ctx context.Context, email, password string) error {
	return f.call(ctx, "accounts:signUp", email, password, nil)
}

func (f *Firebase) call(ctx context.Context, method, email, password string, out any) error {
	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return err
	}

	endpoint := f.baseURL + "/" + method + "?key=" + url.QueryEscape(f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %s: %w: %w", method, apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("identity: read %s response: %w", method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseFirebaseError(raw, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("identity: decode %s response: %w", method, err)
	}
	return nil
}

// parseFirebaseError pulls the code out of {"error":{"message":"CODE : detail"}}.
func parseFirebaseError(raw []byte, status int) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return fmt.Errorf("identity: provider returned status %d: %w", status, apperr.ErrUpstream)
	}
	code, detail, _ := strings.Cut(body.Error.Message, " : ")
	ie := &Error{Code: strings.TrimSpace(code)}
	if detail != "" {
		ie.Err = errors.New(strings.TrimSpace(detail))
	}
	return ie
}

var _ Gateway = (*Firebase)(nil)
