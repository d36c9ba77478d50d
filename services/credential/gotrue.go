package credsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/auth"
)

const (
	tokenEndpoint  = "/token?grant_type=password"
	signupEndpoint = "/signup"
)

// GoTrueStore consumes the hosted GoTrue auth API: password sign-in and
// sign-up. Token verification happens API-side via the shared JWT secret;
// no refresh or server-side sign-out is consumed.
type GoTrueStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ auth.CredentialStore = (*GoTrueStore)(nil)

func NewGoTrueStore(baseURL, apiKey string) *GoTrueStore {
	return &GoTrueStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type (
	credentialsPayload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// signupResponse covers both shapes GoTrue returns: a session envelope
	// when email confirmation is off, or a bare user object when a
	// confirmation email has been sent.
	signupResponse struct {
		AccessToken string     `json:"access_token"`
		TokenType   string     `json:"token_type"`
		ExpiresIn   int        `json:"expires_in"`
		User        *auth.User `json:"user"`

		ID    string `json:"id"`
		Email string `json:"email"`
	}

	errorResponse struct {
		Code             int    `json:"code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
)

func (e errorResponse) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (s *GoTrueStore) SignInWithPassword(ctx context.Context, email, password string) (auth.Session, error) {
	var sess auth.Session
	if err := s.post(ctx, tokenEndpoint, credentialsPayload{Email: email, Password: password}, &sess); err != nil {
		return auth.Session{}, err
	}
	return sess, nil
}

func (s *GoTrueStore) SignUp(ctx context.Context, email, password string) (auth.SignUpResult, error) {
	var body signupResponse
	if err := s.post(ctx, signupEndpoint, credentialsPayload{Email: email, Password: password}, &body); err != nil {
		return auth.SignUpResult{}, err
	}

	if body.AccessToken != "" && body.User != nil {
		return auth.SignUpResult{
			User: body.User,
			Session: &auth.Session{
				AccessToken: body.AccessToken,
				TokenType:   body.TokenType,
				ExpiresIn:   body.ExpiresIn,
				User:        *body.User,
			},
		}, nil
	}
	if body.ID != "" {
		return auth.SignUpResult{User: &auth.User{ID: body.ID, Email: body.Email}}, nil
	}
	return auth.SignUpResult{User: body.User}, nil
}

func (s *GoTrueStore) post(ctx context.Context, endpoint string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshalling payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling credential store")
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return s.apiError(res.StatusCode, body)
	}
	return errors.Wrap(json.Unmarshal(body, out), "decoding response")
}

// apiError maps a GoTrue failure to an error; duplicate signup rejections
// become auth.ErrDuplicateAccount so the reconciler can tell them apart.
func (s *GoTrueStore) apiError(status int, body []byte) error {
	var payload errorResponse
	_ = json.Unmarshal(body, &payload)

	msg := payload.text()
	if msg == "" {
		msg = http.StatusText(status)
	}
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "already registered") || strings.Contains(lower, "already exists") {
		return auth.ErrDuplicateAccount
	}
	return errors.New(msg)
}
