package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mwalimu/apps/api/echo"
	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/auth"
	"github.com/trezcool/mwalimu/core/composer"
	"github.com/trezcool/mwalimu/core/followup"
	"github.com/trezcool/mwalimu/core/student"
	emailsvc "github.com/trezcool/mwalimu/services/email"
	dummydb "github.com/trezcool/mwalimu/storage/database/dummy"
)

var (
	stRepo student.Repository
	fuRepo followup.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errNotFound     = httpErr{Error: "not found"}
)

type testDeps struct {
	store *fakeCredentialStore
	gen   *fakeGenerator
}

func setup(t *testing.T, deps testDeps) Server {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	stRepo = dummydb.NewStudentRepository(db)
	fuRepo = dummydb.NewFollowupRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	validate, translator := core.NewValidator()

	var gen composer.TextGenerator
	if deps.gen != nil { // a nil *fakeGenerator must stay a nil interface
		gen = deps.gen
	}

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         nopLogger{},
			Reconciler:     auth.NewReconciler(deps.store),
			StudentSvc:     student.NewService(stRepo),
			FollowupSvc:    followup.NewService(fuRepo, mailSvc),
			Composer:       composer.New(gen),
			Validate:       validate,
			Translator:     translator,
		},
	)
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fakeCredentialStore scripts the hosted auth backend's responses.
type fakeCredentialStore struct {
	session    auth.Session
	signInErr  error
	signUpRes  auth.SignUpResult
	signUpErr  error
	signUpHits int
	lastEmail  string
}

func (s *fakeCredentialStore) SignInWithPassword(_ context.Context, email, _ string) (auth.Session, error) {
	s.lastEmail = email
	if s.signInErr != nil {
		return auth.Session{}, s.signInErr
	}
	return s.session, nil
}

func (s *fakeCredentialStore) SignUp(_ context.Context, _, _ string) (auth.SignUpResult, error) {
	s.signUpHits++
	if s.signUpErr != nil {
		return auth.SignUpResult{}, s.signUpErr
	}
	return s.signUpRes, nil
}

// fakeGenerator records the last prompt and echoes a canned completion.
type fakeGenerator struct {
	content    string
	err        error
	lastSystem string
	lastPrompt string
}

func (g *fakeGenerator) Complete(_ context.Context, system, prompt string) (string, error) {
	g.lastSystem = system
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.content, nil
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr auth.User) string {
	claims := new(Claims)
	claims.Subject = usr.ID
	claims.Email = usr.Email
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func unmarchallObj(t *testing.T, data []byte, obj interface{}) {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarchallObj(): %v", err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
