package tests

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	. "github.com/trezcool/mwalimu/apps/api/echo"
	"github.com/trezcool/mwalimu/core/followup"
	emailsvc "github.com/trezcool/mwalimu/services/email"
	testutil "github.com/trezcool/mwalimu/tests"
)

func Test_studentApi_queryFollowups(t *testing.T) {
	app := setup(t, testDeps{store: &fakeCredentialStore{}})

	amy := testutil.CreateStudent(t, stRepo, jane.ID, "Amy", "Grade 5", "")
	ben := testutil.CreateStudent(t, stRepo, john.ID, "Ben", "Grade 1", "")

	now := time.Now().UTC()
	fu1 := testutil.CreateFollowup(t, fuRepo, amy.ID, "settling in well", "", "Behavior", now.Add(-2*time.Hour))
	fu2 := testutil.CreateFollowup(t, fuRepo, amy.ID, "great progress in math", "", "Academics", now.Add(-1*time.Hour))
	fu3 := testutil.CreateFollowup(t, fuRepo, amy.ID, "needs reading practice", "", "Academics", now)
	testutil.CreateFollowup(t, fuRepo, ben.ID, "other owner's entry", "", "")

	janeToken := getToken(t, jane)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/students/" + amy.ID + "/followups", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "History is most recent first", path: "/v1/students/" + amy.ID + "/followups", token: janeToken,
			wantCode: http.StatusOK, wantData: marchallList(t, fu3, fu2, fu1),
		},
		{
			name: "Another owner's student reads as missing", path: "/v1/students/" + ben.ID + "/followups", token: janeToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_createFollowup(t *testing.T) {
	app := setup(t, testDeps{store: &fakeCredentialStore{}})

	amy := testutil.CreateStudent(t, stRepo, jane.ID, "Amy", "Grade 5", "")
	janeToken := getToken(t, jane)
	path := "/v1/students/" + amy.ID + "/followups"

	tests := []httpTest{
		{
			name: "Content required", token: janeToken, body: marchallObj(t, followup.NewFollowup{Category: "Academics"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"content": "this field is required"}),
		},
		{
			name: "Saved", token: janeToken,
			body:     marchallObj(t, followup.NewFollowup{Content: "Dear parent, ...", OriginalRemarks: "aced her quiz", Category: "Academics"}),
			wantCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}

	var saved followup.Followup
	req, rec := newAuthRequest(http.MethodGet, path, janeToken)
	app.ServeHTTP(rec, req)
	var history []followup.Followup
	unmarchallObj(t, rec.Body.Bytes(), &history)
	if len(history) != 1 {
		t.Fatalf("history length = %v; want 1", len(history))
	}
	saved = history[0]
	if saved.StudentID != amy.ID || saved.Content != "Dear parent, ..." || saved.OriginalRemarks != "aced her quiz" {
		t.Errorf("saved = %+v; want the posted follow-up", saved)
	}
}

func Test_studentApi_composeFollowup(t *testing.T) {
	gen := &fakeGenerator{content: "  Dear parent, Amy is thriving.  "}
	app := setup(t, testDeps{store: &fakeCredentialStore{}, gen: gen})

	amy := testutil.CreateStudent(t, stRepo, jane.ID, "Amy", "Grade 5", "")
	janeToken := getToken(t, jane)
	path := "/v1/students/" + amy.ID + "/followups/compose"

	t.Run("Remarks required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, janeToken, marchallObj(t, ComposeFollowupRequest{}))
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"remarks": "this field is required"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Draft returned verbatim", func(t *testing.T) {
		body := marchallObj(t, ComposeFollowupRequest{
			Remarks:           "aced her math quiz",
			CustomInstruction: "mention the science fair",
			Category:          "Academics",
			Tone:              "Encouraging",
			Language:          "French",
		})
		req, rec := newAuthRequest(http.MethodPost, path, janeToken, body)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, ComposerResponse{Content: gen.content})}
		checkCodeAndData(t, tt, rec)

		// the prompt embeds the student's record, not just the remarks
		for _, want := range []string{"Amy", "Grade 5", "aced her math quiz", "mention the science fair", "French"} {
			if !strings.Contains(gen.lastPrompt, want) {
				t.Errorf("prompt missing %q:\n%s", want, gen.lastPrompt)
			}
		}
	})

	t.Run("Generation fault reads as content", func(t *testing.T) {
		gen.err = errors.New("rate limited")
		defer func() { gen.err = nil }()

		req, rec := newAuthRequest(http.MethodPost, path, janeToken, marchallObj(t, ComposeFollowupRequest{Remarks: "ok"}))
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, ComposerResponse{Content: "Error generating content: rate limited"})}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_studentApi_composeFollowup_notConfigured(t *testing.T) {
	app := setup(t, testDeps{store: &fakeCredentialStore{}}) // no generator credential

	amy := testutil.CreateStudent(t, stRepo, jane.ID, "Amy", "Grade 5", "")
	req, rec := newAuthRequest(
		http.MethodPost, "/v1/students/"+amy.ID+"/followups/compose", getToken(t, jane),
		marchallObj(t, ComposeFollowupRequest{Remarks: "aced her quiz"}),
	)
	app.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, ComposerResponse{Content: "Error: OpenAI API Key not found"})}
	checkCodeAndData(t, tt, rec)
}

func Test_studentApi_analyzeHistory(t *testing.T) {
	gen := &fakeGenerator{content: "Amy shows steady progress."}
	app := setup(t, testDeps{store: &fakeCredentialStore{}, gen: gen})

	amy := testutil.CreateStudent(t, stRepo, jane.ID, "Amy", "Grade 5", "")
	janeToken := getToken(t, jane)
	path := "/v1/students/" + amy.ID + "/analysis"

	t.Run("No history yet", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, janeToken)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, ComposerResponse{Content: "No sufficient history to analyze."})}
		checkCodeAndData(t, tt, rec)
		if gen.lastPrompt != "" {
			t.Errorf("generator was called with:\n%s", gen.lastPrompt)
		}
	})

	t.Run("Report built from saved history", func(t *testing.T) {
		now := time.Now().UTC()
		testutil.CreateFollowup(t, fuRepo, amy.ID, "settling in well", "", "", now.Add(-time.Hour))
		testutil.CreateFollowup(t, fuRepo, amy.ID, "great progress in math", "", "", now)

		req, rec := newAuthRequest(http.MethodPost, path, janeToken)
		app.ServeHTTP(rec, req)

		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, ComposerResponse{Content: gen.content})}
		checkCodeAndData(t, tt, rec)

		for _, want := range []string{"Amy", "settling in well", "great progress in math"} {
			if !strings.Contains(gen.lastPrompt, want) {
				t.Errorf("prompt missing %q:\n%s", want, gen.lastPrompt)
			}
		}
	})
}

func Test_studentApi_sendFollowup(t *testing.T) {
	app := setup(t, testDeps{store: &fakeCredentialStore{}})
	emailsvc.ResetSentMessages()

	amy := testutil.CreateStudent(t, stRepo, jane.ID, "Amy", "Grade 5", "")
	fu := testutil.CreateFollowup(t, fuRepo, amy.ID, "Dear parent, Amy is thriving.", "", "Academics")
	janeToken := getToken(t, jane)
	path := "/v1/students/" + amy.ID + "/followups/" + fu.ID + "/send"

	tests := []httpTest{
		{
			name: "Valid recipient required", path: path, token: janeToken, body: marchallObj(t, SendFollowupRequest{Email: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "Unknown follow-up", path: "/v1/students/" + amy.ID + "/followups/nope/send", token: janeToken,
			body: marchallObj(t, SendFollowupRequest{Email: "parent@test.cd"}), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Sent", path: path, token: janeToken, body: marchallObj(t, SendFollowupRequest{Email: "parent@test.cd"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, SuccessResponse{Success: "Follow-up sent to parent@test.cd"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("SentMessages length = %v; want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if msg.Subject != "Progress update for Amy" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.Body != fu.Content {
		t.Errorf("Body = %q; want %q", msg.Body, fu.Content)
	}
	if len(msg.To) != 1 || msg.To[0].Address != "parent@test.cd" {
		t.Errorf("To = %+v; want parent@test.cd", msg.To)
	}
}
