package composer

import (
	"context"

	"github.com/trezcool/mwalimu/core/followup"
)

// maxHistoryEntries caps how much history goes into a trend analysis prompt.
const maxHistoryEntries = 10

type (
	// TextGenerator is the hosted completion backend: one single-turn
	// exchange given a system role framing and an assembled prompt.
	TextGenerator interface {
		Complete(ctx context.Context, system, prompt string) (string, error)
	}

	// ComposeRequest carries everything a draft prompt embeds. Remarks and
	// CustomInstruction are the teacher's free text, included verbatim.
	ComposeRequest struct {
		StudentName       string
		Grade             string
		Remarks           string
		CustomInstruction string
		Category          string
		Tone              string
		Language          string
	}

	// Composer builds prompts against the text generation service. A nil
	// generator means the service credential was never configured; both
	// operations then short-circuit into the degraded-mode result.
	Composer struct {
		gen TextGenerator
	}
)

func New(gen TextGenerator) *Composer {
	return &Composer{gen: gen}
}

// Kind enumerates the outcomes of a composer operation.
type Kind int

const (
	KindGenerated Kind = iota + 1
	KindNotConfigured
	KindNoHistory
	KindFault
)

// Result is the tagged outcome of a composer operation. The stringly-typed
// in-band error channel the UI expects lives only in String(); everything
// upstream can branch on Kind.
type Result struct {
	Kind    Kind
	Content string // generated text, verbatim, untrimmed
	Detail  string // fault detail when Kind == KindFault

	op string // which operation faulted, for String()
}

func (r Result) OK() bool { return r.Kind == KindGenerated }

// String flattens the result into the display string callers render as
// output. Error-shaped strings are shown in place of content; clients treat
// them as the message body.
func (r Result) String() string {
	switch r.Kind {
	case KindGenerated:
		return r.Content
	case KindNotConfigured:
		return "Error: OpenAI API Key not found"
	case KindNoHistory:
		return "No sufficient history to analyze."
	case KindFault:
		return "Error " + r.op + ": " + r.Detail
	}
	return ""
}

// ComposeFollowup asks the generation service for a complete follow-up
// message. Output is non-deterministic (temperature favors varied phrasing);
// identical inputs are not expected to reproduce identical drafts.
func (c *Composer) ComposeFollowup(ctx context.Context, req ComposeRequest) Result {
	if c.gen == nil {
		return Result{Kind: KindNotConfigured}
	}
	if req.Language == "" {
		req.Language = "English"
	}

	content, err := c.gen.Complete(ctx, composeSystemRole, buildFollowupPrompt(req))
	if err != nil {
		return Result{Kind: KindFault, Detail: err.Error(), op: "generating content"}
	}
	return Result{Kind: KindGenerated, Content: content}
}

// AnalyzeHistory summarizes a student's past follow-ups into a trend report.
// Precondition: history is sorted newest-first (the followup repository's
// only ordering); at most the first maxHistoryEntries entries are used and
// the slice is not re-sorted here.
func (c *Composer) AnalyzeHistory(ctx context.Context, studentName string, history []followup.Followup) Result {
	if c.gen == nil {
		return Result{Kind: KindNotConfigured}
	}
	if len(history) == 0 {
		return Result{Kind: KindNoHistory}
	}
	if len(history) > maxHistoryEntries {
		history = history[:maxHistoryEntries]
	}

	content, err := c.gen.Complete(ctx, analyzeSystemRole, buildHistoryPrompt(studentName, history))
	if err != nil {
		return Result{Kind: KindFault, Detail: err.Error(), op: "analyzing history"}
	}
	return Result{Kind: KindGenerated, Content: content}
}
