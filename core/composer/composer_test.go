package composer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mwalimu/core/followup"
)

type fakeGenerator struct {
	content string
	err     error

	calls      int
	lastSystem string
	lastPrompt string
}

func (g *fakeGenerator) Complete(ctx context.Context, system, prompt string) (string, error) {
	g.calls++
	g.lastSystem = system
	g.lastPrompt = prompt
	return g.content, g.err
}

func newHistory(n int, newest time.Time) []followup.Followup {
	history := make([]followup.Followup, 0, n)
	for i := 0; i < n; i++ {
		history = append(history, followup.Followup{
			Content:   fmt.Sprintf("entry %d", i),
			CreatedAt: newest.AddDate(0, 0, -i), // newest-first
		})
	}
	return history
}

func TestComposer_ComposeFollowup(t *testing.T) {
	req := ComposeRequest{
		StudentName:       "Mia",
		Grade:             "Kindergarten",
		Remarks:           "counted to 20 unprompted",
		CustomInstruction: "mention snack time",
		Category:          "Academic Performance",
		Tone:              "Encouraging & Warm",
		Language:          "English",
	}

	t.Run("not configured", func(t *testing.T) {
		res := New(nil).ComposeFollowup(context.Background(), req)

		assert.False(t, res.OK())
		assert.Equal(t, KindNotConfigured, res.Kind)
		assert.Equal(t, "Error: OpenAI API Key not found", res.String())
	})

	t.Run("prompt embeds context verbatim", func(t *testing.T) {
		gen := &fakeGenerator{content: "Mia had a wonderful week. She counted to 20 on her own during circle time."}
		res := New(gen).ComposeFollowup(context.Background(), req)

		assert.True(t, res.OK())
		assert.Equal(t, gen.content, res.Content)
		assert.Equal(t, gen.content, res.String())
		assert.Equal(t, 1, gen.calls)
		assert.Equal(t, "You are a professional teacher's assistant.", gen.lastSystem)

		assert.Contains(t, gen.lastPrompt, "Target Language: English")
		assert.Contains(t, gen.lastPrompt, "- Student Name: Mia")
		assert.Contains(t, gen.lastPrompt, "- Grade: Kindergarten")
		assert.Contains(t, gen.lastPrompt, "- Message Category: Academic Performance")
		assert.Contains(t, gen.lastPrompt, "- Desired Tone: Encouraging & Warm")
		assert.Contains(t, gen.lastPrompt, `Teacher's Keywords/Observations: "counted to 20 unprompted"`)
		assert.Contains(t, gen.lastPrompt, `Teacher's Specific Instructions: "mention snack time"`)
		assert.Contains(t, gen.lastPrompt, "Vittoria had an excellent first session")
	})

	t.Run("language defaults to English", func(t *testing.T) {
		gen := &fakeGenerator{content: "ok"}
		noLang := req
		noLang.Language = ""
		New(gen).ComposeFollowup(context.Background(), noLang)

		assert.Contains(t, gen.lastPrompt, "Target Language: English")
	})

	t.Run("service fault becomes in-band error string", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("429: quota exceeded")}
		res := New(gen).ComposeFollowup(context.Background(), req)

		assert.False(t, res.OK())
		assert.Equal(t, KindFault, res.Kind)
		assert.Equal(t, "Error generating content: 429: quota exceeded", res.String())
		assert.True(t, strings.HasPrefix(res.String(), "Error generating content:"))
	})

	t.Run("content returned untrimmed", func(t *testing.T) {
		gen := &fakeGenerator{content: "\n  padded draft \n"}
		res := New(gen).ComposeFollowup(context.Background(), req)

		assert.Equal(t, "\n  padded draft \n", res.String())
	})
}

func TestComposer_AnalyzeHistory(t *testing.T) {
	newest := time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("not configured", func(t *testing.T) {
		res := New(nil).AnalyzeHistory(context.Background(), "Mia", newHistory(3, newest))

		assert.Equal(t, KindNotConfigured, res.Kind)
		assert.Equal(t, "Error: OpenAI API Key not found", res.String())
	})

	t.Run("empty history short-circuits", func(t *testing.T) {
		gen := &fakeGenerator{content: "should not be called"}
		res := New(gen).AnalyzeHistory(context.Background(), "Mia", nil)

		assert.Equal(t, KindNoHistory, res.Kind)
		assert.Equal(t, "No sufficient history to analyze.", res.String())
		assert.Zero(t, gen.calls)
	})

	t.Run("truncates to the 10 most recent entries", func(t *testing.T) {
		gen := &fakeGenerator{content: "summary"}
		New(gen).AnalyzeHistory(context.Background(), "Mia", newHistory(15, newest))

		assert.Equal(t, 10, strings.Count(gen.lastPrompt, "\n- 2021-03-"))
		for i := 0; i < 10; i++ {
			assert.Contains(t, gen.lastPrompt, fmt.Sprintf("entry %d", i))
		}
		assert.NotContains(t, gen.lastPrompt, "entry 10")
		assert.NotContains(t, gen.lastPrompt, "entry 14")
	})

	t.Run("formats entries as date: content", func(t *testing.T) {
		gen := &fakeGenerator{content: "summary"}
		history := []followup.Followup{{
			Content:   "settled in quickly",
			CreatedAt: time.Date(2021, 3, 15, 16, 45, 12, 0, time.UTC),
		}}
		New(gen).AnalyzeHistory(context.Background(), "Mia", history)

		assert.Equal(t, "You are an insightful educational analyst.", gen.lastSystem)
		assert.Contains(t, gen.lastPrompt, "- 2021-03-15: settled in quickly")
		assert.NotContains(t, gen.lastPrompt, "16:45") // only the date portion
		assert.Contains(t, gen.lastPrompt, "Analyze the following progress updates for student 'Mia'.")
		assert.Contains(t, gen.lastPrompt, "Overall Trajectory (Improving/Declining/Stable)")
	})

	t.Run("service fault becomes in-band error string", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("timeout")}
		res := New(gen).AnalyzeHistory(context.Background(), "Mia", newHistory(2, newest))

		assert.Equal(t, "Error analyzing history: timeout", res.String())
	})
}
