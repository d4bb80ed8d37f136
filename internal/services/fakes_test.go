package services

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"nihith303/interview-ace/internal/interview"
)

// fakeGenerator answers question prompts and scoring prompts from separate
// scripted replies.
type fakeGenerator struct {
	mu        sync.Mutex
	questions []fakeReply
	scores    []fakeReply
	prompts   []Prompt
}

type fakeReply struct {
	text  string
	err   error
	block chan struct{}
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt Prompt) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	queue := &f.scores
	if strings.Contains(prompt.User, "Write exactly") {
		queue = &f.questions
	}
	if len(*queue) == 0 {
		f.mu.Unlock()
		return "", markTransient(context.DeadlineExceeded)
	}
	reply := (*queue)[0]
	if len(*queue) > 1 {
		*queue = (*queue)[1:]
	}
	f.mu.Unlock()

	if reply.block != nil {
		select {
		case <-reply.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply.text, reply.err
}

func (f *fakeGenerator) lastPrompt() Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func testPrompts(t *testing.T) *PromptBuilder {
	t.Helper()
	settings, err := LoadPromptSettings("")
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}
	return NewPromptBuilder(settings)
}

func testResumeFile() interview.ResumeFile {
	data := []byte("%PDF-1.4 test resume")
	return interview.ResumeFile{Name: "cv.pdf", DeclaredType: interview.MediaTypePDF, Size: int64(len(data)), Data: data}
}

func testConfig(t *testing.T) interview.SessionConfig {
	t.Helper()
	content, err := interview.Ingest(testResumeFile())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return interview.SessionConfig{Role: "Backend Engineer", Company: "Acme", Resume: content}
}

func dataURI(mediaType string, data []byte) interview.ResumeContent {
	return interview.ResumeContent("data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
