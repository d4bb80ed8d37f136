package interview

import (
	"strings"
	"time"
)

// MaxAnswerLength bounds a single answer in runes.
const MaxAnswerLength = 20000

// UnansweredMarker stands in for the answer text of a skipped question.
const UnansweredMarker = "[unanswered]"

type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Answer struct {
	QuestionID string    `json:"question_id"`
	Text       string    `json:"text"`
	AnsweredAt time.Time `json:"answered_at"`
}

// TranscriptEntry pairs a question with the candidate's answer, if any.
type TranscriptEntry struct {
	Question Question `json:"question"`
	Answer   *Answer  `json:"answer,omitempty"`
}

// Answered reports whether the candidate responded to the question.
func (e TranscriptEntry) Answered() bool {
	return e.Answer != nil
}

// AnswerText returns the answer or the unanswered marker.
func (e TranscriptEntry) AnswerText() string {
	if e.Answer == nil {
		return UnansweredMarker
	}
	return e.Answer.Text
}

// Transcript is the ordered set of question/answer pairs submitted for scoring.
type Transcript []TranscriptEntry

// AnsweredCount returns how many entries carry an answer.
func (t Transcript) AnsweredCount() int {
	n := 0
	for _, e := range t {
		if e.Answered() {
			n++
		}
	}
	return n
}

func (t Transcript) clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	for i, e := range t {
		out[i] = TranscriptEntry{Question: e.Question}
		if e.Answer != nil {
			a := *e.Answer
			out[i].Answer = &a
		}
	}
	return out
}

func normalizeAnswer(text string) string {
	return strings.TrimSpace(text)
}
