package pipeline

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSuperseded is returned when a newer run started before this one finished.
var ErrSuperseded = errors.New("superseded by a newer request")

// Token identifies one run within a Runner.
type Token struct {
	ID         string `json:"id"`
	Generation uint64 `json:"generation"`
}

// Runner keeps the most recently started run authoritative. Results of runs
// that were overtaken are dropped, never merged.
type Runner struct {
	mu        sync.Mutex
	latest    uint64
	committed *Output
	token     Token
}

// Begin starts a new generation and supersedes every earlier one.
func (r *Runner) Begin() Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest++
	return Token{ID: uuid.NewString(), Generation: r.latest}
}

// Commit stores out if tok is still the latest generation.
func (r *Runner) Commit(tok Token, out Output) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok.Generation != r.latest {
		return ErrSuperseded
	}
	r.committed = &out
	r.token = tok
	return nil
}

// Latest returns the last committed output.
func (r *Runner) Latest() (Output, Token, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.committed == nil {
		return Output{}, Token{}, false
	}
	return *r.committed, r.token, true
}
