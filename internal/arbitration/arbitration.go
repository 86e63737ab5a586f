// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arbitration picks exactly one catalog entry per line item. It
// prefers the decision of an external verification service but falls back
// deterministically to the top-scored retrieval candidate on any failure:
// timeout, malformed output, transport error, or an answer outside the
// candidate set.
package arbitration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/estimate-engine/internal/retrieval"
	"github.com/pdiddy/estimate-engine/pkg/types"
)

// ErrNoCandidates is returned by Choose when the candidate list is empty.
var ErrNoCandidates = errors.New("no candidates to arbitrate")

// fallbackRationale is recorded when the verifier could not be used.
const fallbackRationale = "fallback: verification unavailable"

const defaultTimeout = 30 * time.Second

// Request is the verification call payload: the line item's text and
// unit plus everything the verifier needs to judge each candidate.
type Request struct {
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Candidates  []CandidateInfo `json:"candidates"`
}

// CandidateInfo describes one candidate to the verifier.
type CandidateInfo struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Unit        string            `json:"unit"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Composition string            `json:"composition,omitempty"`
}

// Response is a successful verification answer.
type Response struct {
	ChosenCode string `json:"chosen_code"`
	Rationale  string `json:"rationale"`
}

// VerificationError is the typed failure of a verification call. It is
// always recovered locally by the fallback path and never escapes the
// arbitration stage.
type VerificationError struct {
	Reason string
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verification failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("verification failed (%s)", e.Reason)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// Client is the external verification collaborator. Verify returns a
// *VerificationError on any failure.
type Client interface {
	Verify(ctx context.Context, req Request) (Response, error)
}

// Stage arbitrates candidates through a Client with a bounded timeout.
type Stage struct {
	client  Client
	timeout time.Duration
}

// NewStage creates an arbitration stage. A nil client means verification
// is disabled and every item takes the deterministic fallback.
func NewStage(client Client, timeout time.Duration) *Stage {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Stage{client: client, timeout: timeout}
}

// Choose selects one catalog entry for the line item. The candidate list
// must be non-empty; callers route zero-candidate items into the warning
// path before this stage.
func (s *Stage) Choose(ctx context.Context, item types.LineItem, candidates []retrieval.Candidate) (types.MatchedItem, error) {
	if len(candidates) == 0 {
		return types.MatchedItem{}, fmt.Errorf("choosing for %q: %w", item.Name, ErrNoCandidates)
	}

	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scores[c.Entry.Code] = c.Composite
	}

	match := types.MatchedItem{
		Item:            item,
		CandidateScores: scores,
	}

	resp, err := s.verify(ctx, item, candidates)
	if err == nil {
		match.ChosenCode = resp.ChosenCode
		match.Rationale = resp.Rationale
		if match.Rationale == "" {
			match.Rationale = "verified"
		}
		return match, nil
	}

	best := retrieval.Best(candidates)
	match.ChosenCode = best.Entry.Code
	match.Rationale = fallbackRationale
	return match, nil
}

// verify calls the client and validates the answer against the candidate
// set. An out-of-set code is a failure: an advisory answer that ignores
// the offered candidates is not trusted.
func (s *Stage) verify(ctx context.Context, item types.LineItem, candidates []retrieval.Candidate) (Response, error) {
	if s.client == nil {
		return Response{}, &VerificationError{Reason: "disabled"}
	}

	req := Request{
		Description: item.Name,
		Unit:        item.Unit,
		Candidates:  make([]CandidateInfo, 0, len(candidates)),
	}
	for _, c := range candidates {
		req.Candidates = append(req.Candidates, CandidateInfo{
			Code:        c.Entry.Code,
			Name:        c.Entry.Name,
			Unit:        c.Entry.Unit,
			Parameters:  c.Entry.Parameters,
			Composition: c.Entry.Composition,
		})
	}

	vctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Verify(vctx, req)
	if err != nil {
		return Response{}, err
	}

	for _, c := range candidates {
		if c.Entry.Code == resp.ChosenCode {
			return resp, nil
		}
	}
	return Response{}, &VerificationError{
		Reason: fmt.Sprintf("code %q not among candidates", resp.ChosenCode),
	}
}
