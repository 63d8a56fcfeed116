// Package hook adapts the router to the host transport: one JSON event
// read from stdin, rendered activation text written to stdout. The
// ledger is updated only after output has been emitted, so a turn that
// fails earlier leaves no trace and is safely retried by the host.
package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	skillrouter "github.com/flexigpt/skillrouter-go"
	"github.com/flexigpt/skillrouter-go/spec"
)

// Event is the per-turn record the host writes to stdin. Candidates is
// optional: when present the host already scored the request and the
// configured scorer is bypassed.
type Event struct {
	ConversationID string                 `json:"conversation_id"`
	Prompt         string                 `json:"prompt"`
	Candidates     []spec.ScoredCandidate `json:"candidates,omitempty"`
}

// ReadEvent decodes exactly one event.
func ReadEvent(r io.Reader) (Event, error) {
	var ev Event
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("decode hook event: %w", err)
	}
	if strings.TrimSpace(ev.ConversationID) == "" {
		return Event{}, spec.ErrConversationRequired
	}
	return ev, nil
}

// Run processes one turn: score (unless the event carries candidates),
// decide, render, emit, commit.
func Run(ctx context.Context, rt *skillrouter.Runtime, in io.Reader, out io.Writer) error {
	ev, err := ReadEvent(in)
	if err != nil {
		return err
	}

	convID := spec.ConversationID(ev.ConversationID)

	cands := ev.Candidates
	if len(cands) == 0 {
		cands, err = rt.ScoreCandidates(ctx, ev.Prompt)
		if err != nil {
			return err
		}
	}

	res, err := rt.DecideTurn(ctx, convID, cands)
	if err != nil {
		return err
	}

	rendered, err := rt.RenderActivation(ctx, res)
	if err != nil {
		return err
	}

	if rendered != "" {
		if _, err := io.WriteString(out, rendered+"\n"); err != nil {
			return err
		}
	}

	return rt.Commit(convID, res)
}
