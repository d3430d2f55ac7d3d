package client

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// User-facing messages. Every underlying failure cause collapses to one of
// these two; diagnostic detail goes to the log only.
const (
	LoadErrorMessage   = "Failed to fetch chat history"
	DeleteErrorMessage = "Failed to delete chat history"
	EmptyHistoryText   = "No chat history available"
)

// HistoryAPI is the slice of Client the history view needs.
type HistoryAPI interface {
	History(ctx context.Context) ([]ChatTurn, error)
	DeleteHistory(ctx context.Context) error
}

// ConfirmFunc asks the user to confirm a destructive action. It runs through
// the same asynchronous flow as the network calls, so views can be tested
// without a real modal. Returning false or an error aborts the action.
type ConfirmFunc func(ctx context.Context) (bool, error)

// HistoryState is an immutable snapshot of the view.
type HistoryState struct {
	Turns     []ChatTurn
	Loading   bool
	Err       string
	CanDelete bool
}

// HistoryView drives the chat-history screen: fetch-on-open, render, and
// confirmed bulk delete. Load and DeleteAll serialize behind an operation
// lock, so overlapping calls run one at a time and each state transition
// reflects exactly one completed operation.
type HistoryView struct {
	opMu sync.Mutex // serializes Load and DeleteAll

	mu      sync.Mutex // guards the fields below
	turns   []ChatTurn
	loading bool
	errMsg  string

	api     HistoryAPI
	confirm ConfirmFunc
}

func NewHistoryView(api HistoryAPI, confirm ConfirmFunc) *HistoryView {
	return &HistoryView{api: api, confirm: confirm}
}

// Load fetches the full turn list. On success the list replaces the current
// one and any error banner clears; on failure the current list is kept and
// the banner shows the fixed load-error message. Exactly one request is
// issued per call.
func (v *HistoryView) Load(ctx context.Context) error {
	v.opMu.Lock()
	defer v.opMu.Unlock()

	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	turns, err := v.api.History(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false

	if err != nil {
		log.Printf("Error fetching chat history: %v", err)
		v.errMsg = LoadErrorMessage
		return err
	}

	v.turns = turns
	v.errMsg = ""
	return nil
}

// DeleteAll removes the caller's entire history after confirmation. It is a
// no-op while the list is empty. Declining the confirmation issues no request
// and changes no state. On success the list empties and any error banner
// clears; on failure the list is kept and the banner shows the fixed
// delete-error message.
func (v *HistoryView) DeleteAll(ctx context.Context) error {
	v.opMu.Lock()
	defer v.opMu.Unlock()

	v.mu.Lock()
	empty := len(v.turns) == 0
	v.mu.Unlock()
	if empty {
		return nil
	}

	ok, err := v.confirm(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	err = v.api.DeleteHistory(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		log.Printf("Error deleting chat history: %v", err)
		v.errMsg = DeleteErrorMessage
		return err
	}

	v.turns = []ChatTurn{}
	v.errMsg = ""
	return nil
}

// Snapshot returns a copy of the current view state.
func (v *HistoryView) Snapshot() HistoryState {
	v.mu.Lock()
	defer v.mu.Unlock()

	turns := make([]ChatTurn, len(v.turns))
	copy(turns, v.turns)

	return HistoryState{
		Turns:     turns,
		Loading:   v.loading,
		Err:       v.errMsg,
		CanDelete: len(v.turns) > 0,
	}
}

// Render produces a text rendering of the view: a loading indicator while a
// fetch is in flight, otherwise an optional error banner above either the
// empty state or the ordered turn list.
func (v *HistoryView) Render() string {
	state := v.Snapshot()

	if state.Loading {
		return "Loading chat history...\n"
	}

	var sb strings.Builder
	if state.Err != "" {
		fmt.Fprintf(&sb, "⚠ %s\n\n", state.Err)
	}

	if len(state.Turns) == 0 {
		sb.WriteString(EmptyHistoryText + "\n")
		return sb.String()
	}

	for _, turn := range state.Turns {
		fmt.Fprintf(&sb, "[%s] You: %s\n", formatTimestamp(turn.Timestamp), turn.Message)
		fmt.Fprintf(&sb, "%s: %s\n\n", turn.Model, turn.Response)
	}
	return sb.String()
}
