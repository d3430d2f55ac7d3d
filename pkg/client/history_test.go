package client

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeAPI struct {
	historyFn    func(ctx context.Context) ([]ChatTurn, error)
	deleteFn     func(ctx context.Context) error
	historyCalls int
	deleteCalls  int
}

func (f *fakeAPI) History(ctx context.Context) ([]ChatTurn, error) {
	f.historyCalls++
	if f.historyFn == nil {
		return nil, errors.New("no history fn")
	}
	return f.historyFn(ctx)
}

func (f *fakeAPI) DeleteHistory(ctx context.Context) error {
	f.deleteCalls++
	if f.deleteFn == nil {
		return errors.New("no delete fn")
	}
	return f.deleteFn(ctx)
}

func confirmYes(ctx context.Context) (bool, error) { return true, nil }
func confirmNo(ctx context.Context) (bool, error)  { return false, nil }

func sampleTurns() []ChatTurn {
	return []ChatTurn{
		{
			ID:        "1",
			Message:   "hi",
			Response:  "hello",
			Model:     "gemini",
			Timestamp: time.Date(2024, 4, 4, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestLoad_Success_ReplacesTurnsInServerOrder(t *testing.T) {
	turns := []ChatTurn{
		{ID: "2", Message: "second", Response: "b", Model: "gemini"},
		{ID: "1", Message: "first", Response: "a", Model: "gemini"},
	}
	api := &fakeAPI{historyFn: func(ctx context.Context) ([]ChatTurn, error) {
		return turns, nil
	}}
	view := NewHistoryView(api, confirmYes)

	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	state := view.Snapshot()
	if len(state.Turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(state.Turns))
	}
	// Server order preserved, no client-side re-sort
	if state.Turns[0].ID != "2" || state.Turns[1].ID != "1" {
		t.Errorf("Turn order changed: got %q then %q", state.Turns[0].ID, state.Turns[1].ID)
	}
	if state.Err != "" {
		t.Errorf("Expected no error, got %q", state.Err)
	}
	if state.Loading {
		t.Error("Loading should be cleared after Load")
	}
	if api.historyCalls != 1 {
		t.Errorf("Expected exactly 1 history request, got %d", api.historyCalls)
	}
}

func TestLoad_Success_ClearsPriorError(t *testing.T) {
	api := &fakeAPI{historyFn: func(ctx context.Context) ([]ChatTurn, error) {
		return nil, errors.New("network down")
	}}
	view := NewHistoryView(api, confirmYes)

	view.Load(context.Background())
	if view.Snapshot().Err != LoadErrorMessage {
		t.Fatalf("Expected load error to be set first")
	}

	api.historyFn = func(ctx context.Context) ([]ChatTurn, error) {
		return sampleTurns(), nil
	}
	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := view.Snapshot().Err; got != "" {
		t.Errorf("Expected error cleared after successful load, got %q", got)
	}
}

func TestLoad_Failure_KeepsExistingTurns(t *testing.T) {
	api := &fakeAPI{historyFn: func(ctx context.Context) ([]ChatTurn, error) {
		return sampleTurns(), nil
	}}
	view := NewHistoryView(api, confirmYes)
	view.Load(context.Background())

	api.historyFn = func(ctx context.Context) ([]ChatTurn, error) {
		return nil, errors.New("server error")
	}
	if err := view.Load(context.Background()); err == nil {
		t.Fatal("Expected Load to return the error")
	}

	state := view.Snapshot()
	if len(state.Turns) != 1 {
		t.Errorf("Failed load must not clear existing turns, got %d", len(state.Turns))
	}
	if state.Err != LoadErrorMessage {
		t.Errorf("Expected %q, got %q", LoadErrorMessage, state.Err)
	}
	if state.Loading {
		t.Error("Loading should be cleared after a failed Load")
	}
}

func TestLoad_Failure_FromInitialState(t *testing.T) {
	api := &fakeAPI{historyFn: func(ctx context.Context) ([]ChatTurn, error) {
		return nil, errors.New("connection refused")
	}}
	view := NewHistoryView(api, confirmYes)

	view.Load(context.Background())

	state := view.Snapshot()
	if len(state.Turns) != 0 {
		t.Errorf("Expected empty turns, got %d", len(state.Turns))
	}
	if state.Err != LoadErrorMessage {
		t.Errorf("Expected %q, got %q", LoadErrorMessage, state.Err)
	}
	if state.CanDelete {
		t.Error("Delete must be disabled while turns is empty")
	}
}

func TestLoad_ShowsLoadingWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{historyFn: func(ctx context.Context) ([]ChatTurn, error) {
		close(entered)
		<-release
		return sampleTurns(), nil
	}}
	view := NewHistoryView(api, confirmYes)

	done := make(chan struct{})
	go func() {
		view.Load(context.Background())
		close(done)
	}()

	<-entered
	if !view.Snapshot().Loading {
		t.Error("Expected Loading true while fetch is in flight")
	}
	if got := view.Render(); !strings.Contains(got, "Loading") {
		t.Errorf("Expected loading indicator, got %q", got)
	}

	close(release)
	<-done
	if view.Snapshot().Loading {
		t.Error("Expected Loading false after fetch completes")
	}
}

func TestDeleteAll_NoopWhenEmpty(t *testing.T) {
	confirmCalls := 0
	api := &fakeAPI{}
	view := NewHistoryView(api, func(ctx context.Context) (bool, error) {
		confirmCalls++
		return true, nil
	})

	if err := view.DeleteAll(context.Background()); err != nil {
		t.Fatalf("DeleteAll on empty history should be a no-op, got %v", err)
	}
	if confirmCalls != 0 {
		t.Error("Confirmation must not be requested while history is empty")
	}
	if api.deleteCalls != 0 {
		t.Error("No network call expected while history is empty")
	}
}

func TestDeleteAll_DeclinedConfirmation(t *testing.T) {
	api := &fakeAPI{historyFn: func(ctx context.Context) ([]ChatTurn, error) {
		return sampleTurns(), nil
	}}
	view := NewHistoryView(api, confirmNo)
	view.Load(context.Background())

	if err := view.DeleteAll(context.Background()); err != nil {
		t.Fatalf("Declined delete should not error, got %v", err)
	}

	state := view.Snapshot()
	if api.deleteCalls != 0 {
		t.Error("Declining must not issue a network call")
	}
	if len(state.Turns) != 1 {
		t.Error("Declining must not change turns")
	}
	if state.Err != "" {
		t.Errorf("Declining must not change error, got %q", state.Err)
	}
}

func TestDeleteAll_ConfirmationError(t *testing.T) {
	api := &fakeAPI{historyFn: func(ctx context.Context) ([]ChatTurn, error) {
		return sampleTurns(), nil
	}}
	view := NewHistoryView(api, func(ctx context.Context) (bool, error) {
		return false, context.Canceled
	})
	view.Load(context.Background())

	if err := view.DeleteAll(context.Background()); err == nil {
		t.Fatal("Expected confirmation error to propagate")
	}
	if api.deleteCalls != 0 {
		t.Error("Failed confirmation must not issue a network call")
	}
}

func TestDeleteAll_Success(t *testing.T) {
	api := &fakeAPI{
		historyFn: func(ctx context.Context) ([]ChatTurn, error) {
			return sampleTurns(), nil
		},
		deleteFn: func(ctx context.Context) error { return nil },
	}
	view := NewHistoryView(api, confirmYes)
	view.Load(context.Background())

	if err := view.DeleteAll(context.Background()); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	state := view.Snapshot()
	if len(state.Turns) != 0 {
		t.Errorf("Expected empty turns after delete, got %d", len(state.Turns))
	}
	if state.Err != "" {
		t.Errorf("Expected error cleared after delete, got %q", state.Err)
	}
	if state.CanDelete {
		t.Error("Delete must be disabled after emptying the history")
	}
	if api.deleteCalls != 1 {
		t.Errorf("Expected exactly 1 delete request, got %d", api.deleteCalls)
	}
}

func TestDeleteAll_Failure_KeepsTurns(t *testing.T) {
	api := &fakeAPI{
		historyFn: func(ctx context.Context) ([]ChatTurn, error) {
			return sampleTurns(), nil
		},
		deleteFn: func(ctx context.Context) error { return errors.New("server error") },
	}
	view := NewHistoryView(api, confirmYes)
	view.Load(context.Background())

	if err := view.DeleteAll(context.Background()); err == nil {
		t.Fatal("Expected DeleteAll to return the error")
	}

	state := view.Snapshot()
	if len(state.Turns) != 1 {
		t.Errorf("Failed delete must not change turns, got %d", len(state.Turns))
	}
	if state.Err != DeleteErrorMessage {
		t.Errorf("Expected %q, got %q", DeleteErrorMessage, state.Err)
	}
}

func TestRender_SingleTurn(t *testing.T) {
	api := &fakeAPI{historyFn: func(ctx context.Context) ([]ChatTurn, error) {
		return sampleTurns(), nil
	}}
	view := NewHistoryView(api, confirmYes)
	view.Load(context.Background())

	out := view.Render()
	if !strings.Contains(out, "hi") || !strings.Contains(out, "hello") {
		t.Errorf("Expected message and response in render, got %q", out)
	}
	if !strings.Contains(out, "gemini") {
		t.Errorf("Expected model identifier in render, got %q", out)
	}
	if !strings.Contains(out, "Apr 4, 2024 12:00 PM") {
		t.Errorf("Expected formatted timestamp, got %q", out)
	}
	if !view.Snapshot().CanDelete {
		t.Error("Delete must be enabled with one turn loaded")
	}
}

func TestRender_EmptyHistory(t *testing.T) {
	api := &fakeAPI{historyFn: func(ctx context.Context) ([]ChatTurn, error) {
		return []ChatTurn{}, nil
	}}
	view := NewHistoryView(api, confirmYes)
	view.Load(context.Background())

	if out := view.Render(); !strings.Contains(out, EmptyHistoryText) {
		t.Errorf("Expected empty-state message, got %q", out)
	}
	if view.Snapshot().CanDelete {
		t.Error("Delete must be disabled with an empty history")
	}
}

func TestRender_ErrorBannerCoexistsWithList(t *testing.T) {
	api := &fakeAPI{
		historyFn: func(ctx context.Context) ([]ChatTurn, error) {
			return sampleTurns(), nil
		},
		deleteFn: func(ctx context.Context) error { return errors.New("boom") },
	}
	view := NewHistoryView(api, confirmYes)
	view.Load(context.Background())
	view.DeleteAll(context.Background())

	out := view.Render()
	if !strings.Contains(out, DeleteErrorMessage) {
		t.Errorf("Expected error banner, got %q", out)
	}
	if !strings.Contains(out, "hi") {
		t.Errorf("Banner must coexist with the stale list, got %q", out)
	}
}
