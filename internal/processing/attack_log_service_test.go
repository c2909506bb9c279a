package processing

import (
	"context"
	"strings"
	"testing"

	"torn_war_payouts/internal/app"
	"torn_war_payouts/internal/config"
	"torn_war_payouts/internal/processing/mocks"
)

func noPauseFetchConfig() config.FetchConfig {
	cfg := config.DefaultFetchConfig
	cfg.PagePause = 0
	return cfg
}

func makeAttack(code string, ended int64) app.Attack {
	return app.Attack{
		Code:           code,
		TimestampEnded: ended,
		AttackerID:     100,
		DefenderID:     200,
		RankedWar:      1,
		Modifiers:      app.AttackModifiers{ChainBonus: 1},
	}
}

func TestFetchWarEventsMergesAndDeduplicatesOverlappingPages(t *testing.T) {
	// Two pages overlap on event X123; the final set must contain exactly one
	pages := []*app.AttackLogResponse{
		{
			Attacks: map[string]app.Attack{
				"1": makeAttack("A001", 1000),
				"2": makeAttack("X123", 1050),
			},
		},
		{
			Attacks: map[string]app.Attack{
				"2": makeAttack("X123", 1050),
				"3": makeAttack("B002", 1100),
			},
		},
		{Attacks: map[string]app.Attack{}},
	}

	pageIndex := 0
	client := &mocks.TornClient{
		GetAttackLogFunc: func(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error) {
			page := pages[pageIndex]
			pageIndex++
			return page, nil
		},
	}

	service := NewAttackLogServiceWithConfig(client, noPauseFetchConfig())
	events, err := service.FetchWarEvents(context.Background(), 12345, 1000, 2000)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("Expected 3 unique events, got %d", len(events))
	}

	seen := make(map[string]int)
	for _, event := range events {
		seen[event.Code]++
	}
	if seen["X123"] != 1 {
		t.Errorf("Expected exactly one X123 event, got %d", seen["X123"])
	}

	// Events must come back in chronological order
	for i := 1; i < len(events); i++ {
		if events[i].Ended < events[i-1].Ended {
			t.Errorf("Events out of order at index %d: %d before %d", i, events[i-1].Ended, events[i].Ended)
		}
	}
}

func TestFetchWarEventsPadsWindow(t *testing.T) {
	client := &mocks.TornClient{
		GetAttackLogFunc: func(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error) {
			return &app.AttackLogResponse{}, nil
		},
	}

	service := NewAttackLogServiceWithConfig(client, noPauseFetchConfig())
	if _, err := service.FetchWarEvents(context.Background(), 12345, 10000, 20000); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(client.AttackLogCalls) != 1 {
		t.Fatalf("Expected 1 API call, got %d", len(client.AttackLogCalls))
	}

	call := client.AttackLogCalls[0]
	if call.From != 10000-config.FetchWindowPaddingSeconds {
		t.Errorf("Expected from %d, got %d", 10000-config.FetchWindowPaddingSeconds, call.From)
	}
	if call.To != 20000+config.FetchWindowPaddingSeconds {
		t.Errorf("Expected to %d, got %d", 20000+config.FetchWindowPaddingSeconds, call.To)
	}
}

func TestFetchWarEventsTerminatesOnRepeatedTimestamp(t *testing.T) {
	// Every page repeats the same terminal timestamp; the loop must stop
	// rather than re-requesting the same page forever
	calls := 0
	client := &mocks.TornClient{
		GetAttackLogFunc: func(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error) {
			calls++
			if calls > 10 {
				t.Fatal("Pagination did not terminate")
			}
			return &app.AttackLogResponse{
				Attacks: map[string]app.Attack{
					"1": makeAttack("A001", from),
				},
			}, nil
		},
	}

	service := NewAttackLogServiceWithConfig(client, noPauseFetchConfig())
	events, err := service.FetchWarEvents(context.Background(), 12345, 1000, 100000)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if calls != 1 {
		t.Errorf("Expected pagination to stop after 1 call, got %d", calls)
	}
	if len(events) != 1 {
		t.Errorf("Expected 1 event, got %d", len(events))
	}
}

func TestFetchWarEventsStopsOnEmptyPage(t *testing.T) {
	client := &mocks.TornClient{
		GetAttackLogFunc: func(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error) {
			return &app.AttackLogResponse{}, nil
		},
	}

	service := NewAttackLogServiceWithConfig(client, noPauseFetchConfig())
	events, err := service.FetchWarEvents(context.Background(), 12345, 1000, 2000)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected no events, got %d", len(events))
	}
	if len(client.AttackLogCalls) != 1 {
		t.Errorf("Expected exactly 1 call, got %d", len(client.AttackLogCalls))
	}
}

func TestFetchWarEventsAbortsOnPageFailure(t *testing.T) {
	calls := 0
	client := &mocks.TornClient{
		GetAttackLogFunc: func(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error) {
			calls++
			if calls == 1 {
				return &app.AttackLogResponse{
					Attacks: map[string]app.Attack{"1": makeAttack("A001", 1500)},
				}, nil
			}
			return nil, context.DeadlineExceeded
		},
	}

	service := NewAttackLogServiceWithConfig(client, noPauseFetchConfig())
	events, err := service.FetchWarEvents(context.Background(), 12345, 1000, 2000)
	if err == nil {
		t.Fatal("Expected error from failed page, got nil")
	}
	if !strings.Contains(err.Error(), "failed to fetch attack log page") {
		t.Errorf("Unexpected error message: %v", err)
	}
	if events != nil {
		t.Errorf("Expected no partial events on failure, got %d", len(events))
	}
}

func TestFetchWarEventsIncludesAssists(t *testing.T) {
	served := false
	client := &mocks.TornClient{
		GetAttackLogFunc: func(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error) {
			if served {
				return &app.AttackLogResponse{}, nil
			}
			served = true
			return &app.AttackLogResponse{
				Attacks: map[string]app.Attack{"1": makeAttack("A001", 1200)},
				Assists: map[string]app.Assist{
					"9": {Code: "S001", TimestampEnded: 1300, AttackerID: 300, AttackerName: "Helper", AttackerFaction: 12345, RankedWar: 1},
				},
			}, nil
		},
	}

	service := NewAttackLogServiceWithConfig(client, noPauseFetchConfig())
	events, err := service.FetchWarEvents(context.Background(), 12345, 1000, 2000)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	var foundAssist bool
	for _, event := range events {
		if event.Kind == app.EventKindAssist {
			foundAssist = true
			if event.Result != app.ResultAssist {
				t.Errorf("Expected assist result %q, got %q", app.ResultAssist, event.Result)
			}
		}
	}
	if !foundAssist {
		t.Error("Expected an assist event in the merged set")
	}
}

func TestDeduplicateEventsKeepsLastWrite(t *testing.T) {
	events := []app.CombatEvent{
		{Code: "X1", Ended: 100, RespectGain: 1.0},
		{Code: "X1", Ended: 100, RespectGain: 2.5},
	}

	unique := DeduplicateEvents(events)
	if len(unique) != 1 {
		t.Fatalf("Expected 1 unique event, got %d", len(unique))
	}
	if unique[0].RespectGain != 2.5 {
		t.Errorf("Expected last write to win (respect 2.5), got %v", unique[0].RespectGain)
	}
}
