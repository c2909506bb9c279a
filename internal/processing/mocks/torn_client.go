// Package mocks provides hand-rolled test doubles for the pipeline's
// interface dependencies.
package mocks

import (
	"context"
	"fmt"

	"torn_war_payouts/internal/app"
)

// AttackLogCall records the arguments of one GetAttackLog invocation
type AttackLogCall struct {
	FactionID int
	From      int64
	To        int64
}

// TornClient is a configurable mock of processing.TornClientInterface
type TornClient struct {
	GetRankedWarReportFunc func(ctx context.Context, warID int) (*app.RankedWarReport, error)
	GetOwnProfileFunc      func(ctx context.Context) (*app.ProfileFaction, error)
	GetAttackLogFunc       func(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error)

	AttackLogCalls []AttackLogCall
}

func (m *TornClient) GetRankedWarReport(ctx context.Context, warID int) (*app.RankedWarReport, error) {
	if m.GetRankedWarReportFunc == nil {
		return nil, fmt.Errorf("GetRankedWarReport not configured")
	}
	return m.GetRankedWarReportFunc(ctx, warID)
}

func (m *TornClient) GetOwnProfile(ctx context.Context) (*app.ProfileFaction, error) {
	if m.GetOwnProfileFunc == nil {
		return nil, fmt.Errorf("GetOwnProfile not configured")
	}
	return m.GetOwnProfileFunc(ctx)
}

func (m *TornClient) GetAttackLog(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error) {
	m.AttackLogCalls = append(m.AttackLogCalls, AttackLogCall{FactionID: factionID, From: from, To: to})
	if m.GetAttackLogFunc == nil {
		return nil, fmt.Errorf("GetAttackLog not configured")
	}
	return m.GetAttackLogFunc(ctx, factionID, from, to)
}

// CacheStore is a configurable mock of processing.CacheStoreInterface
type CacheStore struct {
	LoadAttackLogFunc func(ctx context.Context, warID int) ([]app.CombatEvent, bool, error)
	SaveAttackLogFunc func(ctx context.Context, warID int, events []app.CombatEvent) error

	SavedEvents map[int][]app.CombatEvent
	LoadCalls   int
	SaveCalls   int
}

func (m *CacheStore) LoadAttackLog(ctx context.Context, warID int) ([]app.CombatEvent, bool, error) {
	m.LoadCalls++
	if m.LoadAttackLogFunc == nil {
		return nil, false, nil
	}
	return m.LoadAttackLogFunc(ctx, warID)
}

func (m *CacheStore) SaveAttackLog(ctx context.Context, warID int, events []app.CombatEvent) error {
	m.SaveCalls++
	if m.SavedEvents == nil {
		m.SavedEvents = make(map[int][]app.CombatEvent)
	}
	m.SavedEvents[warID] = events
	if m.SaveAttackLogFunc == nil {
		return nil
	}
	return m.SaveAttackLogFunc(ctx, warID, events)
}
