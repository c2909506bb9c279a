package torn

import (
	"context"

	"torn_war_payouts/internal/app"
)

// TornAPI defines the interface for interacting with the Torn API
// This separates infrastructure concerns from business logic
type TornAPI interface {
	// Core API endpoints
	GetRankedWarReport(ctx context.Context, warID int) (*app.RankedWarReport, error)
	GetOwnProfile(ctx context.Context) (*app.ProfileFaction, error)
	GetAttackLog(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error)

	// API call tracking
	GetAPICallCount() int64
	IncrementAPICall()
	ResetAPICallCount()
}
