package processing

import (
	"context"

	"torn_war_payouts/internal/app"
)

// TornClientInterface defines the Torn API client methods used by the
// war report pipeline
type TornClientInterface interface {
	GetRankedWarReport(ctx context.Context, warID int) (*app.RankedWarReport, error)
	GetOwnProfile(ctx context.Context) (*app.ProfileFaction, error)
	GetAttackLog(ctx context.Context, factionID int, from, to int64) (*app.AttackLogResponse, error)
}

// CacheStoreInterface defines the attack log cache used by the pipeline.
// A cache hit substitutes for an entire fetch; there is no partial merge.
type CacheStoreInterface interface {
	LoadAttackLog(ctx context.Context, warID int) ([]app.CombatEvent, bool, error)
	SaveAttackLog(ctx context.Context, warID int, events []app.CombatEvent) error
}
