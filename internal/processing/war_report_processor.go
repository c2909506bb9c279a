package processing

import (
	"context"
	"fmt"
	"strconv"

	"torn_war_payouts/internal/app"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// WarReportProcessor runs the full pipeline: war report, roster, attack log
// (cached or live), contribution ledger, payout allocation
type WarReportProcessor struct {
	tornClient   TornClientInterface
	cache        CacheStoreInterface
	attackLog    *AttackLogService
	contribution *ContributionService
	payout       *PayoutService
	config       *app.Config
	ourFactionID int
}

// ProcessOptions controls a single pipeline run
type ProcessOptions struct {
	// ForceRefresh ignores any cached attack log and overwrites it
	ForceRefresh bool
}

// WarReportResult is the plain structured output handed to report
// consumers: the active ledger plus the payout breakdown
type WarReportResult struct {
	WarID               int
	War                 app.WarInfo
	OurFactionID        int
	OurFactionName      string
	OpponentFactionID   int
	OpponentFactionName string
	UniqueEvents        int
	Ledger              []app.MemberContribution
	Breakdown           *app.PayoutBreakdown
}

// NewWarReportProcessor creates a processor with interface dependencies for
// testability
func NewWarReportProcessor(tornClient TornClientInterface, cache CacheStoreInterface, config *app.Config) *WarReportProcessor {
	return &WarReportProcessor{
		tornClient:   tornClient,
		cache:        cache,
		attackLog:    NewAttackLogService(tornClient),
		contribution: NewContributionService(),
		payout:       NewPayoutService(),
		config:       config,
		ourFactionID: config.OurFactionID,
	}
}

// ensureOurFactionID resolves our faction ID from the API key when it is
// not configured
func (wp *WarReportProcessor) ensureOurFactionID(ctx context.Context) error {
	if wp.ourFactionID != 0 {
		return nil
	}

	log.Debug().Msg("Fetching our faction ID from API")
	faction, err := wp.tornClient.GetOwnProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve own faction: %w", err)
	}

	wp.ourFactionID = faction.FactionID
	log.Info().
		Int("faction_id", faction.FactionID).
		Str("faction_name", faction.FactionName).
		Msg("Detected our faction ID")
	return nil
}

// ProcessWar reconstructs the contribution ledger for one war and allocates
// the prize pool. A fetch failure aborts the run; no classification or
// allocation happens on partial data.
func (wp *WarReportProcessor) ProcessWar(ctx context.Context, warID int, prizeTotal decimal.Decimal, model app.PayoutModel, opts ProcessOptions) (*WarReportResult, error) {
	// Configuration errors fail before any fetching or money computation
	if err := wp.payout.ValidateModel(model, prizeTotal); err != nil {
		return nil, err
	}

	if err := wp.ensureOurFactionID(ctx); err != nil {
		return nil, err
	}

	log.Info().Int("war_id", warID).Msg("Processing war report")

	report, err := wp.tornClient.GetRankedWarReport(ctx, warID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch war report for war %d: %w", warID, err)
	}

	opponentID, err := wp.contribution.DetermineOpponentFaction(report, wp.ourFactionID)
	if err != nil {
		return nil, err
	}

	events, err := wp.loadOrFetchEvents(ctx, warID, report, opts)
	if err != nil {
		return nil, err
	}

	ledger := wp.contribution.BuildLedger(report, events, wp.ourFactionID, opponentID)
	active := wp.contribution.ActiveMembers(ledger, model)
	active = wp.contribution.SortByRespect(active)

	breakdown, err := wp.payout.CalculatePayouts(active, prizeTotal, model)
	if err != nil {
		return nil, err
	}

	result := &WarReportResult{
		WarID:               warID,
		War:                 report.War,
		OurFactionID:        wp.ourFactionID,
		OurFactionName:      factionName(report, wp.ourFactionID, "Your Faction"),
		OpponentFactionID:   opponentID,
		OpponentFactionName: factionName(report, opponentID, "Opponent"),
		UniqueEvents:        len(events),
		Ledger:              active,
		Breakdown:           breakdown,
	}

	log.Info().
		Int("war_id", warID).
		Int("active_members", len(active)).
		Int("unique_events", len(events)).
		Str("opponent", result.OpponentFactionName).
		Msg("Completed war report processing")

	return result, nil
}

// loadOrFetchEvents substitutes a complete cached attack log for a live
// fetch when available. Substitution is all-or-nothing; cache corruption
// falls back to a live fetch.
func (wp *WarReportProcessor) loadOrFetchEvents(ctx context.Context, warID int, report *app.RankedWarReport, opts ProcessOptions) ([]app.CombatEvent, error) {
	if !opts.ForceRefresh && wp.cache != nil {
		events, ok, err := wp.cache.LoadAttackLog(ctx, warID)
		if err != nil {
			log.Warn().Err(err).Int("war_id", warID).Msg("Attack log cache unreadable; refetching from API")
		} else if ok {
			log.Info().
				Int("war_id", warID).
				Int("cached_events", len(events)).
				Msg("Loaded attack log from cache")
			return events, nil
		}
	}

	events, err := wp.attackLog.FetchWarEvents(ctx, wp.ourFactionID, report.War.Start, report.War.End)
	if err != nil {
		return nil, err
	}

	if wp.cache != nil {
		if err := wp.cache.SaveAttackLog(ctx, warID, events); err != nil {
			// Cache write failures never fail the run
			log.Warn().Err(err).Int("war_id", warID).Msg("Failed to save attack log cache")
		}
	}

	return events, nil
}

func factionName(report *app.RankedWarReport, factionID int, fallback string) string {
	if faction, ok := report.Factions[strconv.Itoa(factionID)]; ok && faction.Name != "" {
		return faction.Name
	}
	return fallback
}
