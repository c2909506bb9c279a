package processing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"torn_war_payouts/internal/app"
	"torn_war_payouts/internal/config"

	"github.com/rs/zerolog/log"
)

// AttackLogService fetches the complete combat event set for a war window
// from the paginated attack log, merging pages and removing duplicates
// caused by overlapping pages.
type AttackLogService struct {
	client TornClientInterface
	config config.FetchConfig
}

// NewAttackLogService creates a new attack log service
func NewAttackLogService(client TornClientInterface) *AttackLogService {
	return NewAttackLogServiceWithConfig(client, config.DefaultFetchConfig)
}

// NewAttackLogServiceWithConfig creates an attack log service with explicit
// pacing, used by tests to drop the inter-page pause
func NewAttackLogServiceWithConfig(client TornClientInterface, cfg config.FetchConfig) *AttackLogService {
	return &AttackLogService{
		client: client,
		config: cfg,
	}
}

// FetchWarEvents retrieves all combat events for a faction within the war
// timeframe. The window is padded on both sides to tolerate clock skew
// between the war report and attack log timestamps. A single page failure
// aborts the whole fetch.
func (als *AttackLogService) FetchWarEvents(ctx context.Context, factionID int, warStart, warEnd int64) ([]app.CombatEvent, error) {
	from := warStart - als.config.WindowPadding
	to := warEnd + als.config.WindowPadding

	log.Info().
		Int("faction_id", factionID).
		Int64("fetch_from", from).
		Int64("fetch_to", to).
		Str("fetch_from_str", time.Unix(from, 0).Format("2006-01-02 15:04:05")).
		Str("fetch_to_str", time.Unix(to, 0).Format("2006-01-02 15:04:05")).
		Msg("Fetching attack log for war")

	var collected []app.CombatEvent
	cursor := from
	pages := 0

	for cursor < to {
		logResp, err := als.client.GetAttackLog(ctx, factionID, cursor, to)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch attack log page at cursor %d: %w", cursor, err)
		}
		pages++

		pageEvents := mergePageEvents(logResp)
		if len(pageEvents) == 0 {
			log.Debug().Int64("cursor", cursor).Msg("Empty attack log page, window exhausted")
			break
		}

		collected = append(collected, pageEvents...)

		maxEnded := cursor
		for _, event := range pageEvents {
			if event.Ended > maxEnded {
				maxEnded = event.Ended
			}
		}

		// Termination guard: a page whose events all share the terminal
		// timestamp would otherwise be re-requested forever
		if maxEnded <= cursor {
			log.Debug().
				Int64("cursor", cursor).
				Int("events_in_page", len(pageEvents)).
				Msg("Cursor did not advance, stopping pagination")
			break
		}

		log.Debug().
			Int("events_in_page", len(pageEvents)).
			Int64("next_cursor", maxEnded).
			Int("total_events_so_far", len(collected)).
			Msg("Advancing attack log cursor")

		cursor = maxEnded

		if als.config.PagePause > 0 && cursor < to {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(als.config.PagePause):
			}
		}
	}

	events := DeduplicateEvents(collected)

	log.Info().
		Int("pages_fetched", pages).
		Int("raw_events", len(collected)).
		Int("unique_events", len(events)).
		Msg("Completed attack log fetch")

	return events, nil
}

// mergePageEvents normalizes one page's attacks and assists into a single
// event list
func mergePageEvents(page *app.AttackLogResponse) []app.CombatEvent {
	events := make([]app.CombatEvent, 0, len(page.Attacks)+len(page.Assists))
	for _, attack := range page.Attacks {
		events = append(events, attack.ToCombatEvent())
	}
	for _, assist := range page.Assists {
		events = append(events, assist.ToCombatEvent())
	}
	return events
}

// DeduplicateEvents collapses duplicate event codes to a single canonical
// record. Last write wins: pages are requested in increasing-time order, so
// a later observation of the same code is at least as complete. The result
// is sorted chronologically, with the code as tiebreaker for determinism.
func DeduplicateEvents(events []app.CombatEvent) []app.CombatEvent {
	byCode := make(map[string]app.CombatEvent, len(events))
	for _, event := range events {
		byCode[event.Code] = event
	}

	unique := make([]app.CombatEvent, 0, len(byCode))
	for _, event := range byCode {
		unique = append(unique, event)
	}

	sort.Slice(unique, func(i, j int) bool {
		if unique[i].Ended != unique[j].Ended {
			return unique[i].Ended < unique[j].Ended
		}
		return unique[i].Code < unique[j].Code
	})

	return unique
}
