package processing

import (
	"fmt"
	"sort"
	"strconv"

	"torn_war_payouts/internal/app"

	"github.com/rs/zerolog/log"
)

// ContributionService walks the deduplicated combat event set and produces
// the per-member contribution ledger
type ContributionService struct{}

// NewContributionService creates a new contribution service
func NewContributionService() *ContributionService {
	return &ContributionService{}
}

// DetermineOpponentFaction scans the two faction identifiers present in the
// war report and returns the one that is not ours
func (cs *ContributionService) DetermineOpponentFaction(report *app.RankedWarReport, ourFactionID int) (int, error) {
	ids := make([]int, 0, len(report.Factions))
	for idStr := range report.Factions {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return 0, fmt.Errorf("invalid faction id %q in war report: %w", idStr, err)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if id != ourFactionID {
			return id, nil
		}
	}

	return 0, fmt.Errorf("could not determine opponent faction: our faction %d not matched against war report", ourFactionID)
}

// BuildLedger seeds the ledger from the war roster and credits each event
// according to the classification rules. The returned slice preserves
// insertion order: roster members by ascending ID, then former members in
// first-seen order.
func (cs *ContributionService) BuildLedger(report *app.RankedWarReport, events []app.CombatEvent, ourFactionID, opponentFactionID int) []app.MemberContribution {
	index := make(map[int]*app.MemberContribution)
	var order []int

	// Seed from the known war roster so members with zero contribution
	// still have a baseline entry before filtering
	if ours, ok := report.Factions[strconv.Itoa(ourFactionID)]; ok {
		memberIDs := make([]int, 0, len(ours.Members))
		for idStr := range ours.Members {
			if id, err := strconv.Atoi(idStr); err == nil {
				memberIDs = append(memberIDs, id)
			}
		}
		sort.Ints(memberIDs)

		for _, id := range memberIDs {
			member := ours.Members[strconv.Itoa(id)]
			index[id] = &app.MemberContribution{ID: id, Name: member.Name}
			order = append(order, id)
		}
	}

	log.Info().
		Int("roster_members", len(order)).
		Int("events", len(events)).
		Msg("Classifying combat events")

	credit := func(memberID int, name string) *app.MemberContribution {
		if entry, ok := index[memberID]; ok {
			return entry
		}
		// Departed members inferred only from event data are still
		// credited so they are not silently dropped from payouts
		if name == "" {
			name = "Unknown (Ex-member)"
		}
		entry := &app.MemberContribution{ID: memberID, Name: name, IsFormerMember: true}
		index[memberID] = entry
		order = append(order, memberID)
		return entry
	}

	var offensive, defensive, standaloneAssists int

	for _, event := range events {
		if !event.IsRankedWar {
			continue
		}

		if event.Kind == app.EventKindAssist {
			if event.AttackerID == 0 || event.AttackerFaction != ourFactionID {
				continue
			}
			entry := credit(event.AttackerID, event.AttackerName)
			entry.Assists++
			standaloneAssists++
			continue
		}

		if event.AttackerID == 0 || event.DefenderID == 0 {
			continue
		}

		isOffensive := event.AttackerFaction == ourFactionID && event.DefenderFaction == opponentFactionID
		isDefensive := event.DefenderFaction == ourFactionID && event.AttackerFaction == opponentFactionID

		if isOffensive {
			entry := credit(event.AttackerID, event.AttackerName)
			entry.HitsMade++
			entry.RespectGained += event.RespectGain
			entry.BaseRespectGained += event.RespectGain / event.ChainBonus
			if event.Result == app.ResultAssist {
				entry.Assists++
			}
			offensive++
		}

		if isDefensive {
			entry := credit(event.DefenderID, event.DefenderName)
			switch event.Result {
			case app.ResultLost:
				entry.HitsTaken++
			case app.ResultStalemate:
				entry.Stalemates++
			default:
				entry.Defends++
			}
			defensive++
		}

		// Chain participation is credited independently of the
		// offensive/defensive branches
		if event.AttackerFaction == ourFactionID && event.Chain > 0 {
			credit(event.AttackerID, event.AttackerName).ChainHits++
		}
	}

	log.Info().
		Int("offensive_hits", offensive).
		Int("defensive_actions", defensive).
		Int("standalone_assists", standaloneAssists).
		Int("ledger_entries", len(order)).
		Msg("Finished classifying combat events")

	ledger := make([]app.MemberContribution, 0, len(order))
	for _, id := range order {
		ledger = append(ledger, *index[id])
	}
	return ledger
}

// ActiveMembers prunes the ledger to members with qualifying activity.
// The standard filter is positive respect; models that credit non-offensive
// activity widen it to any non-zero counter.
func (cs *ContributionService) ActiveMembers(ledger []app.MemberContribution, model app.PayoutModel) []app.MemberContribution {
	var active []app.MemberContribution
	for _, member := range ledger {
		if model.CreditsNonOffense() {
			if member.HasActivity() {
				active = append(active, member)
			}
		} else if member.RespectGained > 0 {
			active = append(active, member)
		}
	}
	return active
}

// SortByRespect orders a ledger by respect gained descending, preserving
// insertion order for ties
func (cs *ContributionService) SortByRespect(ledger []app.MemberContribution) []app.MemberContribution {
	sorted := make([]app.MemberContribution, len(ledger))
	copy(sorted, ledger)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RespectGained > sorted[j].RespectGained
	})
	return sorted
}
