package processing

import (
	"testing"

	"torn_war_payouts/internal/app"
)

const (
	ourFactionID      = 12345
	opponentFactionID = 67890
)

func testWarReport() *app.RankedWarReport {
	return &app.RankedWarReport{
		War: app.WarInfo{Start: 1000, End: 2000},
		Factions: map[string]app.WarFaction{
			"12345": {
				Name: "Our Faction",
				Members: map[string]app.WarMember{
					"100": {Name: "Alice"},
					"101": {Name: "Bob"},
					"102": {Name: "Carol"},
				},
			},
			"67890": {
				Name: "Enemy Faction",
				Members: map[string]app.WarMember{
					"200": {Name: "Mallory"},
				},
			},
		},
	}
}

func TestDetermineOpponentFaction(t *testing.T) {
	service := NewContributionService()

	opponent, err := service.DetermineOpponentFaction(testWarReport(), ourFactionID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if opponent != opponentFactionID {
		t.Errorf("Expected opponent %d, got %d", opponentFactionID, opponent)
	}
}

func TestDetermineOpponentFactionNotInWar(t *testing.T) {
	service := NewContributionService()

	report := &app.RankedWarReport{
		Factions: map[string]app.WarFaction{
			"12345": {Name: "A"},
		},
	}
	if _, err := service.DetermineOpponentFaction(report, 12345); err == nil {
		t.Error("Expected error when only our faction is present")
	}
}

func offensiveEvent(code string, attackerID int, respect, chainBonus float64) app.CombatEvent {
	return app.CombatEvent{
		Code:            code,
		Kind:            app.EventKindAttack,
		AttackerID:      attackerID,
		AttackerName:    "Attacker",
		AttackerFaction: ourFactionID,
		DefenderID:      200,
		DefenderFaction: opponentFactionID,
		Result:          "Hospitalized",
		RespectGain:     respect,
		ChainBonus:      chainBonus,
		IsRankedWar:     true,
	}
}

func defensiveEvent(code string, defenderID int, result string) app.CombatEvent {
	return app.CombatEvent{
		Code:            code,
		Kind:            app.EventKindAttack,
		AttackerID:      200,
		AttackerFaction: opponentFactionID,
		DefenderID:      defenderID,
		DefenderName:    "Defender",
		DefenderFaction: ourFactionID,
		Result:          result,
		ChainBonus:      1,
		IsRankedWar:     true,
	}
}

func findMember(t *testing.T, ledger []app.MemberContribution, id int) app.MemberContribution {
	t.Helper()
	for _, member := range ledger {
		if member.ID == id {
			return member
		}
	}
	t.Fatalf("Member %d not found in ledger", id)
	return app.MemberContribution{}
}

func TestBuildLedgerOffensiveHits(t *testing.T) {
	service := NewContributionService()

	events := []app.CombatEvent{
		offensiveEvent("A1", 100, 10.0, 1),
		offensiveEvent("A2", 100, 6.0, 2),
		offensiveEvent("A3", 101, 4.0, 1),
	}

	ledger := service.BuildLedger(testWarReport(), events, ourFactionID, opponentFactionID)

	alice := findMember(t, ledger, 100)
	if alice.HitsMade != 2 {
		t.Errorf("Expected 2 hits for Alice, got %d", alice.HitsMade)
	}
	if alice.RespectGained != 16.0 {
		t.Errorf("Expected 16.0 respect, got %v", alice.RespectGained)
	}
	// 10/1 + 6/2 = 13 with the chain multiplier's effect removed
	if alice.BaseRespectGained != 13.0 {
		t.Errorf("Expected 13.0 base respect, got %v", alice.BaseRespectGained)
	}

	bob := findMember(t, ledger, 101)
	if bob.HitsMade != 1 || bob.RespectGained != 4.0 {
		t.Errorf("Unexpected Bob counters: hits %d respect %v", bob.HitsMade, bob.RespectGained)
	}
}

func TestBuildLedgerDefensiveOutcomes(t *testing.T) {
	service := NewContributionService()

	events := []app.CombatEvent{
		defensiveEvent("D1", 100, app.ResultLost),
		defensiveEvent("D2", 100, app.ResultStalemate),
		defensiveEvent("D3", 100, "Escape"),
		defensiveEvent("D4", 101, app.ResultLost),
	}

	ledger := service.BuildLedger(testWarReport(), events, ourFactionID, opponentFactionID)

	alice := findMember(t, ledger, 100)
	if alice.HitsTaken != 1 {
		t.Errorf("Expected 1 hit taken, got %d", alice.HitsTaken)
	}
	if alice.Stalemates != 1 {
		t.Errorf("Expected 1 stalemate, got %d", alice.Stalemates)
	}
	if alice.Defends != 1 {
		t.Errorf("Expected 1 defend, got %d", alice.Defends)
	}

	bob := findMember(t, ledger, 101)
	if bob.HitsTaken != 1 {
		t.Errorf("Expected 1 hit taken for Bob, got %d", bob.HitsTaken)
	}
}

func TestBuildLedgerSkipsNonRankedWarEvents(t *testing.T) {
	service := NewContributionService()

	event := offensiveEvent("A1", 100, 10.0, 1)
	event.IsRankedWar = false

	ledger := service.BuildLedger(testWarReport(), []app.CombatEvent{event}, ourFactionID, opponentFactionID)

	alice := findMember(t, ledger, 100)
	if alice.HitsMade != 0 || alice.RespectGained != 0 {
		t.Errorf("Non-ranked-war event must not be credited: hits %d respect %v", alice.HitsMade, alice.RespectGained)
	}
}

func TestBuildLedgerSkipsMissingParticipants(t *testing.T) {
	service := NewContributionService()

	event := offensiveEvent("A1", 100, 10.0, 1)
	event.DefenderID = 0

	ledger := service.BuildLedger(testWarReport(), []app.CombatEvent{event}, ourFactionID, opponentFactionID)

	alice := findMember(t, ledger, 100)
	if alice.HitsMade != 0 {
		t.Errorf("Event with missing defender must be skipped, got %d hits", alice.HitsMade)
	}
}

func TestBuildLedgerIgnoresUnrelatedFactionPairings(t *testing.T) {
	service := NewContributionService()

	// An attack by our member against a third faction is not classified
	event := offensiveEvent("A1", 100, 10.0, 1)
	event.DefenderFaction = 99999

	ledger := service.BuildLedger(testWarReport(), []app.CombatEvent{event}, ourFactionID, opponentFactionID)

	alice := findMember(t, ledger, 100)
	if alice.HitsMade != 0 || alice.RespectGained != 0 {
		t.Errorf("Unrelated faction pairing must not be credited: hits %d respect %v", alice.HitsMade, alice.RespectGained)
	}
}

func TestBuildLedgerCreatesFormerMemberEntries(t *testing.T) {
	service := NewContributionService()

	// Attacker 999 is not on the roster but fought for our faction
	event := offensiveEvent("A1", 999, 25.0, 1)
	event.AttackerName = "Departed"

	ledger := service.BuildLedger(testWarReport(), []app.CombatEvent{event}, ourFactionID, opponentFactionID)

	former := findMember(t, ledger, 999)
	if !former.IsFormerMember {
		t.Error("Expected former member flag")
	}
	if former.Name != "Departed" {
		t.Errorf("Expected name from event data, got %q", former.Name)
	}
	if former.RespectGained != 25.0 {
		t.Errorf("Expected former member respect 25.0, got %v", former.RespectGained)
	}
}

func TestBuildLedgerAssistCredits(t *testing.T) {
	service := NewContributionService()

	// An attack whose result is Assist earns a hit and an assist counter;
	// a standalone assist record earns only the assist counter
	assistAttack := offensiveEvent("A1", 100, 0.0, 1)
	assistAttack.Result = app.ResultAssist

	standalone := app.CombatEvent{
		Code:            "S1",
		Kind:            app.EventKindAssist,
		AttackerID:      101,
		AttackerName:    "Bob",
		AttackerFaction: ourFactionID,
		Result:          app.ResultAssist,
		ChainBonus:      1,
		IsRankedWar:     true,
	}

	ledger := service.BuildLedger(testWarReport(), []app.CombatEvent{assistAttack, standalone}, ourFactionID, opponentFactionID)

	alice := findMember(t, ledger, 100)
	if alice.Assists != 1 || alice.HitsMade != 1 {
		t.Errorf("Assist-result attack: expected 1 assist and 1 hit, got %d/%d", alice.Assists, alice.HitsMade)
	}

	bob := findMember(t, ledger, 101)
	if bob.Assists != 1 {
		t.Errorf("Standalone assist: expected 1 assist, got %d", bob.Assists)
	}
	if bob.HitsMade != 0 || bob.RespectGained != 0 {
		t.Errorf("Standalone assist must not credit hits or respect: %d/%v", bob.HitsMade, bob.RespectGained)
	}
}

func TestBuildLedgerChainHits(t *testing.T) {
	service := NewContributionService()

	chained := offensiveEvent("A1", 100, 10.0, 1.5)
	chained.Chain = 25
	unchained := offensiveEvent("A2", 100, 5.0, 1)

	ledger := service.BuildLedger(testWarReport(), []app.CombatEvent{chained, unchained}, ourFactionID, opponentFactionID)

	alice := findMember(t, ledger, 100)
	if alice.ChainHits != 1 {
		t.Errorf("Expected 1 chain hit, got %d", alice.ChainHits)
	}
}

func TestBuildLedgerSeedsRosterDeterministically(t *testing.T) {
	service := NewContributionService()

	ledger := service.BuildLedger(testWarReport(), nil, ourFactionID, opponentFactionID)

	if len(ledger) != 3 {
		t.Fatalf("Expected 3 seeded roster entries, got %d", len(ledger))
	}
	for i, wantID := range []int{100, 101, 102} {
		if ledger[i].ID != wantID {
			t.Errorf("Expected member %d at index %d, got %d", wantID, i, ledger[i].ID)
		}
	}
}

func TestActiveMembersRespectFilter(t *testing.T) {
	service := NewContributionService()

	ledger := []app.MemberContribution{
		{ID: 1, RespectGained: 10},
		{ID: 2, RespectGained: 0, Defends: 3},
		{ID: 3},
	}

	model := app.DefaultPayoutModel(30, 10)
	active := service.ActiveMembers(ledger, model)
	if len(active) != 1 || active[0].ID != 1 {
		t.Errorf("Standard model: expected only member 1 active, got %d entries", len(active))
	}
}

func TestActiveMembersWidensForNonOffenseModels(t *testing.T) {
	service := NewContributionService()

	ledger := []app.MemberContribution{
		{ID: 1, RespectGained: 10},
		{ID: 2, Assists: 2},
		{ID: 3},
	}

	model := app.PayoutModel{Kind: app.ModelMultiPool, AssistPaymentType: app.AssistPaymentNone, UseBonusRespect: true}
	active := service.ActiveMembers(ledger, model)
	if len(active) != 2 {
		t.Errorf("Multi-pool model: expected 2 active members, got %d", len(active))
	}
}
