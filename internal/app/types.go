package app

import "github.com/shopspring/decimal"

// APIError is the error payload the Torn API embeds in an otherwise
// successful HTTP response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// RankedWarReportResponse represents the response from /torn/{war_id}?selections=rankedwarreport
type RankedWarReportResponse struct {
	RankedWarReport *RankedWarReport `json:"rankedwarreport"`
	Error           *APIError        `json:"error"`
}

// RankedWarReport holds the war record and both faction rosters
type RankedWarReport struct {
	War      WarInfo                  `json:"war"`
	Factions map[string]WarFaction    `json:"factions"`
}

// WarInfo represents the war timeframe and outcome
type WarInfo struct {
	Start  int64 `json:"start"`
	End    int64 `json:"end"`
	Winner int   `json:"winner"`
}

// WarFaction represents one side of a ranked war, including its roster
type WarFaction struct {
	Name    string                 `json:"name"`
	Score   int                    `json:"score"`
	Members map[string]WarMember   `json:"members"`
}

// WarMember is a roster entry from the war report
type WarMember struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// ProfileResponse represents the response from /user/?selections=profile
type ProfileResponse struct {
	Faction *ProfileFaction `json:"faction"`
	Error   *APIError       `json:"error"`
}

// ProfileFaction identifies the faction the API key belongs to
type ProfileFaction struct {
	FactionID   int    `json:"faction_id"`
	FactionName string `json:"faction_name"`
}

// Attack represents a raw attack record from /faction/{id}?selections=attacks
type Attack struct {
	Code             string          `json:"code"`
	TimestampStarted int64           `json:"timestamp_started"`
	TimestampEnded   int64           `json:"timestamp_ended"`
	AttackerID       int             `json:"attacker_id"`
	AttackerName     string          `json:"attacker_name"`
	AttackerFaction  int             `json:"attacker_faction"`
	DefenderID       int             `json:"defender_id"`
	DefenderName     string          `json:"defender_name"`
	DefenderFaction  int             `json:"defender_faction"`
	Result           string          `json:"result"`
	RespectGain      float64         `json:"respect_gain"`
	Chain            int             `json:"chain"`
	RankedWar        int             `json:"ranked_war"`
	Modifiers        AttackModifiers `json:"modifiers"`
}

// AttackModifiers represents the respect multipliers applied to an attack
type AttackModifiers struct {
	FairFight   float64 `json:"fair_fight"`
	War         float64 `json:"war"`
	Retaliation float64 `json:"retaliation"`
	GroupAttack float64 `json:"group_attack"`
	Overseas    float64 `json:"overseas"`
	ChainBonus  float64 `json:"chain_bonus"`
}

// Assist represents a standalone assist record from the attack log
type Assist struct {
	Code           string `json:"code"`
	TimestampEnded int64  `json:"timestamp_ended"`
	AttackerID     int    `json:"attacker_id"`
	AttackerName   string `json:"attacker_name"`
	AttackerFaction int   `json:"attacker_faction"`
	RankedWar      int    `json:"ranked_war"`
}

// AttackLogResponse represents one page of the paginated attack log
type AttackLogResponse struct {
	Attacks map[string]Attack `json:"attacks"`
	Assists map[string]Assist `json:"assists"`
	Error   *APIError         `json:"error"`
}

// EventKind distinguishes full attacks from standalone assists
type EventKind string

const (
	EventKindAttack EventKind = "attack"
	EventKindAssist EventKind = "assist"
)

// Attack result values with classification significance
const (
	ResultLost      = "Lost"
	ResultStalemate = "Stalemate"
	ResultAssist    = "Assist"
)

// CombatEvent is the normalized form of one attack or assist record.
// Code is globally unique and is the deduplication key.
type CombatEvent struct {
	Code            string    `json:"code"`
	Kind            EventKind `json:"kind"`
	Started         int64     `json:"started"`
	Ended           int64     `json:"ended"`
	AttackerID      int       `json:"attacker_id"`
	AttackerName    string    `json:"attacker_name"`
	AttackerFaction int       `json:"attacker_faction"`
	DefenderID      int       `json:"defender_id"`
	DefenderName    string    `json:"defender_name"`
	DefenderFaction int       `json:"defender_faction"`
	Result          string    `json:"result"`
	RespectGain     float64   `json:"respect_gain"`
	Chain           int       `json:"chain"`
	ChainBonus      float64   `json:"chain_bonus"`
	IsRankedWar     bool      `json:"is_ranked_war"`
}

// ToCombatEvent normalizes a raw attack record. A missing or zero chain
// bonus is treated as 1 so base respect never divides by zero.
func (a Attack) ToCombatEvent() CombatEvent {
	chainBonus := a.Modifiers.ChainBonus
	if chainBonus < 1 {
		chainBonus = 1
	}
	return CombatEvent{
		Code:            a.Code,
		Kind:            EventKindAttack,
		Started:         a.TimestampStarted,
		Ended:           a.TimestampEnded,
		AttackerID:      a.AttackerID,
		AttackerName:    a.AttackerName,
		AttackerFaction: a.AttackerFaction,
		DefenderID:      a.DefenderID,
		DefenderName:    a.DefenderName,
		DefenderFaction: a.DefenderFaction,
		Result:          a.Result,
		RespectGain:     a.RespectGain,
		Chain:           a.Chain,
		ChainBonus:      chainBonus,
		IsRankedWar:     a.RankedWar == 1,
	}
}

// ToCombatEvent normalizes a standalone assist record
func (a Assist) ToCombatEvent() CombatEvent {
	return CombatEvent{
		Code:            a.Code,
		Kind:            EventKindAssist,
		Ended:           a.TimestampEnded,
		AttackerID:      a.AttackerID,
		AttackerName:    a.AttackerName,
		AttackerFaction: a.AttackerFaction,
		Result:          ResultAssist,
		ChainBonus:      1,
		IsRankedWar:     a.RankedWar == 1,
	}
}

// MemberContribution accumulates one member's war activity
type MemberContribution struct {
	ID                int
	Name              string
	IsFormerMember    bool
	RespectGained     float64
	BaseRespectGained float64
	HitsMade          int
	Assists           int
	HitsTaken         int
	Defends           int
	Stalemates        int
	ChainHits         int
}

// HasActivity reports whether any counter or respect value is non-zero
func (m MemberContribution) HasActivity() bool {
	return m.RespectGained > 0 ||
		m.HitsMade > 0 ||
		m.Assists > 0 ||
		m.HitsTaken > 0 ||
		m.Defends > 0 ||
		m.Stalemates > 0 ||
		m.ChainHits > 0
}

// Payout model kinds
const (
	ModelStandard   = "standard"
	ModelEqualShare = "equal_share"
	ModelMultiPool  = "multi_pool"
)

// Assist payment types for the standard model
const (
	AssistPaymentNone = "none"
	AssistPaymentFlat = "flat"
)

// PayoutModel is a named allocation configuration. Not every field applies
// to every model kind; Validate rejects out-of-range values.
type PayoutModel struct {
	Kind                  string  `json:"model_kind"`
	FactionPoolPercent    float64 `json:"faction_pool_percent"`
	GuaranteedPoolPercent float64 `json:"guaranteed_pool_percent"`
	AssistPaymentType     string  `json:"assist_payment_type"`
	AssistPaymentValue    float64 `json:"assist_payment_value"`
	PenaltyPerHitTaken    float64 `json:"penalty_per_hit_taken"`
	UseBonusRespect       bool    `json:"use_bonus_respect"`
	ChainPoolPercent      float64 `json:"chain_pool_percent"`
	AssistPoolPercent     float64 `json:"assist_pool_percent"`
}

// DefaultPayoutModel mirrors the historical default behavior: standard
// model, raw respect as the fairness basis, no assist payments or penalties.
func DefaultPayoutModel(factionShare, guaranteedShare float64) PayoutModel {
	return PayoutModel{
		Kind:                  ModelStandard,
		FactionPoolPercent:    factionShare,
		GuaranteedPoolPercent: guaranteedShare,
		AssistPaymentType:     AssistPaymentNone,
		UseBonusRespect:       true,
	}
}

// CreditsNonOffense reports whether the model pays for activity other than
// offensive respect. It widens the active-member filter accordingly.
func (m PayoutModel) CreditsNonOffense() bool {
	switch m.Kind {
	case ModelEqualShare, ModelMultiPool:
		return true
	}
	return m.AssistPaymentType == AssistPaymentFlat
}

// MemberPayout is one member's itemized payout
type MemberPayout struct {
	Contribution  MemberContribution
	Guaranteed    decimal.Decimal
	Participation decimal.Decimal
	Assist        decimal.Decimal
	Penalty       decimal.Decimal
	Final         decimal.Decimal
}

// PayoutBreakdown is the full allocation result: per-member payouts plus
// pool-level totals. Members are ordered by final payout descending.
type PayoutBreakdown struct {
	Members                []MemberPayout
	PrizeTotal             decimal.Decimal
	FactionTake            decimal.Decimal
	MemberPool             decimal.Decimal
	GuaranteedPool         decimal.Decimal
	ParticipationPool      decimal.Decimal
	ChainPool              decimal.Decimal
	AssistPool             decimal.Decimal
	TotalAssistPayout      decimal.Decimal
	TotalPenaltyDeductions decimal.Decimal
	TotalFinalPayout       decimal.Decimal
}
