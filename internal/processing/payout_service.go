package processing

import (
	"fmt"
	"sort"
	"strings"

	"torn_war_payouts/internal/app"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// PayoutService allocates a prize pool across the contribution ledger under
// a named payout model. All monetary computation uses decimal arithmetic
// with no intermediate rounding; the input ledger is never mutated.
type PayoutService struct{}

// NewPayoutService creates a new payout service
func NewPayoutService() *PayoutService {
	return &PayoutService{}
}

// ParsePrizeAmount parses a human-entered prize total. It tolerates dollar
// signs, thousands separators, and k/m/b magnitude suffixes ("1.5b").
func ParsePrizeAmount(input string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ToLower(cleaned)

	multiplier := decimal.NewFromInt(1)
	switch {
	case strings.HasSuffix(cleaned, "k"):
		multiplier = decimal.NewFromInt(1_000)
		cleaned = strings.TrimSuffix(cleaned, "k")
	case strings.HasSuffix(cleaned, "m"):
		multiplier = decimal.NewFromInt(1_000_000)
		cleaned = strings.TrimSuffix(cleaned, "m")
	case strings.HasSuffix(cleaned, "b"):
		multiplier = decimal.NewFromInt(1_000_000_000)
		cleaned = strings.TrimSuffix(cleaned, "b")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid prize amount %q: %w", input, err)
	}

	amount = amount.Mul(multiplier)
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid prize amount %q: must be non-negative", input)
	}
	return amount, nil
}

// ValidateModel checks the payout configuration before any money is
// computed. Errors name the offending field.
func (ps *PayoutService) ValidateModel(model app.PayoutModel, prizeTotal decimal.Decimal) error {
	if prizeTotal.IsNegative() {
		return fmt.Errorf("invalid payout configuration: prize_total must be non-negative, got %s", prizeTotal)
	}

	switch model.Kind {
	case app.ModelStandard, app.ModelEqualShare, app.ModelMultiPool:
	default:
		return fmt.Errorf("invalid payout configuration: unknown model_kind %q", model.Kind)
	}

	percents := []struct {
		name  string
		value float64
	}{
		{"faction_pool_percent", model.FactionPoolPercent},
		{"guaranteed_pool_percent", model.GuaranteedPoolPercent},
		{"chain_pool_percent", model.ChainPoolPercent},
		{"assist_pool_percent", model.AssistPoolPercent},
	}
	for _, p := range percents {
		if p.value < 0 || p.value > 100 {
			return fmt.Errorf("invalid payout configuration: %s must be between 0 and 100, got %v", p.name, p.value)
		}
	}

	switch model.AssistPaymentType {
	case app.AssistPaymentNone, app.AssistPaymentFlat:
	default:
		return fmt.Errorf("invalid payout configuration: unknown assist_payment_type %q", model.AssistPaymentType)
	}

	if model.AssistPaymentValue < 0 {
		return fmt.Errorf("invalid payout configuration: assist_payment_value must be non-negative, got %v", model.AssistPaymentValue)
	}
	if model.PenaltyPerHitTaken < 0 {
		return fmt.Errorf("invalid payout configuration: penalty_per_hit_taken must be non-negative, got %v", model.PenaltyPerHitTaken)
	}

	if model.Kind == app.ModelMultiPool && model.ChainPoolPercent+model.AssistPoolPercent > 100 {
		return fmt.Errorf("invalid payout configuration: chain_pool_percent and assist_pool_percent sum to %v, exceeding 100",
			model.ChainPoolPercent+model.AssistPoolPercent)
	}

	return nil
}

// CalculatePayouts produces the payout breakdown for the active ledger.
// Allocation is all-or-nothing: validation failures return before any
// member amounts are computed.
func (ps *PayoutService) CalculatePayouts(ledger []app.MemberContribution, prizeTotal decimal.Decimal, model app.PayoutModel) (*app.PayoutBreakdown, error) {
	if err := ps.ValidateModel(model, prizeTotal); err != nil {
		return nil, err
	}

	factionTake := prizeTotal.Mul(decimal.NewFromFloat(model.FactionPoolPercent)).Div(oneHundred)
	memberPool := prizeTotal.Sub(factionTake)

	breakdown := &app.PayoutBreakdown{
		PrizeTotal:  prizeTotal,
		FactionTake: factionTake,
		MemberPool:  memberPool,
	}

	if len(ledger) == 0 {
		log.Warn().Msg("No active members in ledger; payout breakdown is empty")
		return breakdown, nil
	}

	switch model.Kind {
	case app.ModelStandard:
		ps.allocateStandard(breakdown, ledger, model)
	case app.ModelEqualShare:
		ps.allocateEqualShare(breakdown, ledger)
	case app.ModelMultiPool:
		ps.allocateMultiPool(breakdown, ledger, model)
	}

	ps.finalize(breakdown)

	log.Info().
		Str("model", model.Kind).
		Int("members", len(breakdown.Members)).
		Str("prize_total", prizeTotal.StringFixed(2)).
		Str("faction_take", factionTake.StringFixed(2)).
		Str("total_final_payout", breakdown.TotalFinalPayout.StringFixed(2)).
		Msg("Calculated payouts")

	return breakdown, nil
}

// allocateStandard implements the guaranteed+participation pipeline: an even
// guaranteed carve-out, flat assist payments and hit-taken penalties against
// the adjustable pool, and the remainder split by respect share.
func (ps *PayoutService) allocateStandard(breakdown *app.PayoutBreakdown, ledger []app.MemberContribution, model app.PayoutModel) {
	memberCount := decimal.NewFromInt(int64(len(ledger)))

	guaranteedPool := breakdown.MemberPool.Mul(decimal.NewFromFloat(model.GuaranteedPoolPercent)).Div(oneHundred)
	guaranteedPerMember := guaranteedPool.Div(memberCount)
	adjustablePool := breakdown.MemberPool.Sub(guaranteedPool)

	assistValue := decimal.NewFromFloat(model.AssistPaymentValue)
	penaltyValue := decimal.NewFromFloat(model.PenaltyPerHitTaken)

	totalAssists := decimal.Zero
	totalPenalties := decimal.Zero
	totalRespect := decimal.Zero
	for _, member := range ledger {
		if model.AssistPaymentType == app.AssistPaymentFlat {
			totalAssists = totalAssists.Add(assistValue.Mul(decimal.NewFromInt(int64(member.Assists))))
		}
		totalPenalties = totalPenalties.Add(penaltyValue.Mul(decimal.NewFromInt(int64(member.HitsTaken))))
		totalRespect = totalRespect.Add(respectBasis(member, model))
	}

	participationPool := adjustablePool.Sub(totalAssists).Sub(totalPenalties)
	if participationPool.IsNegative() {
		// Deficits are absorbed rather than driving the pool negative
		log.Warn().
			Str("participation_pool", participationPool.StringFixed(2)).
			Msg("Assist payouts and penalties exceed the adjustable pool; respect share payouts will be zero")
		participationPool = decimal.Zero
	}

	breakdown.GuaranteedPool = guaranteedPool
	breakdown.ParticipationPool = participationPool
	breakdown.TotalAssistPayout = totalAssists
	breakdown.TotalPenaltyDeductions = totalPenalties

	for _, member := range ledger {
		payout := app.MemberPayout{
			Contribution: member,
			Guaranteed:   guaranteedPerMember,
			Penalty:      penaltyValue.Mul(decimal.NewFromInt(int64(member.HitsTaken))),
		}
		if model.AssistPaymentType == app.AssistPaymentFlat {
			payout.Assist = assistValue.Mul(decimal.NewFromInt(int64(member.Assists)))
		} else {
			payout.Assist = decimal.Zero
		}
		payout.Participation = poolShare(participationPool, respectBasis(member, model), totalRespect)
		breakdown.Members = append(breakdown.Members, payout)
	}
}

// allocateEqualShare splits the member pool evenly, ignoring respect
func (ps *PayoutService) allocateEqualShare(breakdown *app.PayoutBreakdown, ledger []app.MemberContribution) {
	perMember := breakdown.MemberPool.Div(decimal.NewFromInt(int64(len(ledger))))
	breakdown.GuaranteedPool = breakdown.MemberPool

	for _, member := range ledger {
		breakdown.Members = append(breakdown.Members, app.MemberPayout{
			Contribution:  member,
			Guaranteed:    perMember,
			Participation: decimal.Zero,
			Assist:        decimal.Zero,
			Penalty:       decimal.Zero,
		})
	}
}

// allocateMultiPool splits the member pool into a respect-weighted main
// pool, a chain-hit-weighted bonus pool, and an assist-weighted bonus pool
func (ps *PayoutService) allocateMultiPool(breakdown *app.PayoutBreakdown, ledger []app.MemberContribution, model app.PayoutModel) {
	chainPool := breakdown.MemberPool.Mul(decimal.NewFromFloat(model.ChainPoolPercent)).Div(oneHundred)
	assistPool := breakdown.MemberPool.Mul(decimal.NewFromFloat(model.AssistPoolPercent)).Div(oneHundred)
	mainPool := breakdown.MemberPool.Sub(chainPool).Sub(assistPool)

	totalRespect := decimal.Zero
	totalChainHits := decimal.Zero
	totalAssists := decimal.Zero
	for _, member := range ledger {
		totalRespect = totalRespect.Add(respectBasis(member, model))
		totalChainHits = totalChainHits.Add(decimal.NewFromInt(int64(member.ChainHits)))
		totalAssists = totalAssists.Add(decimal.NewFromInt(int64(member.Assists)))
	}

	breakdown.ParticipationPool = mainPool
	breakdown.ChainPool = chainPool
	breakdown.AssistPool = assistPool

	for _, member := range ledger {
		mainShare := poolShare(mainPool, respectBasis(member, model), totalRespect)
		chainShare := poolShare(chainPool, decimal.NewFromInt(int64(member.ChainHits)), totalChainHits)
		assistShare := poolShare(assistPool, decimal.NewFromInt(int64(member.Assists)), totalAssists)

		breakdown.Members = append(breakdown.Members, app.MemberPayout{
			Contribution:  member,
			Guaranteed:    decimal.Zero,
			Participation: mainShare.Add(chainShare),
			Assist:        assistShare,
			Penalty:       decimal.Zero,
		})
	}

	breakdown.TotalAssistPayout = decimal.Zero
	for _, payout := range breakdown.Members {
		breakdown.TotalAssistPayout = breakdown.TotalAssistPayout.Add(payout.Assist)
	}
}

// finalize computes per-member final payouts, sorts by final payout
// descending (stable, so ties keep ledger insertion order), and sums totals
func (ps *PayoutService) finalize(breakdown *app.PayoutBreakdown) {
	total := decimal.Zero
	for i := range breakdown.Members {
		payout := &breakdown.Members[i]
		payout.Final = payout.Guaranteed.Add(payout.Participation).Add(payout.Assist).Sub(payout.Penalty)
		total = total.Add(payout.Final)
	}
	breakdown.TotalFinalPayout = total

	sort.SliceStable(breakdown.Members, func(i, j int) bool {
		return breakdown.Members[i].Final.GreaterThan(breakdown.Members[j].Final)
	})
}

// respectBasis returns the respect value used for proportional shares:
// raw respect when the model pays for chain bonuses, chain-normalized base
// respect when it does not
func respectBasis(member app.MemberContribution, model app.PayoutModel) decimal.Decimal {
	if model.UseBonusRespect {
		return decimal.NewFromFloat(member.RespectGained)
	}
	return decimal.NewFromFloat(member.BaseRespectGained)
}

// poolShare computes pool * weight / totalWeight, guarding the zero
// denominator to zero
func poolShare(pool, weight, totalWeight decimal.Decimal) decimal.Decimal {
	if totalWeight.IsZero() {
		return decimal.Zero
	}
	return pool.Mul(weight).Div(totalWeight)
}
