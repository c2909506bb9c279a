package sheets

import (
	"context"
	"fmt"

	"torn_war_payouts/internal/processing"

	"github.com/rs/zerolog/log"
)

// PayoutManager exports a finished payout breakdown to a spreadsheet tab
type PayoutManager struct {
	client SheetsAPI
}

// NewPayoutManager creates a new payout manager
func NewPayoutManager(client SheetsAPI) *PayoutManager {
	return &PayoutManager{
		client: client,
	}
}

// EnsurePayoutSheet creates the per-war payout tab if it does not exist and
// returns its name
func (pm *PayoutManager) EnsurePayoutSheet(ctx context.Context, spreadsheetID string, warID int) (string, error) {
	sheetName := fmt.Sprintf("Payouts - War %d", warID)

	exists, err := pm.client.SheetExists(ctx, spreadsheetID, sheetName)
	if err != nil {
		return "", fmt.Errorf("failed to check payout sheet: %w", err)
	}

	if !exists {
		if err := pm.client.CreateSheet(ctx, spreadsheetID, sheetName); err != nil {
			return "", fmt.Errorf("failed to create payout sheet: %w", err)
		}
		log.Info().Str("sheet_name", sheetName).Msg("Created payout sheet")
	}

	return sheetName, nil
}

// WritePayoutReport replaces the tab's contents with the current breakdown
func (pm *PayoutManager) WritePayoutReport(ctx context.Context, spreadsheetID, sheetName string, result *processing.WarReportResult) error {
	values := BuildPayoutRows(result)

	writeRange := fmt.Sprintf("'%s'!A1", sheetName)
	if err := pm.client.ClearRange(ctx, spreadsheetID, fmt.Sprintf("'%s'!A:Z", sheetName)); err != nil {
		return fmt.Errorf("failed to clear payout sheet: %w", err)
	}
	if err := pm.client.UpdateRange(ctx, spreadsheetID, writeRange, values); err != nil {
		return fmt.Errorf("failed to write payout report: %w", err)
	}

	log.Info().
		Str("sheet_name", sheetName).
		Int("rows", len(values)).
		Msg("Exported payout report to sheet")

	return nil
}

// BuildPayoutRows flattens a pipeline result into sheet rows. Exported for
// tests; the Google Sheets API requires [][]interface{}.
func BuildPayoutRows(result *processing.WarReportResult) [][]interface{} {
	breakdown := result.Breakdown

	values := [][]interface{}{
		{fmt.Sprintf("%s vs %s", result.OurFactionName, result.OpponentFactionName)},
		{"War ID", result.WarID},
		{"Prize Total", breakdown.PrizeTotal.StringFixed(2)},
		{"Faction Take", breakdown.FactionTake.StringFixed(2)},
		{"Member Pool", breakdown.MemberPool.StringFixed(2)},
		{},
		{"Member", "ID", "Respect", "Hits", "Defends", "Assists", "Hits Taken", "Stalemates",
			"Guaranteed", "Participation", "Assist Pay", "Penalty", "Final Payout"},
	}

	for _, payout := range breakdown.Members {
		member := payout.Contribution
		name := member.Name
		if member.IsFormerMember {
			name += " (ex-member)"
		}
		values = append(values, []interface{}{
			name,
			member.ID,
			fmt.Sprintf("%.2f", member.RespectGained),
			member.HitsMade,
			member.Defends,
			member.Assists,
			member.HitsTaken,
			member.Stalemates,
			payout.Guaranteed.StringFixed(2),
			payout.Participation.StringFixed(2),
			payout.Assist.StringFixed(2),
			payout.Penalty.StringFixed(2),
			payout.Final.StringFixed(2),
		})
	}

	values = append(values, []interface{}{}, []interface{}{
		"Total", "", "", "", "", "", "", "",
		breakdown.GuaranteedPool.StringFixed(2),
		breakdown.ParticipationPool.StringFixed(2),
		breakdown.TotalAssistPayout.StringFixed(2),
		breakdown.TotalPenaltyDeductions.StringFixed(2),
		breakdown.TotalFinalPayout.StringFixed(2),
	})

	return values
}
