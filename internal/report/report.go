// Package report renders the final ledger and payout breakdown into
// human-readable HTML artifacts. It consumes the pipeline output as plain
// data and never reaches back into the API.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"torn_war_payouts/internal/processing"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Row is one member line in a rendered report
type Row struct {
	MemberID       int
	Name           string
	IsFormerMember bool
	RespectGained  string
	RespectShare   string
	HitsMade       int
	Assists        int
	HitsTaken      int
	Defends        int
	Stalemates     int
	ChainHits      int
	Guaranteed     string
	Participation  string
	Assist         string
	Penalty        string
	Final          string
}

// Totals is the footer line of the advanced report
type Totals struct {
	RespectGained string
	HitsMade      int
	Assists       int
	HitsTaken     int
	Defends       int
	Stalemates    int
	FinalPayout   string
}

// Data is the template context for both report variants
type Data struct {
	WarID               int
	OurFactionName      string
	OpponentFactionName string
	StartStr            string
	EndStr              string
	PrizeTotal          string
	FactionTake         string
	MemberPool          string
	Rows                []Row
	Totals              Totals
	TopEarnerName       string
	TopEarnerPayout     string
	TopHitterName       string
	TopHitterHits       int
	GeneratedAt         string
}

// Assemble flattens a pipeline result into the template context
func Assemble(result *processing.WarReportResult) Data {
	breakdown := result.Breakdown

	totalRespect := 0.0
	for _, member := range result.Ledger {
		totalRespect += member.RespectGained
	}

	data := Data{
		WarID:               result.WarID,
		OurFactionName:      result.OurFactionName,
		OpponentFactionName: result.OpponentFactionName,
		StartStr:            time.Unix(result.War.Start, 0).UTC().Format("2006-01-02 15:04:05"),
		EndStr:              time.Unix(result.War.End, 0).UTC().Format("2006-01-02 15:04:05"),
		PrizeTotal:          formatMoney(breakdown.PrizeTotal),
		FactionTake:         formatMoney(breakdown.FactionTake),
		MemberPool:          formatMoney(breakdown.MemberPool),
		GeneratedAt:         time.Now().UTC().Format("2006-01-02 15:04:05"),
	}

	topHits := -1
	for _, payout := range breakdown.Members {
		member := payout.Contribution

		share := 0.0
		if totalRespect > 0 {
			share = member.RespectGained / totalRespect * 100
		}

		data.Rows = append(data.Rows, Row{
			MemberID:       member.ID,
			Name:           member.Name,
			IsFormerMember: member.IsFormerMember,
			RespectGained:  fmt.Sprintf("%.2f", member.RespectGained),
			RespectShare:   fmt.Sprintf("%.2f%%", share),
			HitsMade:       member.HitsMade,
			Assists:        member.Assists,
			HitsTaken:      member.HitsTaken,
			Defends:        member.Defends,
			Stalemates:     member.Stalemates,
			ChainHits:      member.ChainHits,
			Guaranteed:     formatMoney(payout.Guaranteed),
			Participation:  formatMoney(payout.Participation),
			Assist:         formatMoney(payout.Assist),
			Penalty:        formatMoney(payout.Penalty),
			Final:          formatMoney(payout.Final),
		})

		data.Totals.HitsMade += member.HitsMade
		data.Totals.Assists += member.Assists
		data.Totals.HitsTaken += member.HitsTaken
		data.Totals.Defends += member.Defends
		data.Totals.Stalemates += member.Stalemates

		if member.HitsMade > topHits {
			topHits = member.HitsMade
			data.TopHitterName = member.Name
			data.TopHitterHits = member.HitsMade
		}
	}

	data.Totals.RespectGained = fmt.Sprintf("%.2f", totalRespect)
	data.Totals.FinalPayout = formatMoney(breakdown.TotalFinalPayout)

	if len(breakdown.Members) > 0 {
		data.TopEarnerName = breakdown.Members[0].Contribution.Name
		data.TopEarnerPayout = formatMoney(breakdown.Members[0].Final)
	}

	return data
}

// WriteReports renders the simple and advanced reports under dir and
// returns the written paths. Filenames never overwrite earlier runs.
func WriteReports(result *processing.WarReportResult, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory %s: %w", dir, err)
	}

	data := Assemble(result)
	opponent := sanitizeName(result.OpponentFactionName)

	var written []string
	for _, variant := range []struct {
		template string
		prefix   string
	}{
		{"payout_report.html.tmpl", "war_report"},
		{"advanced_report.html.tmpl", "advanced_report"},
	} {
		base := filepath.Join(dir, fmt.Sprintf("%s_%d_%s.html", variant.prefix, result.WarID, opponent))
		path := uniqueFilename(base)

		file, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("failed to create report file %s: %w", path, err)
		}
		if err := templates.ExecuteTemplate(file, variant.template, data); err != nil {
			file.Close()
			return written, fmt.Errorf("failed to render %s: %w", variant.template, err)
		}
		if err := file.Close(); err != nil {
			return written, fmt.Errorf("failed to close report file %s: %w", path, err)
		}

		log.Info().Str("path", path).Msg("Generated report")
		written = append(written, path)
	}

	return written, nil
}

// uniqueFilename appends a counter to the base name until the path is free
func uniqueFilename(base string) string {
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return base
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func sanitizeName(name string) string {
	replacer := strings.NewReplacer(" ", "_", "[", "", "]", "", "/", "_")
	return replacer.Replace(name)
}

// formatMoney renders a decimal amount with thousands separators and two
// decimal places
func formatMoney(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	integer := parts[0]

	var grouped strings.Builder
	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	out := "$" + grouped.String() + "." + parts[1]
	if negative {
		out = "-" + out
	}
	return out
}
