package main

import (
	"context"
	"flag"

	"torn_war_payouts/internal/app"
	"torn_war_payouts/internal/cache"
	"torn_war_payouts/internal/deployment"
	"torn_war_payouts/internal/processing"
	"torn_war_payouts/internal/report"
	"torn_war_payouts/internal/sheets"
	"torn_war_payouts/internal/torn"

	"github.com/rs/zerolog/log"
)

func main() {
	app.SetupEnvironment()

	// Parse command line flags
	warID := flag.Int("war", 0, "Ranked war ID to process (required)")
	prizeFlag := flag.String("prize", "0", "Total prize money for the war (e.g. 1000000000, 1b, 750m)")
	factionShare := flag.Float64("faction-share", -1, "Percentage of the prize the faction keeps (default from env)")
	guaranteedShare := flag.Float64("guaranteed-share", -1, "Percentage of the member pool paid out evenly (default from env)")
	preset := flag.String("preset", "", "Named payout preset from the presets file")
	noCache := flag.Bool("no-cache", false, "Ignore cached attack data and fetch fresh from the API")
	exportSheet := flag.Bool("export-sheet", false, "Export the payout breakdown to the configured spreadsheet")
	publish := flag.Bool("publish", false, "Publish generated HTML reports to the configured host")
	flag.Parse()

	if *warID == 0 {
		log.Fatal().Msg("A war ID is required (-war)")
	}

	// Load configuration
	config, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *factionShare < 0 {
		*factionShare = config.FactionShare
	}
	if *guaranteedShare < 0 {
		*guaranteedShare = config.GuaranteedShare
	}

	prizeTotal, err := processing.ParsePrizeAmount(*prizeFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid prize total")
	}

	// Resolve the payout model
	model := app.DefaultPayoutModel(*factionShare, *guaranteedShare)
	if *preset != "" {
		presets, err := app.LoadPresets(config.PresetsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load payout presets")
		}
		model, err = app.ResolvePreset(presets, *preset, *factionShare, *guaranteedShare)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve payout preset")
		}
		log.Info().Str("preset", *preset).Str("model", model.Kind).Msg("Using payout preset")
	}

	log.Info().
		Int("war_id", *warID).
		Str("prize_total", prizeTotal.StringFixed(0)).
		Str("model", model.Kind).
		Bool("no_cache", *noCache).
		Msg("Starting war payout run")

	ctx := context.Background()

	// Initialize clients
	tornClient := torn.NewClient(config.TornAPIKey)

	cacheStore, err := cache.Open(config.CachePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open attack log cache")
	}
	defer cacheStore.Close()

	// Run the pipeline
	processor := processing.NewWarReportProcessor(tornClient, cacheStore, config)
	result, err := processor.ProcessWar(ctx, *warID, prizeTotal, model, processing.ProcessOptions{
		ForceRefresh: *noCache,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to process war")
	}

	// Render HTML reports
	paths, err := report.WriteReports(result, config.ReportsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write reports")
	}

	// Optional spreadsheet export
	if *exportSheet {
		if config.SpreadsheetID == "" {
			log.Fatal().Msg("SPREADSHEET_ID must be configured for -export-sheet")
		}
		sheetsClient, err := sheets.NewClient(ctx, config.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheets client")
		}
		manager := sheets.NewPayoutManager(sheetsClient)
		sheetName, err := manager.EnsurePayoutSheet(ctx, config.SpreadsheetID, *warID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare payout sheet")
		}
		if err := manager.WritePayoutReport(ctx, config.SpreadsheetID, sheetName, result); err != nil {
			log.Fatal().Err(err).Msg("Failed to export payout report")
		}
	}

	// Optional publish of rendered reports
	if *publish {
		if config.DeployURL == "" {
			log.Fatal().Msg("DEPLOY_URL must be configured for -publish")
		}
		publisher := deployment.NewReportPublisher(config.DeployURL, config.DeployKeyPath)
		defer publisher.Disconnect()
		for _, path := range paths {
			if err := publisher.PublishReport(path); err != nil {
				log.Fatal().Err(err).Str("path", path).Msg("Failed to publish report")
			}
		}
	}

	log.Info().
		Int64("api_calls", tornClient.GetAPICallCount()).
		Int("active_members", len(result.Ledger)).
		Str("total_final_payout", result.Breakdown.TotalFinalPayout.StringFixed(2)).
		Msg("Completed war payout run")
}
