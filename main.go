package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"velohub/internal/config"
	"velohub/internal/server"
	"velohub/internal/service"
	"velohub/internal/store"
	"velohub/internal/strava"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "velohub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yml", "path to config file")
	syncDays := flag.Int("sync", 0, "sync the configured Strava account's last N days of activities, then exit")
	flag.Parse()

	// a .env file is optional; the environment may already be populated
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := newLogger(cfg.Env)

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if *syncDays > 0 {
		return runSync(cfg, st, log, *syncDays)
	}

	facade := service.NewFacade(st, cfg.Engine.Params(), log)
	return server.New(cfg, facade, log).Run()
}

func runSync(cfg *config.Config, st *store.Store, log zerolog.Logger, days int) error {
	if cfg.Strava.ClientID == "" || cfg.Strava.RefreshToken == "" {
		return fmt.Errorf("strava credentials are not configured")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: strava.TokenURL},
	}
	token := &oauth2.Token{RefreshToken: cfg.Strava.RefreshToken, Expiry: time.Now().Add(-time.Hour)}
	client := strava.NewClient(oauthCfg.TokenSource(context.Background(), token))

	after := time.Now().AddDate(0, 0, -days)
	result, err := service.NewSyncService(client, st, log).SyncAthlete(context.Background(), after)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	log.Info().
		Int64("athlete_id", result.AthleteID).
		Int("activities", result.ActivitiesStored).
		Int("bikes", result.BikesStored).
		Msg("sync finished")
	return nil
}

func newLogger(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var log zerolog.Logger
	if env == "local" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.With().Timestamp().Logger()
}
