package handlers

import (
	"context"
	"fmt"

	"github.com/arnavshah/roster-engine-go/pkg/auth"
	"github.com/arnavshah/roster-engine-go/pkg/client"
	"github.com/arnavshah/roster-engine-go/pkg/config"
	"github.com/arnavshah/roster-engine-go/pkg/database"
	"github.com/arnavshah/roster-engine-go/pkg/logger"
	"github.com/arnavshah/roster-engine-go/pkg/scheduler"
	"github.com/google/uuid"
)

// ClientOptions maps the scheduling section of the configuration
func ClientOptions(cfg *config.Config) (client.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return client.Options{}, err
	}
	return client.Options{
		ShiftsPerDay: cfg.Scheduling.ShiftsPerDay,
		ShiftType:    cfg.Scheduling.ShiftType,
		Rules: scheduler.BalanceRules{
			MaxHourSpread: cfg.Scheduling.MaxHourSpread,
			UnevenFactor:  cfg.Scheduling.UnevenFactor,
		},
		Location: loc,
	}, nil
}

// Setup opens the database, seeds the admin account and wires a Handler
func Setup(ctx context.Context, cfg *config.Config) (*Handler, error) {
	db, err := database.InitDB(database.Options{
		DatabaseURL: cfg.DatabaseURL,
		DataPath:    cfg.DataPath,
		Verbose:     cfg.Log.Level == "debug",
	})
	if err != nil {
		return nil, err
	}

	if err := auth.EnsureAdminExists(ctx, database.NewUserStore(db), cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn().Msg("JWT_SECRET not set, tokens will not survive a restart")
	}

	opts, err := ClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	return NewHandler(db, auth.NewIssuer(secret, cfg.TokenTTL()), opts), nil
}
