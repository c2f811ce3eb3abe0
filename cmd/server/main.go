package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/olchaban/receipts/internal/auth"
	"github.com/olchaban/receipts/internal/calculator"
	"github.com/olchaban/receipts/internal/render"
	"github.com/olchaban/receipts/internal/service"
	"github.com/olchaban/receipts/internal/storage/sqlite"
	"github.com/olchaban/receipts/pkg/logging"
)

func main() {
	fs := ff.NewFlagSet("receipts")
	var (
		port             = fs.IntLong("port", 8080, "HTTP server port")
		dbPath           = fs.StringLong("db", "./data/receipts.db", "Database file path")
		jwtSecret        = fs.StringLong("jwt-secret", "", "JWT signing secret (or set RECEIPTS_JWT_SECRET)")
		accessTTL        = fs.StringLong("access-ttl", "30m", "Access token lifetime (Go duration)")
		refreshTTL       = fs.StringLong("refresh-ttl", "168h", "Refresh token lifetime (Go duration)")
		locale           = fs.StringLong("locale", "en", "Receipt label locale: 'en' or 'uk'")
		cashlessTendered = fs.BoolLong("cashless-tendered", "Record the tendered amount for cashless payments instead of the total")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPTS"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup()

	if *jwtSecret == "" {
		slog.Error("JWT secret is required. Set --jwt-secret flag or RECEIPTS_JWT_SECRET environment variable")
		os.Exit(1)
	}

	accessDur, err := time.ParseDuration(*accessTTL)
	if err != nil {
		slog.Error("Invalid access token lifetime", "value", *accessTTL, "error", err)
		os.Exit(1)
	}
	refreshDur, err := time.ParseDuration(*refreshTTL)
	if err != nil {
		slog.Error("Invalid refresh token lifetime", "value", *refreshTTL, "error", err)
		os.Exit(1)
	}

	labels := render.English
	switch *locale {
	case "en":
	case "uk":
		labels = render.Ukrainian
	default:
		slog.Error("Unknown locale", "locale", *locale)
		os.Exit(1)
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", *dbPath)

	tokens := auth.NewJWTManager(*jwtSecret, accessDur, refreshDur)
	authenticator := auth.NewPasswordAuthenticator(store)

	authSvc := service.NewAuthService(authenticator, store, tokens, slog.Default())
	receiptSvc := service.NewReceiptService(store, calculator.Policy{
		CashlessUsesTendered: *cashlessTendered,
	}, labels, slog.Default())

	handler := service.Routes(authSvc, receiptSvc, tokens)

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Server starting", "address", addr, "locale", *locale)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
