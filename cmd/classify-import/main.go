// Command classify-import creates a facility's classification hierarchy from
// an xlsx sheet of major, middle and minor names.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JaimeStill/optigate/internal/classifications"
	"github.com/JaimeStill/optigate/internal/config"
	"github.com/JaimeStill/optigate/internal/tenants"
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/database"
	"github.com/JaimeStill/optigate/pkg/metrics"
	"github.com/JaimeStill/optigate/pkg/validation"
)

func main() {
	var (
		file       = flag.String("file", "", "Path to the xlsx workbook")
		facilityID = flag.Int64("facility", 0, "Facility ID receiving the hierarchy")
		sheet      = flag.String("sheet", "Hierarchy", "Sheet holding major, middle and minor names")
		aliases    = flag.String("aliases", "", "Optional sheet mapping source names to target names")
		actor      = flag.String("actor", "classify-import", "Name recorded as creator")
	)
	flag.Parse()

	if *file == "" || *facilityID <= 0 {
		fmt.Println("usage: classify-import -file <workbook.xlsx> -facility <id> [-sheet name] [-aliases name]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(ctx, cfg, logger, *file, *facilityID, *sheet, *aliases, *actor); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, file string, facilityID int64, sheet, aliasSheet, actor string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, aliases, err := classifications.ReadSheet(f, sheet, aliasSheet)
	if err != nil {
		return err
	}

	tree := classifications.BuildTree(rows, aliases)
	logger.Info(
		"hierarchy read",
		"file", file,
		"rows", len(rows),
		"nodes", len(tree.Nodes),
		"skipped", tree.Skipped,
	)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return err
	}
	conn := db.Connection()
	defer conn.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnTimeoutDuration())
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}

	now := func() time.Time { return time.Now().UTC() }
	validator := validation.New()
	tenantsSystem := tenants.New(conn, validator, logger, now)
	classificationsSystem := classifications.New(
		conn,
		tenantsSystem,
		validator,
		metrics.Discard,
		logger,
		cfg.API.Pagination,
		now,
	)

	ctx = auth.WithPrincipal(ctx, auth.Service(actor))
	result, err := classificationsSystem.Import(ctx, facilityID, tree, auth.Actor(ctx))
	if err != nil {
		return err
	}

	fmt.Printf(
		"facility %d: %d created, %d existing, %d skipped\n",
		result.FacilityID, result.Created, result.Existing, result.Skipped,
	)
	return nil
}
