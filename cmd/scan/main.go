// Command scan is an operational CLI for the barcode traceability
// subsystem: decode GS1-128 element strings, resolve them to products
// and lots, record deliveries, and query delivery history.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	appidentity "github.com/vetcrm/backend/internal/application/identity"
	apptraceability "github.com/vetcrm/backend/internal/application/traceability"
	"github.com/vetcrm/backend/internal/domain/traceability"
	"github.com/vetcrm/backend/internal/infrastructure/cache"
	"github.com/vetcrm/backend/internal/infrastructure/config"
	"github.com/vetcrm/backend/internal/infrastructure/logger"
	"github.com/vetcrm/backend/internal/infrastructure/persistence"
	"github.com/vetcrm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// Decode needs no configuration or storage
	if command == "decode" {
		runDecode(args[1:])
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracerProvider.Shutdown(shutdownCtx)
	}()

	gormLog := logger.NewGormLogger(log, gormlogger.Warn)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBSystem:   "postgresql",
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	lotRepo := persistence.NewGormLotRepository(db.DB)
	deliveryRepo := persistence.NewGormDeliveryRecordRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	tenantResolver := persistence.NewDefaultTenantResolver(tenantRepo, cfg.Scan.DefaultTenantCode)

	var scanOpts []apptraceability.ScanServiceOption
	if cfg.Scan.CacheEnabled {
		factory := cache.NewProductCacheFactory(cfg.Redis, cfg.Scan.CacheTTL, cache.WithLogger(log))
		productCache, err := factory.CreateCache()
		if err != nil {
			log.Fatal("Failed to create product cache", zap.Error(err))
		}
		scanOpts = append(scanOpts, apptraceability.WithProductIDCache(productCache))
	}

	scanService := apptraceability.NewScanService(productRepo, lotRepo, tenantResolver, scanOpts...)
	traceService := apptraceability.NewTraceabilityService(lotRepo, deliveryRepo)
	tenantService := appidentity.NewTenantService(tenantRepo, log)

	ctx, scanLog := logger.WithScanID(logger.WithContext(ctx, log), log, uuid.NewString())

	switch command {
	case "resolve":
		runResolve(ctx, scanLog, scanService, args[1:])
	case "deliver":
		runDeliver(ctx, scanLog, traceService, args[1:])
	case "trace":
		runTrace(ctx, scanLog, traceService, args[1:])
	case "tenant-init":
		runTenantInit(ctx, scanLog, tenantService, cfg.Scan.DefaultTenantCode, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}
}

// runDecode parses an element string and prints the structured result
func runDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scan decode <barcode>")
		os.Exit(1)
	}

	decoded, err := traceability.Decode(fs.Arg(0))
	if err != nil {
		var decodeErr *traceability.DecodeError
		if errors.As(err, &decodeErr) {
			fmt.Fprintf(os.Stderr, "decode failed [%s]: %s\n", decodeErr.Kind, decodeErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		}
		os.Exit(1)
	}

	printJSON(decoded)
}

func runResolve(ctx context.Context, log *zap.Logger, svc *apptraceability.ScanService, args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	name := fs.String("name", "", "Display name for a newly created product")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scan resolve [-name <name>] <barcode>")
		os.Exit(1)
	}

	result, err := svc.DecodeAndResolve(ctx, fs.Arg(0), *name)
	if err != nil {
		log.Fatal("Resolve failed", zap.Error(err))
	}

	log.Info("Barcode resolved",
		zap.String("gtin", result.Product.GTIN),
		zap.String("lot_number", result.Lot.LotNumber),
		zap.Bool("is_new_product", result.IsNewProduct),
	)
	printJSON(result)
}

func runDeliver(ctx context.Context, log *zap.Logger, svc *apptraceability.TraceabilityService, args []string) {
	fs := flag.NewFlagSet("deliver", flag.ExitOnError)
	lotID := fs.String("lot", "", "Lot id (uuid)")
	clientID := fs.String("client", "", "Client id (uuid)")
	quantity := fs.Int("quantity", 1, "Units delivered")
	_ = fs.Parse(args)

	lot, err := uuid.Parse(*lotID)
	if err != nil {
		log.Fatal("Invalid lot id", zap.String("value", *lotID))
	}
	client, err := uuid.Parse(*clientID)
	if err != nil {
		log.Fatal("Invalid client id", zap.String("value", *clientID))
	}

	delivery, err := svc.AssociateDelivery(ctx, apptraceability.AssociateDeliveryRequest{
		LotID:    lot,
		ClientID: client,
		Quantity: *quantity,
	})
	if err != nil {
		log.Fatal("Deliver failed", zap.Error(err))
	}

	log.Info("Delivery recorded",
		zap.String("delivery_id", delivery.ID.String()),
		zap.Int("quantity", delivery.Quantity),
	)
	printJSON(delivery)
}

func runTrace(ctx context.Context, log *zap.Logger, svc *apptraceability.TraceabilityService, args []string) {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	lotID := fs.String("lot", "", "Lot id (uuid)")
	_ = fs.Parse(args)

	lot, err := uuid.Parse(*lotID)
	if err != nil {
		log.Fatal("Invalid lot id", zap.String("value", *lotID))
	}

	report, err := svc.GetTraceability(ctx, lot)
	if err != nil {
		log.Fatal("Trace failed", zap.Error(err))
	}

	printJSON(report)
}

// runTenantInit provisions the tenant that owns scan-originated products.
// Without it the resolve command fails with TENANT_NOT_CONFIGURED.
func runTenantInit(ctx context.Context, log *zap.Logger, svc *appidentity.TenantService, defaultCode string, args []string) {
	fs := flag.NewFlagSet("tenant-init", flag.ExitOnError)
	code := fs.String("code", defaultCode, "Tenant code")
	name := fs.String("name", "", "Tenant display name")
	_ = fs.Parse(args)

	tenantName := *name
	if tenantName == "" {
		tenantName = *code
	}

	tenant, err := svc.Provision(ctx, *code, tenantName)
	if err != nil {
		log.Fatal("Tenant provisioning failed", zap.Error(err))
	}

	printJSON(tenant)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode output: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: scan <command> [args]

Commands:
  decode <barcode>                               Decode an element string without touching storage
  resolve [-name <name>] <barcode>               Decode and find-or-create the product and lot
  deliver -lot <uuid> -client <uuid> [-quantity n]  Record a delivery of a lot to a client
  trace -lot <uuid>                              Show the delivery history of a lot
  tenant-init [-code <code>] [-name <name>]      Provision the tenant that owns scanned products`)
}
