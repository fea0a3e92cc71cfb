package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	api "github.com/rpupo63/portfolio-intake-backend/api"
	"github.com/rpupo63/portfolio-intake-backend/config"
	"github.com/rpupo63/portfolio-intake-backend/database"
	"github.com/rpupo63/portfolio-intake-backend/models"
	"github.com/rpupo63/portfolio-intake-backend/services"
)

const queryOutPath = "./generated"

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	ctx := context.Background()
	c := config.New()

	if path := config.GetString(c, "SSM_PARAMETER_PATH", ""); path != "" {
		overrides, err := config.LoadSSMParameters(ctx, path)
		if err != nil {
			fmt.Printf("Error loading parameters from %s: %v\n", path, err)
			os.Exit(1)
		}
		c = config.Merge(c, overrides)
	}

	settings, err := config.Load(c)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogging(settings.LogLevel)

	conn := database.NewConnectionManager(database.PostgresOpener(settings.DatabaseURL, settings.DatabaseReplicaURL))
	defer conn.Close()

	db, err := openDatabase(ctx, conn, settings.StoreTimeout)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to the database")
		conn.Close()
		os.Exit(1)
	}

	// If generating query helpers, run generation and exit
	if settings.GenerateQueries {
		fmt.Println("Generating query helpers...")
		gormDB, _ := conn.DB()
		models.GenerateQueries(gormDB, queryOutPath)
		return
	}

	intake := newIntakeService(settings, db)

	errChannel := make(chan error, 2)

	server := api.NewServer(settings, intake)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// openDatabase connects, migrates, reports schema drift and returns the repositories. Nothing is served until it succeeds.
func openDatabase(ctx context.Context, conn *database.ConnectionManager, storeTimeout time.Duration) (database.Database, error) {
	if err := conn.Connect(ctx); err != nil {
		return database.Database{}, err
	}

	db, err := conn.DB()
	if err != nil {
		return database.Database{}, err
	}

	d := database.New(db, storeTimeout)
	if err := d.Migrate(); err != nil {
		return database.Database{}, fmt.Errorf("migrate: %w", err)
	}

	report, err := models.ColumnMismatchReport(db)
	if err != nil {
		log.Warn().Err(err).Msg("Could not generate column mismatch report")
	}
	for _, m := range report {
		log.Warn().Str("table", m.Table).Strs("columns", m.Columns).Msg("Columns not accounted for in model")
	}
	return d, nil
}

func newIntakeService(settings config.Settings, db database.Database) *services.IntakeService {
	return services.NewIntakeService(
		db.RequestRepo(),
		newNotifier(settings),
		settings.OperatorName,
		settings.OperatorEmail,
	)
}

// newNotifier wires the providers that are configured. Without RESEND_API_KEY emails are skipped.
func newNotifier(settings config.Settings) *services.Notifier {
	var opts []func(*services.Notifier)

	if settings.EmailEnabled() {
		resend := services.NewResendClient(settings.ResendAPIKey, settings.EmailTimeout)
		opts = append(opts, services.WithEmailSender(resend, settings.ResendFromEmail, settings.NotifyToEmail))
	} else {
		log.Warn().Msg("RESEND_API_KEY is not set; notifications will be skipped")
	}

	if settings.SMSEnabled() {
		twilio := services.NewTwilioClient(
			settings.TwilioAccountSID,
			settings.TwilioAuthToken,
			settings.TwilioFromNumber,
			settings.OperatorPhone,
		)
		opts = append(opts, services.WithSMSSender(twilio))
	}

	return services.NewNotifier(opts...)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
