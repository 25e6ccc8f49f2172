package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/chanjohealth/chanjobot/internal/api"
	"github.com/chanjohealth/chanjobot/internal/backend"
	"github.com/chanjohealth/chanjobot/internal/flow"
	"github.com/chanjohealth/chanjobot/internal/messaging"
	"github.com/chanjohealth/chanjobot/internal/store"
	"github.com/chanjohealth/chanjobot/internal/twiliowhatsapp"
	"github.com/chanjohealth/chanjobot/internal/util"
	"github.com/chanjohealth/chanjobot/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Messaging provider names accepted in MESSAGING_PROVIDER.
const (
	ProviderCloudAPI = "cloud"
	ProviderTwilio   = "twilio"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize conversation store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	msgService, err := buildMessagingService(flags)
	if err != nil {
		slog.Error("Failed to initialize messaging service", "error", err)
		os.Exit(1)
	}

	backendClient, err := backend.NewClient(
		backend.WithBaseURL(*flags.backendURL),
		backend.WithAPIToken(*flags.backendToken),
	)
	if err != nil {
		slog.Error("Failed to initialize backend client", "error", err)
		os.Exit(1)
	}

	engine := flow.NewEngine(st, backendClient, msgService, flags.allowedSenders)

	server := api.NewServer(engine,
		api.WithAddr(*flags.apiAddr),
		api.WithVerifyToken(*flags.verifyToken),
	)

	slog.Info("Bootstrapping ChanjoBot", "addr", *flags.apiAddr, "allowed_senders", len(flags.allowedSenders))
	if err := server.Run(); err != nil {
		slog.Error("ChanjoBot failed to run", "error", err)
		os.Exit(1)
	}
}

// Config holds environment configuration.
type Config struct {
	VerifyToken    string
	AccessToken    string
	PhoneNumberID  string
	BackendURL     string
	BackendToken   string
	AllowedSenders []string
	APIAddr        string
	DBDSN          string
	RedisAddr      string
	Provider       string
}

// Flags holds command line flag values.
type Flags struct {
	verifyToken    *string
	accessToken    *string
	phoneNumberID  *string
	backendURL     *string
	backendToken   *string
	apiAddr        *string
	dbDSN          *string
	redisAddr      *string
	provider       *string
	allowedSenders []string
}

// initializeLogger sets up structured logging.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("CHANJOBOT_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		VerifyToken:    os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		AccessToken:    os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		BackendURL:     os.Getenv("BACKEND_BASE_URL"),
		BackendToken:   os.Getenv("BACKEND_API_TOKEN"),
		AllowedSenders: util.ParseListEnv("ALLOWED_SENDERS"),
		APIAddr:        os.Getenv("API_ADDR"),
		DBDSN:          os.Getenv("CHANJOBOT_DB_DSN"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		Provider:       os.Getenv("MESSAGING_PROVIDER"),
	}

	if config.DBDSN == "" {
		config.DBDSN = os.Getenv("DATABASE_URL")
	}
	if config.APIAddr == "" {
		config.APIAddr = api.DefaultAddr
	}
	if config.Provider == "" {
		config.Provider = ProviderCloudAPI
	}

	slog.Debug("environment variables loaded",
		"WHATSAPP_VERIFY_TOKEN_SET", config.VerifyToken != "",
		"WHATSAPP_ACCESS_TOKEN_SET", config.AccessToken != "",
		"WHATSAPP_PHONE_NUMBER_ID_SET", config.PhoneNumberID != "",
		"BACKEND_BASE_URL", config.BackendURL,
		"BACKEND_API_TOKEN_SET", config.BackendToken != "",
		"ALLOWED_SENDERS", len(config.AllowedSenders),
		"API_ADDR", config.APIAddr,
		"DB_DSN_SET", config.DBDSN != "",
		"REDIS_ADDR", config.RedisAddr,
		"MESSAGING_PROVIDER", config.Provider)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults.
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		verifyToken:   flag.String("verify-token", config.VerifyToken, "webhook verification token (overrides $WHATSAPP_VERIFY_TOKEN)"),
		accessToken:   flag.String("access-token", config.AccessToken, "WhatsApp Cloud API access token (overrides $WHATSAPP_ACCESS_TOKEN)"),
		phoneNumberID: flag.String("phone-number-id", config.PhoneNumberID, "WhatsApp business phone number ID (overrides $WHATSAPP_PHONE_NUMBER_ID)"),
		backendURL:    flag.String("backend-url", config.BackendURL, "clinic backend base URL (overrides $BACKEND_BASE_URL)"),
		backendToken:  flag.String("backend-token", config.BackendToken, "clinic backend API token (overrides $BACKEND_API_TOKEN)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "webhook server address (overrides $API_ADDR)"),
		dbDSN:         flag.String("db-dsn", config.DBDSN, "conversation store DSN, SQLite path or postgres:// URL (overrides $CHANJOBOT_DB_DSN or $DATABASE_URL)"),
		redisAddr:     flag.String("redis-addr", config.RedisAddr, "Redis address for the conversation store (overrides $REDIS_ADDR)"),
		provider:      flag.String("provider", config.Provider, "messaging provider, cloud or twilio (overrides $MESSAGING_PROVIDER)"),
	}
	allowed := flag.String("allowed-senders", strings.Join(config.AllowedSenders, ","), "comma-separated allow-list of CHW phone numbers (overrides $ALLOWED_SENDERS)")

	flag.Parse()

	for _, s := range strings.Split(*allowed, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			flags.allowedSenders = append(flags.allowedSenders, s)
		}
	}

	slog.Debug("flags parsed",
		"verifyTokenSet", *flags.verifyToken != "",
		"accessTokenSet", *flags.accessToken != "",
		"phoneNumberID", *flags.phoneNumberID,
		"backendURL", *flags.backendURL,
		"apiAddr", *flags.apiAddr,
		"dbDSN_set", *flags.dbDSN != "",
		"redisAddr", *flags.redisAddr,
		"provider", *flags.provider,
		"allowedSenders", len(flags.allowedSenders))

	return flags
}

// buildStore selects a conversation store backend: Redis when configured,
// otherwise SQLite or PostgreSQL by DSN, otherwise in-memory.
func buildStore(flags Flags) (store.Store, error) {
	if *flags.redisAddr != "" {
		slog.Info("Using Redis conversation store", "addr", *flags.redisAddr)
		return store.NewRedisStore(store.WithRedisAddr(*flags.redisAddr))
	}
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Info("Using PostgreSQL conversation store")
			return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
		}
		slog.Info("Using SQLite conversation store", "path", *flags.dbDSN)
		return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
	}
	slog.Info("No store DSN provided, using in-memory conversation store")
	return store.NewInMemoryStore(), nil
}

// buildMessagingService selects the outbound messaging provider.
func buildMessagingService(flags Flags) (messaging.Service, error) {
	switch *flags.provider {
	case ProviderTwilio:
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, err
		}
		slog.Info("Using Twilio messaging provider")
		return messaging.NewTwilioService(client), nil
	default:
		client, err := whatsapp.NewClient(
			whatsapp.WithAccessToken(*flags.accessToken),
			whatsapp.WithPhoneNumberID(*flags.phoneNumberID),
		)
		if err != nil {
			return nil, err
		}
		slog.Info("Using WhatsApp Cloud API messaging provider")
		return messaging.NewCloudAPIService(client), nil
	}
}
