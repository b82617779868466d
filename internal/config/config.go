package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable and is read exactly once at process start.
// Absence of a database setting is fatal; absence of a Stripe credential
// only degrades the payment endpoints, the process still serves the rest
// of the API.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	StripeSecretKey     string // Stripe API secret key (empty = payments disabled)
	StripeWebhookSecret string // Stripe webhook signing secret
	CheckoutBaseURL     string // base URL for checkout success/cancel redirects
	BundlePriceCents    int64  // price of the full route bundle in cents
	SinglePriceCents    int64  // price of a single-route purchase in cents

	AdminUserIDs map[uint64]bool // user ids with unconditional license status

	ChatAPIURL     string // chat-completions endpoint of the LLM provider
	ChatAPIKey     string // API key for the LLM provider
	ChatModel      string // model name sent with every completion request
	ChatDailyQuota int    // per-user chatbot messages per day
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    envStr("APP_ENV", "dev"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 30),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     envInt("BCRYPT_COST", 12),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CheckoutBaseURL:     envStr("CHECKOUT_BASE_URL", "http://localhost:3000"),
		BundlePriceCents:    envInt64("BUNDLE_PRICE_CENTS", 1399),
		SinglePriceCents:    envInt64("SINGLE_PRICE_CENTS", 499),

		AdminUserIDs: parseAdminIDs(os.Getenv("ADMIN_USER_IDS")),

		ChatAPIURL:     envStr("CHAT_API_URL", "https://api.openai.com/v1/chat/completions"),
		ChatAPIKey:     os.Getenv("CHAT_API_KEY"),
		ChatModel:      envStr("CHAT_MODEL", "gpt-4o-mini"),
		ChatDailyQuota: envInt("CHAT_DAILY_QUOTA", 20),
	}
}

// parseAdminIDs turns a comma-separated list of user ids into a lookup
// set. Malformed entries are skipped rather than treated as fatal; an
// unparsable allow-list must not take the whole service down.
func parseAdminIDs(raw string) map[uint64]bool {
	out := make(map[uint64]bool)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			log.Printf("config: skipping bad ADMIN_USER_IDS entry %q", p)
			continue
		}
		out[id] = true
	}
	return out
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envInt64(k string, d int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return d
}
