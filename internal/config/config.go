package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time parses duration-valued settings
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, cents for money.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing

    EconomyFareCents  uint64 // base fare for an economy ticket
    BusinessFareCents uint64 // base fare for a business ticket
    SeatSurchargeCents uint64 // extra charge once a seat number is chosen

    HoldWindow    time.Duration // how long a booked ticket may sit unpaid
    ExpiryPolicy  string        // what to do with expired tickets: "reset" or "delete"
    SweepInterval time.Duration // how often the expiry worker scans for stale tickets

    WayForPayMerchant   string // merchant account name
    WayForPayDomain     string // merchant domain registered with the gateway
    WayForPaySecret     string // HMAC key for request and callback signatures
    WayForPayAPIURL     string // gateway API endpoint
    WayForPayServiceURL string // our callback URL sent with each invoice
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    cfg := Config{
        Env:            must("APP_ENV"),             // environment (dev/test/prod)
        Port:           must("APP_PORT"),            // port to bind the HTTP server
        DBUser:         must("DB_USER"),             // database user
        DBPass:         os.Getenv("DB_PASS"),        // database password (empty allowed)
        DBHost:         must("DB_HOST"),             // database host
        DBPort:         must("DB_PORT"),             // database port
        DBName:         must("DB_NAME"),             // database name
        JWTSecret:      must("JWT_SECRET"),          // secret used for signing JWTs
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
        BcryptCost:     mustInt("BCRYPT_COST"),      // bcrypt cost factor

        EconomyFareCents:   mustCents("ECONOMY_FARE_CENTS"),
        BusinessFareCents:  mustCents("BUSINESS_FARE_CENTS"),
        SeatSurchargeCents: mustCents("SEAT_SURCHARGE_CENTS"),

        HoldWindow:    durationOr("TICKET_HOLD_WINDOW", 30*time.Minute),
        ExpiryPolicy:  envStr("TICKET_EXPIRY_POLICY", "reset"),
        SweepInterval: durationOr("EXPIRY_SWEEP_INTERVAL", time.Minute),

        WayForPayMerchant:   must("WAYFORPAY_MERCHANT_ACCOUNT"),
        WayForPayDomain:     must("WAYFORPAY_MERCHANT_DOMAIN"),
        WayForPaySecret:     must("WAYFORPAY_SECRET_KEY"),
        WayForPayAPIURL:     envStr("WAYFORPAY_API_URL", "https://api.wayforpay.com/api"),
        WayForPayServiceURL: must("WAYFORPAY_SERVICE_URL"),
    }
    if cfg.ExpiryPolicy != "reset" && cfg.ExpiryPolicy != "delete" {
        log.Fatalf("invalid TICKET_EXPIRY_POLICY: %q (want reset or delete)", cfg.ExpiryPolicy)
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// mustCents parses a required non-negative money amount given in cents.
func mustCents(key string) uint64 {
    s := must(key)
    n, err := strconv.ParseUint(s, 10, 64)
    if err != nil {
        log.Fatalf("invalid cents for %s: %q", key, s)
    }
    return n
}

// durationOr parses an optional duration (e.g. "30m", "24h"); unset or
// empty falls back to the default, a malformed value is fatal.
func durationOr(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    d, err := time.ParseDuration(v)
    if err != nil {
        log.Fatalf("invalid duration for %s: %q", key, v)
    }
    return d
}
