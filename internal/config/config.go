package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
    Env            string   // application environment (e.g. "dev", "prod")
    Port           string   // HTTP port to listen on
    DBUser         string   // database username
    DBPass         string   // database password (optional)
    DBHost         string   // database host address
    DBPort         string   // database port number
    DBName         string   // database name
    JWTSecret      string   // secret used to sign JWTs
    AccessTTLMin   int      // access token time-to-live in minutes
    RefreshTTLDays int      // refresh token time-to-live in days
    BcryptCost     int      // bcrypt cost for password hashing
    AdminEmails    []string // emails that receive the ADMIN role on registration

    OpenAIKey   string // API key for the interpretation client (empty disables it)
    OpenAIModel string // chat model name, defaults to gpt-3.5-turbo

    SMTPHost   string // SMTP relay host
    SMTPPort   int    // SMTP relay port
    SMTPUser   string // SMTP username, also used as the From address
    SMTPPass   string // SMTP password
    ArchiveBcc string // optional Bcc address copied on every interpretation email
    SenderName string // display name on outgoing mail
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The JWT secret
// deliberately has no fallback: running without one is a misconfiguration.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        AdminEmails:    splitList(os.Getenv("ADMIN_EMAILS")),

        OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
        OpenAIModel: getenv("OPENAI_MODEL", "gpt-3.5-turbo"),

        SMTPHost:   os.Getenv("SMTP_SERVER"),
        SMTPPort:   atoi(getenv("SMTP_PORT", "587")),
        SMTPUser:   os.Getenv("SMTP_USER"),
        SMTPPass:   os.Getenv("SMTP_PASS"),
        ArchiveBcc: os.Getenv("MAIL_ARCHIVE_BCC"),
        SenderName: getenv("MAIL_SENDER_NAME", "Morphea"),
    }
}

// IsAdmin reports whether the given email is listed in ADMIN_EMAILS.
func (c Config) IsAdmin(email string) bool {
    for _, a := range c.AdminEmails {
        if a == email {
            return true
        }
    }
    return false
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

// splitList parses a comma-separated env value into trimmed entries.
func splitList(s string) []string {
    if s == "" {
        return nil
    }
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
