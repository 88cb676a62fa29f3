package util

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
)

// Config holds the runtime configuration. It is built once in main from
// flags and environment variables and passed by reference into the router
// and handlers.
type Config struct {
	BindAddress   string
	SessionSecret []byte

	// storage backend: "jsondb" (default), "sqlite" or "mysql"
	DBType string
	// file or directory path for the file-backed backends
	DBPath string
	// mysql settings
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBTLS      string

	// optional bootstrap admin, seeded at process start when the email is
	// not registered yet
	AdminEmail    string
	AdminPassword string

	// optional welcome email settings
	SendgridApiKey string
	EmailFrom      string
	EmailFromName  string
	SMTPHostname   string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPAuthType   string
	SMTPEncryption string
	SMTPNoTLSCheck bool

	// optional telegram signup notifications
	TelegramToken  string
	TelegramChatID int64
}

// RandomSecret generates a session signing key for processes started
// without SESSION_SECRET. All prior sessions become invalid on restart.
func RandomSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("cannot generate session secret: %w", err)
	}
	return secret, nil
}

func LookupEnvOrString(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func LookupEnvOrBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.ParseBool(val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrBool[%s]: %v\n", key, err)
			return defaultVal
		}
		return v
	}
	return defaultVal
}

func LookupEnvOrInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.Atoi(val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrInt[%s]: %v\n", key, err)
			return defaultVal
		}
		return v
	}
	return defaultVal
}

func LookupEnvOrInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrInt64[%s]: %v\n", key, err)
			return defaultVal
		}
		return v
	}
	return defaultVal
}
