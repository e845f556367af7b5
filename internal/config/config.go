// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// MongoURI is the connection string for the MongoDB cluster.
	MongoURI string
	// MongoDatabase is the name of the shared database all apps live in.
	MongoDatabase string
	// MongoConnectTimeout is the timeout for establishing the initial connection.
	MongoConnectTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// MasterKey is the base64-encoded 32-byte master key. When KMSKeyURI is
	// set, this value is instead the KMS-wrapped master key ciphertext.
	MasterKey string
	// KMSKeyURI is the gocloud.dev keeper URI used to unwrap the master key
	// (e.g., "gcpkms://...", "awskms://...", "hashivault://..."). Empty means
	// MasterKey is used directly.
	KMSKeyURI string
	// EncryptionAlgorithm selects the AEAD used for new secret records
	// ("AES-256-GCM" or "ChaCha20-Poly1305").
	EncryptionAlgorithm string

	// SecretsCollection is the collection holding encrypted app secrets.
	SecretsCollection string
	// RegistrationsCollection is the collection holding persisted app registrations.
	RegistrationsCollection string

	// TenantCollection is the per-app logical collection name for tenant documents.
	TenantCollection string
	// TenantAutoCreate enables lazy tenant provisioning on first reference.
	TenantAutoCreate bool
	// TenantRequired makes a missing tenant a client error instead of a no-op.
	TenantRequired bool

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Storage configuration
		MongoURI:            env.GetString("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       env.GetString("MONGO_DATABASE", "scopedb"),
		MongoConnectTimeout: env.GetDuration("MONGO_CONNECT_TIMEOUT_SECONDS", 10, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Master key configuration
		MasterKey:           env.GetString("SCOPEDB_MASTER_KEY", ""),
		KMSKeyURI:           env.GetString("KMS_KEY_URI", ""),
		EncryptionAlgorithm: env.GetString("ENCRYPTION_ALGORITHM", "AES-256-GCM"),

		// Collections
		SecretsCollection:       env.GetString("SECRETS_COLLECTION", "app_secrets"),
		RegistrationsCollection: env.GetString("REGISTRATIONS_COLLECTION", "app_registrations"),

		// Tenant defaults
		TenantCollection: env.GetString("TENANT_COLLECTION", "tenants"),
		TenantAutoCreate: env.GetBool("TENANT_AUTO_CREATE", true),
		TenantRequired:   env.GetBool("TENANT_REQUIRED", true),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "scopedb"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
