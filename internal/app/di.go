// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"

	accessRepository "github.com/allisson/scopedb/internal/access/repository"
	accessUsecase "github.com/allisson/scopedb/internal/access/usecase"
	"github.com/allisson/scopedb/internal/config"
	cryptoDomain "github.com/allisson/scopedb/internal/crypto/domain"
	cryptoService "github.com/allisson/scopedb/internal/crypto/service"
	"github.com/allisson/scopedb/internal/database"
	"github.com/allisson/scopedb/internal/metrics"
	secretsRepository "github.com/allisson/scopedb/internal/secrets/repository"
	secretsUsecase "github.com/allisson/scopedb/internal/secrets/usecase"
	tenantRepository "github.com/allisson/scopedb/internal/tenant/repository"
	tenantUsecase "github.com/allisson/scopedb/internal/tenant/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	mongoClient *mongo.Client
	mongoDB     *mongo.Database

	// Crypto
	masterKey *cryptoDomain.MasterKey
	envelope  cryptoService.Envelope

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	securityMetrics metrics.SecurityMetrics

	// Repositories
	secretRepo       secretsUsecase.SecretRepository
	registrationRepo accessUsecase.RegistrationRepository
	dataRepo         accessUsecase.DataRepository
	tenantRepo       *tenantRepository.MongoTenantRepository

	// Use Cases
	secretsManager secretsUsecase.Manager
	policyRegistry *accessUsecase.PolicyRegistry
	accessEngine   accessUsecase.Engine
	tenantManager  tenantUsecase.Manager

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	mongoInit           sync.Once
	masterKeyInit       sync.Once
	envelopeInit        sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	securityMetricsInit sync.Once
	secretRepoInit      sync.Once
	registrationInit    sync.Once
	dataRepoInit        sync.Once
	tenantRepoInit      sync.Once
	secretsManagerInit  sync.Once
	registryInit        sync.Once
	accessEngineInit    sync.Once
	tenantManagerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MongoDatabase returns the shared database handle, connecting on first access.
func (c *Container) MongoDatabase(ctx context.Context) (*mongo.Database, error) {
	c.mongoInit.Do(func() {
		client, err := database.Connect(ctx, database.Config{
			URI:            c.config.MongoURI,
			Database:       c.config.MongoDatabase,
			ConnectTimeout: c.config.MongoConnectTimeout,
		})
		if err != nil {
			c.initErrors["mongo"] = err
			return
		}
		c.mongoClient = client
		c.mongoDB = client.Database(c.config.MongoDatabase)
	})
	if storedErr, exists := c.initErrors["mongo"]; exists {
		return nil, storedErr
	}
	return c.mongoDB, nil
}

// MasterKey returns the process master key, resolving it through the KMS
// loader on first access.
func (c *Container) MasterKey(ctx context.Context) (*cryptoDomain.MasterKey, error) {
	c.masterKeyInit.Do(func() {
		loader := cryptoService.NewMasterKeyLoader()
		masterKey, err := loader.Load(ctx, c.config.MasterKey, c.config.KMSKeyURI)
		if err != nil {
			c.initErrors["masterKey"] = fmt.Errorf("failed to load master key: %w", err)
			return
		}
		c.masterKey = masterKey
	})
	if storedErr, exists := c.initErrors["masterKey"]; exists {
		return nil, storedErr
	}
	return c.masterKey, nil
}

// Envelope returns the envelope encryption service.
func (c *Container) Envelope(ctx context.Context) (cryptoService.Envelope, error) {
	c.envelopeInit.Do(func() {
		masterKey, err := c.MasterKey(ctx)
		if err != nil {
			c.initErrors["envelope"] = err
			return
		}
		envelope, err := cryptoService.NewEnvelopeService(
			cryptoService.NewAEADManager(),
			masterKey,
			cryptoDomain.Algorithm(c.config.EncryptionAlgorithm),
		)
		if err != nil {
			c.initErrors["envelope"] = fmt.Errorf("failed to create envelope service: %w", err)
			return
		}
		c.envelope = envelope
	})
	if storedErr, exists := c.initErrors["envelope"]; exists {
		return nil, storedErr
	}
	return c.envelope, nil
}

// MetricsProvider returns the metrics provider instance.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder, a no-op when metrics
// are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// SecurityMetrics returns the security metrics recorder, a no-op when metrics
// are disabled.
func (c *Container) SecurityMetrics() (metrics.SecurityMetrics, error) {
	c.securityMetricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.securityMetrics = metrics.NewNoOpSecurityMetrics()
			return
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["securityMetrics"] = err
			return
		}
		securityMetrics, err := metrics.NewSecurityMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["securityMetrics"] = fmt.Errorf("failed to create security metrics: %w", err)
			return
		}
		c.securityMetrics = securityMetrics
	})
	if storedErr, exists := c.initErrors["securityMetrics"]; exists {
		return nil, storedErr
	}
	return c.securityMetrics, nil
}

// SecretRepository returns the app secret repository instance.
func (c *Container) SecretRepository(ctx context.Context) (secretsUsecase.SecretRepository, error) {
	c.secretRepoInit.Do(func() {
		db, err := c.MongoDatabase(ctx)
		if err != nil {
			c.initErrors["secretRepo"] = err
			return
		}
		c.secretRepo = secretsRepository.NewMongoSecretRepository(db, c.config.SecretsCollection)
	})
	if storedErr, exists := c.initErrors["secretRepo"]; exists {
		return nil, storedErr
	}
	return c.secretRepo, nil
}

// RegistrationRepository returns the app registration repository instance.
func (c *Container) RegistrationRepository(ctx context.Context) (accessUsecase.RegistrationRepository, error) {
	c.registrationInit.Do(func() {
		db, err := c.MongoDatabase(ctx)
		if err != nil {
			c.initErrors["registrationRepo"] = err
			return
		}
		c.registrationRepo = accessRepository.NewMongoRegistrationRepository(db, c.config.RegistrationsCollection)
	})
	if storedErr, exists := c.initErrors["registrationRepo"]; exists {
		return nil, storedErr
	}
	return c.registrationRepo, nil
}

// DataRepository returns the raw document repository instance.
func (c *Container) DataRepository(ctx context.Context) (accessUsecase.DataRepository, error) {
	c.dataRepoInit.Do(func() {
		db, err := c.MongoDatabase(ctx)
		if err != nil {
			c.initErrors["dataRepo"] = err
			return
		}
		c.dataRepo = accessRepository.NewMongoDataRepository(db)
	})
	if storedErr, exists := c.initErrors["dataRepo"]; exists {
		return nil, storedErr
	}
	return c.dataRepo, nil
}

// TenantRepository returns the tenant repository instance.
func (c *Container) TenantRepository(ctx context.Context) (*tenantRepository.MongoTenantRepository, error) {
	c.tenantRepoInit.Do(func() {
		db, err := c.MongoDatabase(ctx)
		if err != nil {
			c.initErrors["tenantRepo"] = err
			return
		}
		c.tenantRepo = tenantRepository.NewMongoTenantRepository(db, c.config.TenantCollection)
	})
	if storedErr, exists := c.initErrors["tenantRepo"]; exists {
		return nil, storedErr
	}
	return c.tenantRepo, nil
}

// SecretsManager returns the app secrets manager instance.
func (c *Container) SecretsManager(ctx context.Context) (secretsUsecase.Manager, error) {
	c.secretsManagerInit.Do(func() {
		repo, err := c.SecretRepository(ctx)
		if err != nil {
			c.initErrors["secretsManager"] = err
			return
		}
		envelope, err := c.Envelope(ctx)
		if err != nil {
			c.initErrors["secretsManager"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["secretsManager"] = err
			return
		}
		securityMetrics, err := c.SecurityMetrics()
		if err != nil {
			c.initErrors["secretsManager"] = err
			return
		}
		manager := secretsUsecase.NewSecretsManager(
			repo,
			envelope,
			cryptoDomain.Algorithm(c.config.EncryptionAlgorithm),
			securityMetrics,
			c.Logger(),
		)
		c.secretsManager = secretsUsecase.NewManagerWithMetrics(manager, businessMetrics)
	})
	if storedErr, exists := c.initErrors["secretsManager"]; exists {
		return nil, storedErr
	}
	return c.secretsManager, nil
}

// PolicyRegistry returns the in-memory access policy registry.
func (c *Container) PolicyRegistry() *accessUsecase.PolicyRegistry {
	c.registryInit.Do(func() {
		c.policyRegistry = accessUsecase.NewPolicyRegistry()
	})
	return c.policyRegistry
}

// AccessEngine returns the scoped access engine instance.
func (c *Container) AccessEngine(ctx context.Context) (accessUsecase.Engine, error) {
	c.accessEngineInit.Do(func() {
		secretsManager, err := c.SecretsManager(ctx)
		if err != nil {
			c.initErrors["accessEngine"] = err
			return
		}
		registrationRepo, err := c.RegistrationRepository(ctx)
		if err != nil {
			c.initErrors["accessEngine"] = err
			return
		}
		dataRepo, err := c.DataRepository(ctx)
		if err != nil {
			c.initErrors["accessEngine"] = err
			return
		}
		securityMetrics, err := c.SecurityMetrics()
		if err != nil {
			c.initErrors["accessEngine"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["accessEngine"] = err
			return
		}
		engine := accessUsecase.NewEngine(
			c.PolicyRegistry(),
			secretsManager,
			registrationRepo,
			dataRepo,
			securityMetrics,
			c.Logger(),
		)
		c.accessEngine = accessUsecase.NewEngineWithMetrics(engine, businessMetrics)
	})
	if storedErr, exists := c.initErrors["accessEngine"]; exists {
		return nil, storedErr
	}
	return c.accessEngine, nil
}

// TenantManager returns the tenant manager instance.
func (c *Container) TenantManager(ctx context.Context) (tenantUsecase.Manager, error) {
	c.tenantManagerInit.Do(func() {
		repo, err := c.TenantRepository(ctx)
		if err != nil {
			c.initErrors["tenantManager"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["tenantManager"] = err
			return
		}
		manager := tenantUsecase.NewManager(
			repo,
			tenantUsecase.Config{
				AutoCreate: c.config.TenantAutoCreate,
				Required:   c.config.TenantRequired,
			},
			c.Logger(),
		)
		c.tenantManager = tenantUsecase.NewManagerWithMetrics(manager, businessMetrics)
	})
	if storedErr, exists := c.initErrors["tenantManager"]; exists {
		return nil, storedErr
	}
	return c.tenantManager, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("mongo disconnect: %w", err))
		}
	}

	if c.masterKey != nil {
		c.masterKey.Close()
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
