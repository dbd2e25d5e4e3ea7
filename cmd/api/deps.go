package main

import (
	"log"

	"askibill/internal/domain/aggregation"
	"askibill/internal/domain/institution"
	"askibill/internal/infrastructure/aggregator"
	"askibill/internal/infrastructure/postgres"
	httphandlers "askibill/internal/interfaces/http"
	"askibill/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	Service *aggregation.Service

	// Handlers
	InstitutionHandler *httphandlers.InstitutionHandler
	ConnectionHandler  *httphandlers.ConnectionHandler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize repositories
	connectionRepo := postgres.NewConnectionRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	// Initialize one aggregator client per configured provider
	clients := buildClients(cfg.Providers)
	if len(clients) == 0 {
		log.Println("Warning: no aggregator providers configured, connections will fail")
	}

	// The connection repository doubles as the consent resolver so the
	// service can route status checks back to the right provider.
	registry := institution.NewRegistry()
	service := aggregation.NewService(registry, clients, connectionRepo, aggregation.Options{
		ConsentDurationDays: cfg.Aggregator.ConsentDurationDays,
		DataRetentionDays:   cfg.Aggregator.DataRetentionDays,
	})

	// Initialize handlers
	institutionHandler := httphandlers.NewInstitutionHandler(service)
	connectionHandler := httphandlers.NewConnectionHandler(service, connectionRepo, accountRepo, transactionRepo)

	return &Dependencies{
		DB:                 db,
		Service:            service,
		InstitutionHandler: institutionHandler,
		ConnectionHandler:  connectionHandler,
	}, nil
}

func buildClients(pcfg config.ProvidersConfig) map[string]aggregator.ClientInterface {
	clients := make(map[string]aggregator.ClientInterface)

	providers := []struct {
		id  string
		cfg config.ProviderConfig
	}{
		{institution.ProviderSetu, pcfg.Setu},
		{institution.ProviderYodlee, pcfg.Yodlee},
		{institution.ProviderAnumati, pcfg.Anumati},
	}

	for _, p := range providers {
		if !p.cfg.Enabled() {
			continue
		}
		clients[p.id] = aggregator.NewClient(aggregator.Config{
			Provider:     p.id,
			BaseURL:      p.cfg.BaseURL,
			APIKey:       p.cfg.APIKey,
			ClientID:     p.cfg.ClientID,
			ClientSecret: p.cfg.ClientSecret,
			ConsumerID:   pcfg.ConsumerID,
			Timeout:      pcfg.Timeout,
		})
		log.Printf("Aggregator provider enabled: %s (%s)", p.id, p.cfg.BaseURL)
	}

	return clients
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
