package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// APIURL is the base URL of the sync server.
	APIURL string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientDBView contains local replica settings for the client.
type ClientDBView struct {
	// Path is the SQLite file path of the local replica.
	Path string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDBView
}

// ClientWorkers contains client sync scheduling settings.
type ClientWorkers struct {
	// SyncInterval defines how often the periodic sync tick fires.
	SyncInterval time.Duration
	// DebounceDelay is the post-edit quiescence window before a sync.
	DebounceDelay time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Adapter contains client transport address and timeout.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Workers contains sync scheduling settings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from
// the merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			APIURL:         cfg.Adapter.APIURL,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDBView{
				Path: cfg.Storage.ClientDB.Path,
			},
		},
		Workers: ClientWorkers{
			SyncInterval:  cfg.Workers.SyncInterval,
			DebounceDelay: cfg.Workers.DebounceDelay,
		},
	}

	return clientCfg, clientCfg.validate()
}
