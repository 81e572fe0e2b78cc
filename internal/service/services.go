package service

import (
	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
)

// Services bundles the server-side business logic behind one constructor.
type Services struct {
	AuthService
	SyncService
}

func NewServices(storages *store.Storages, verifier adapter.IDTokenVerifier, cfg config.App, log *logger.Logger) *Services {
	serviceLogger := log.GetChildLogger()

	return &Services{
		AuthService: NewAuthService(storages.UserRepository, verifier, cfg, serviceLogger),
		SyncService: NewSyncService(storages.SyncRepository, serviceLogger),
	}
}
