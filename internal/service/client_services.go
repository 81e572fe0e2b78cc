package service

import (
	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
)

// ClientServices bundles the client-side engine behind one constructor.
type ClientServices struct {
	SyncEngine
}

func NewClientServices(storages *store.ClientStorages, server adapter.ServerAdapter, cfg config.ClientWorkers, log *logger.Logger) *ClientServices {
	return &ClientServices{
		SyncEngine: NewSyncEngine(storages.LocalStorage, server, cfg, log.GetChildLogger()),
	}
}
