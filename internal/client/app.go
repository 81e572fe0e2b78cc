package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/tui"
)

// App ties the engine lifecycle to the UI loop: initialize, run the screen,
// sign out and restart when the user logs out.
type App struct {
	services *service.ClientServices
	ui       *tui.TUI
	logger   *logger.Logger
}

func NewApp(services *service.ClientServices, ui *tui.TUI, log *logger.Logger) (*App, error) {
	if services == nil || ui == nil {
		return nil, errors.New("nil client dependencies")
	}
	return &App{services: services, ui: ui, logger: log}, nil
}

func (a *App) Run() error {
	ctx := context.Background()

	if err := a.services.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	defer a.services.Close()

	for {
		logout, err := a.ui.Run(ctx)
		if err != nil {
			if errors.Is(err, tui.ErrUserQuit) {
				return nil
			}
			return err
		}
		if !logout {
			return nil
		}

		if err = a.services.SignOut(ctx); err != nil {
			return fmt.Errorf("sign out: %w", err)
		}
	}
}
