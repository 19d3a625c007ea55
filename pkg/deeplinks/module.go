// Package deeplinks is the module facade: it assembles the link router and
// exposes the handful of calls a host application needs.
package deeplinks

import (
	"context"

	"github.com/goliatone/go-deeplinks/internal/di"
	"github.com/goliatone/go-deeplinks/internal/router"
	"github.com/goliatone/go-deeplinks/pkg/commands"
	"github.com/goliatone/go-deeplinks/pkg/config"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/latch"
	"github.com/goliatone/go-deeplinks/pkg/links"
	"github.com/goliatone/go-deeplinks/pkg/sources"
	"github.com/goliatone/go-deeplinks/pkg/storage"
)

// ModuleOptions configure the module facade.
type ModuleOptions struct {
	Config       config.Config
	Storage      storage.Providers
	Logger       logger.Logger
	Observer     links.Observer
	URLs         sources.URLSource
	Attribution  sources.AttributionSource
	Notification sources.NotificationSource
	BridgeBuffer int
}

// Module bundles the container and exposes high-level accessors.
type Module struct {
	container *di.Container
}

// NewModule assembles stores, normalizer, router and commands.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:       opts.Config,
		Storage:      opts.Storage,
		Logger:       opts.Logger,
		Observer:     opts.Observer,
		URLs:         opts.URLs,
		Attribution:  opts.Attribution,
		Notification: opts.Notification,
		BridgeBuffer: opts.BridgeBuffer,
	})
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Start launches the source adapters.
func (m *Module) Start(ctx context.Context) error {
	return m.container.Router.Start(ctx)
}

// Attach registers the single link consumer. A link buffered before the call
// is delivered before Attach returns.
func (m *Module) Attach(fn func(link string)) latch.Detach {
	return m.container.Router.Attach(fn)
}

// CampaignID returns the last recorded campaign id.
func (m *Module) CampaignID(ctx context.Context) (string, bool) {
	return m.container.Router.CampaignID(ctx)
}

// Close stops the adapters and the host bridge.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	err := m.container.Router.Close()
	if bridgeErr := m.container.Bridge.Close(); err == nil {
		err = bridgeErr
	}
	return err
}

// Router returns the link router.
func (m *Module) Router() *router.Router {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Router
}

// Bridge returns the host bridge that feeds platform callbacks in.
func (m *Module) Bridge() *sources.Bridge {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Bridge
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}
