package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-deeplinks/internal/commands"
	"github.com/goliatone/go-deeplinks/pkg/attribution"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/sources"
)

// Re-export request types so consumers need not import internal packages.
type (
	OpenURL          = internalcommands.OpenURL
	ResolveSession   = internalcommands.ResolveSession
	OpenNotification = internalcommands.OpenNotification
	SetCampaign      = internalcommands.SetCampaign
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog          *internalcommands.Catalog
	OpenURL          command.Commander[OpenURL]
	ResolveSession   command.Commander[ResolveSession]
	OpenNotification command.Commander[OpenNotification]
	SetCampaign      command.Commander[SetCampaign]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Bridge    *sources.Bridge
	Campaigns *attribution.Store
	Logger    logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	internalDeps := internalcommands.Dependencies{Logger: deps.Logger}
	if deps.Bridge != nil {
		internalDeps.Bridge = deps.Bridge
	}
	if deps.Campaigns != nil {
		internalDeps.Campaigns = deps.Campaigns
	}
	catalog, err := internalcommands.NewCatalog(internalDeps)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:          catalog,
		OpenURL:          catalog.OpenURL,
		ResolveSession:   catalog.ResolveSession,
		OpenNotification: catalog.OpenNotification,
		SetCampaign:      catalog.SetCampaign,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.OpenURL,
		r.ResolveSession,
		r.OpenNotification,
		r.SetCampaign,
	}
}
