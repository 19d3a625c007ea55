package di

import (
	"reflect"

	"github.com/goliatone/go-deeplinks/internal/router"
	"github.com/goliatone/go-deeplinks/pkg/attribution"
	"github.com/goliatone/go-deeplinks/pkg/commands"
	"github.com/goliatone/go-deeplinks/pkg/config"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
	"github.com/goliatone/go-deeplinks/pkg/latch"
	"github.com/goliatone/go-deeplinks/pkg/links"
	"github.com/goliatone/go-deeplinks/pkg/options"
	"github.com/goliatone/go-deeplinks/pkg/sources"
	"github.com/goliatone/go-deeplinks/pkg/storage"
)

// Options configure the DI container. Sources left nil are served by the
// host bridge.
type Options struct {
	Config       config.Config
	Storage      storage.Providers
	Logger       logger.Logger
	Observer     links.Observer
	URLs         sources.URLSource
	Attribution  sources.AttributionSource
	Notification sources.NotificationSource
	BridgeBuffer int
}

// Container wires stores, normalizer, latch, router and commands.
type Container struct {
	Config     config.Config
	Storage    storage.Providers
	Options    *options.Resolver
	Campaigns  *attribution.Store
	Normalizer *links.Normalizer
	Latch      *latch.Latch
	Bridge     *sources.Bridge
	Router     *router.Router
	Commands   *commands.Registry
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	providers := opts.Storage
	if providers.KeyValues == nil {
		providers = storage.NewMemoryProviders()
	}
	if !cfg.Links.Audit || providers.Links == nil {
		providers.Links = &store.NopLinkRecords{}
	}

	lgr := logger.OrNop(opts.Logger)

	resolver, err := options.ForPlatform(cfg.Platform, options.PushOverrides(cfg.Push.ReplayLastResponse))
	if err != nil {
		return nil, err
	}
	replay, trace, err := resolver.ReplayLastResponse()
	if err != nil {
		return nil, err
	}
	lgr.Debug("di: push replay resolved",
		logger.Field{Key: "platform", Value: cfg.Platform},
		logger.Field{Key: "path", Value: trace.Path},
		logger.Field{Key: "layers", Value: len(trace.Layers)},
		logger.Field{Key: "replay", Value: replay},
	)

	campaigns, err := attribution.New(attribution.Dependencies{
		Storage:    providers.KeyValues,
		StorageKey: cfg.Attribution.StorageKey,
		Logger:     lgr,
	})
	if err != nil {
		return nil, err
	}

	normalizer, err := links.NewNormalizer(cfg.Links.Domain, campaigns)
	if err != nil {
		return nil, err
	}

	bridge := sources.NewBridge(opts.BridgeBuffer)
	var (
		urlSource          sources.URLSource          = bridge
		attributionSource  sources.AttributionSource  = bridge
		notificationSource sources.NotificationSource = bridge
	)
	if opts.URLs != nil {
		urlSource = opts.URLs
	}
	if opts.Attribution != nil {
		attributionSource = opts.Attribution
	}
	if opts.Notification != nil {
		notificationSource = opts.Notification
	}

	failure := links.FailureLenient
	if cfg.Links.StrictAudit {
		failure = links.FailureStrict
	}

	l := latch.New()
	rtr, err := router.New(router.Dependencies{
		Normalizer: normalizer,
		Campaigns:  campaigns,
		Latch:      l,
		Links:      providers.Links,
		Observer:   opts.Observer,
		Adapters: []sources.Adapter{
			sources.NewURLAdapter(urlSource, lgr),
			sources.NewAttributionAdapter(attributionSource, lgr),
			sources.NewPushAdapter(notificationSource, sources.PushOptions{ReplayLastResponse: replay}, lgr),
		},
		Logger:  lgr,
		Failure: failure,
	})
	if err != nil {
		return nil, err
	}

	cmdRegistry, err := commands.New(commands.Dependencies{
		Bridge:    bridge,
		Campaigns: campaigns,
		Logger:    lgr,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:     cfg,
		Storage:    providers,
		Options:    resolver,
		Campaigns:  campaigns,
		Normalizer: normalizer,
		Latch:      l,
		Bridge:     bridge,
		Router:     rtr,
		Commands:   cmdRegistry,
	}, nil
}
