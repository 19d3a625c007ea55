package commands

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/links"
	"github.com/goliatone/go-deeplinks/pkg/sources"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	OpenURL          command.Commander[OpenURL]
	ResolveSession   command.Commander[ResolveSession]
	OpenNotification command.Commander[OpenNotification]
	SetCampaign      command.Commander[SetCampaign]
}

type bridge interface {
	OpenURL(ctx context.Context, uri string) error
	ResolveSession(ctx context.Context, res sources.AttributionResult) error
	RespondToNotification(ctx context.Context, resp *sources.NotificationResponse) error
	SetLastResponse(resp *sources.NotificationResponse) error
}

type campaignStore interface {
	Set(ctx context.Context, campaignID string) error
}

// Dependencies wires the host bridge and the attribution store.
type Dependencies struct {
	Bridge    bridge
	Campaigns campaignStore
	Logger    logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Bridge == nil {
		return nil, errors.New("commands: bridge is required")
	}
	if deps.Campaigns == nil {
		return nil, errors.New("commands: attribution store is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		OpenURL:          openURLCommand{bridge: deps.Bridge},
		ResolveSession:   resolveSessionCommand{bridge: deps.Bridge, logger: deps.Logger},
		OpenNotification: openNotificationCommand{bridge: deps.Bridge},
		SetCampaign:      setCampaignCommand{campaigns: deps.Campaigns},
	}, nil
}

// OpenURL reports a URL the OS opened the app with.
type OpenURL struct {
	URL string `json:"url"`
}

type openURLCommand struct {
	bridge bridge
}

func (c openURLCommand) Execute(ctx context.Context, msg OpenURL) error {
	uri := strings.TrimSpace(msg.URL)
	if uri == "" {
		return errors.New("commands: url is required")
	}
	return c.bridge.OpenURL(ctx, uri)
}

// ResolveSession reports an attribution SDK callback. Error carries the SDK
// error message, if the callback failed.
type ResolveSession struct {
	URI    string       `json:"uri"`
	Params links.Params `json:"params"`
	Error  string       `json:"error"`
}

type resolveSessionCommand struct {
	bridge bridge
	logger logger.Logger
}

func (c resolveSessionCommand) Execute(ctx context.Context, msg ResolveSession) error {
	res := sources.AttributionResult{
		URI:    strings.TrimSpace(msg.URI),
		Params: msg.Params,
	}
	if msg.Error != "" {
		res.Err = errors.New(msg.Error)
	}
	if res.Err == nil && res.Params == nil {
		return errors.New("commands: session params are required")
	}
	c.logger.Debug("commands: attribution session", logger.Field{Key: "params", Value: len(res.Params)})
	return c.bridge.ResolveSession(ctx, res)
}

// OpenNotification reports a tapped notification. Launch marks the response
// that started the app; it must be sent before the router starts and is
// replayed only where the platform requires it.
type OpenNotification struct {
	Data   map[string]any `json:"data"`
	Launch bool           `json:"launch"`
}

type openNotificationCommand struct {
	bridge bridge
}

func (c openNotificationCommand) Execute(ctx context.Context, msg OpenNotification) error {
	if msg.Data == nil {
		return errors.New("commands: notification data is required")
	}
	resp := &sources.NotificationResponse{Data: msg.Data}
	if msg.Launch {
		return c.bridge.SetLastResponse(resp)
	}
	return c.bridge.RespondToNotification(ctx, resp)
}

// SetCampaign overwrites the stored campaign id.
type SetCampaign struct {
	CampaignID string `json:"campaign_id"`
}

type setCampaignCommand struct {
	campaigns campaignStore
}

func (c setCampaignCommand) Execute(ctx context.Context, msg SetCampaign) error {
	id := strings.TrimSpace(msg.CampaignID)
	if id == "" {
		return errors.New("commands: campaign id is required")
	}
	if strings.ContainsAny(id, " \t\r\n&#?=/") {
		return errors.New("commands: campaign id must be a plain token")
	}
	return c.campaigns.Set(ctx, id)
}
