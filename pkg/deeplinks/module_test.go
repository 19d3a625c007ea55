package deeplinks

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-deeplinks/pkg/commands"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
	"github.com/goliatone/go-deeplinks/pkg/storage"
)

func TestModuleConstruction(t *testing.T) {
	module, err := NewModule(ModuleOptions{
		Logger:  &logger.Nop{},
		Storage: storage.NewMemoryProviders(),
	})
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	defer module.Close()
	if module.Router() == nil || module.Bridge() == nil || module.Commands() == nil {
		t.Fatalf("expected router, bridge and commands")
	}
}

func TestModuleDeliversBufferedLinkOnAttach(t *testing.T) {
	ctx := context.Background()
	providers := storage.NewMemoryProviders()
	module, err := NewModule(ModuleOptions{Storage: providers})
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	defer module.Close()

	module.Bridge().SetInitialURL("https://tonhub.com/staking?campaignId=launch")
	if err := module.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := module.Router().Pending(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("initial url was never buffered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var got []string
	detach := module.Attach(func(link string) { got = append(got, link) })
	defer detach()
	if len(got) != 1 || got[0] != "https://tonhub.com/staking?campaignId=launch" {
		t.Fatalf("expected buffered initial url, got %v", got)
	}
	if id, ok := module.CampaignID(ctx); !ok || id != "launch" {
		t.Fatalf("expected campaign launch, got %q", id)
	}

	if err := module.Commands().SetCampaign.Execute(ctx, commands.SetCampaign{CampaignID: "manual"}); err != nil {
		t.Fatalf("set campaign: %v", err)
	}
	if id, _ := module.CampaignID(ctx); id != "manual" {
		t.Fatalf("expected manual campaign, got %q", id)
	}

	res, err := providers.Links.List(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 1 || !res.Items[0].Buffered {
		t.Fatalf("expected one buffered audit record, got %+v", res)
	}
}
