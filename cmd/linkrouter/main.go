// Command linkrouter feeds platform callbacks read from stdin through the link
// router and prints every canonical link it produces.
//
// Input lines:
//
//	url <uri>
//	branch {"uri":"...","params":{"+clicked_branch_link":true,"$deeplink_path":"..."}}
//	push {"type":"holders-push","accountId":"...","addresses":["..."]}
//	campaign
//	attach
//	detach
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goliatone/go-deeplinks/pkg/activity"
	"github.com/goliatone/go-deeplinks/pkg/commands"
	"github.com/goliatone/go-deeplinks/pkg/config"
	"github.com/goliatone/go-deeplinks/pkg/deeplinks"
	"github.com/goliatone/go-deeplinks/pkg/interfaces/logger"
	"github.com/goliatone/go-deeplinks/pkg/latch"
	"github.com/goliatone/go-deeplinks/pkg/storage"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "deeplinks.yaml", "path to the YAML config file")
	initialURL := flag.String("initial-url", "", "URL the app was launched with")
	launchPush := flag.String("launch-push", "", "JSON payload of the notification that launched the app")
	detached := flag.Bool("detached", false, "start without a link consumer")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(slogger)
	lgr := logger.NewSlog(slogger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStorage()

	module, err := deeplinks.NewModule(deeplinks.ModuleOptions{
		Config:   cfg,
		Storage:  providers,
		Logger:   lgr,
		Observer: activity.Observer{Hooks: activity.Hooks{activityLogger(slogger)}},
	})
	if err != nil {
		log.Fatalf("module: %v", err)
	}
	defer func() {
		if err := module.Close(); err != nil {
			slogger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}()

	if *initialURL != "" {
		module.Bridge().SetInitialURL(*initialURL)
	}
	if *launchPush != "" {
		if err := module.Commands().OpenNotification.Execute(ctx, commands.OpenNotification{
			Data:   decodePayload(*launchPush),
			Launch: true,
		}); err != nil {
			log.Fatalf("launch push: %v", err)
		}
	}

	s := &session{module: module, out: os.Stdout}
	if !*detached {
		s.attach()
	}

	if err := module.Start(ctx); err != nil {
		log.Fatalf("start: %v", err)
	}
	slogger.Info("link router started",
		slog.String("platform", cfg.Platform),
		slog.String("domain", cfg.Links.Domain),
		slog.String("storage", cfg.Storage.Driver),
	)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := s.dispatch(ctx, line); err != nil {
				slogger.Warn("input rejected", slog.String("error", err.Error()))
			}
		}
	}
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Providers, func(), error) {
	if cfg.Storage.Driver != config.StorageSQLite {
		return storage.NewMemoryProviders(), func() {}, nil
	}
	db, err := storage.OpenSQLite(cfg.Storage.DSN)
	if err != nil {
		return storage.Providers{}, nil, err
	}
	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return storage.Providers{}, nil, err
	}
	return storage.NewBunProviders(db), func() { db.Close() }, nil
}

type session struct {
	module *deeplinks.Module
	out    io.Writer
	detach latch.Detach
}

func (s *session) attach() {
	if s.detach != nil {
		return
	}
	s.detach = s.module.Attach(func(link string) {
		fmt.Fprintln(s.out, link)
	})
}

func (s *session) dispatch(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	reg := s.module.Commands()

	switch verb {
	case "url":
		return reg.OpenURL.Execute(ctx, commands.OpenURL{URL: arg})
	case "branch":
		var msg commands.ResolveSession
		if err := json.Unmarshal([]byte(arg), &msg); err != nil {
			return fmt.Errorf("branch payload: %w", err)
		}
		return reg.ResolveSession.Execute(ctx, msg)
	case "push":
		return reg.OpenNotification.Execute(ctx, commands.OpenNotification{Data: decodePayload(arg)})
	case "campaign":
		id, ok := s.module.CampaignID(ctx)
		if !ok {
			fmt.Fprintln(s.out, "campaign: none")
			return nil
		}
		fmt.Fprintf(s.out, "campaign: %s\n", id)
		return nil
	case "attach":
		s.attach()
		return nil
	case "detach":
		if s.detach != nil {
			s.detach()
			s.detach = nil
		}
		return nil
	default:
		return fmt.Errorf("unknown input %q", verb)
	}
}

func activityLogger(l *slog.Logger) activity.Hook {
	return activity.HookFunc(func(ctx context.Context, evt activity.Event) {
		l.DebugContext(ctx, "activity",
			slog.String("verb", evt.Verb),
			slog.String("source", evt.Source),
			slog.String("object", evt.ObjectID),
			slog.Any("metadata", evt.Metadata),
		)
	})
}

func decodePayload(raw string) map[string]any {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("payload is not a JSON object", slog.String("error", err.Error()))
		return nil
	}
	return data
}
