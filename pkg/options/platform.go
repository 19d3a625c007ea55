package options

import (
	"fmt"
	"strings"

	opts "github.com/goliatone/go-options"
)

// Option paths understood by the link router.
const (
	PathPushReplayLastResponse = "push.replay_last_response"
)

// Platform names with built-in defaults.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
)

var (
	defaultsScope  = opts.NewScope("defaults", opts.ScopePrioritySystem, opts.WithScopeLabel("Defaults"))
	overridesScope = opts.NewScope("overrides", opts.ScopePriorityUser, opts.WithScopeLabel("Overrides"))
)

// Defaults returns the platform independent option values.
func Defaults() map[string]any {
	return map[string]any{
		"push": map[string]any{
			"replay_last_response": false,
		},
	}
}

// PlatformDefaults returns the values a platform layers over Defaults. Only
// Android hands the launching notification to the app through the last
// response lookup.
func PlatformDefaults(platform string) map[string]any {
	switch normalizePlatform(platform) {
	case PlatformAndroid:
		return map[string]any{
			"push": map[string]any{
				"replay_last_response": true,
			},
		}
	default:
		return nil
	}
}

// PlatformScope is the layer holding platform defaults.
func PlatformScope(platform string) opts.Scope {
	name := normalizePlatform(platform)
	return opts.NewScope("platform:"+name, opts.ScopePriorityTenant, opts.WithScopeLabel(strings.ToUpper(name)))
}

// ForPlatform merges defaults, platform defaults and overrides, in that
// order of increasing priority.
func ForPlatform(platform string, overrides map[string]any) (*Resolver, error) {
	name := normalizePlatform(platform)
	if name == "" {
		return nil, fmt.Errorf("options: platform is required")
	}
	snapshots := []Snapshot{{Scope: defaultsScope, Data: Defaults(), SnapshotID: "defaults"}}
	if data := PlatformDefaults(name); len(data) > 0 {
		snapshots = append(snapshots, Snapshot{Scope: PlatformScope(name), Data: data, SnapshotID: name})
	}
	if len(overrides) > 0 {
		snapshots = append(snapshots, Snapshot{Scope: overridesScope, Data: overrides})
	}
	return NewResolver(snapshots...)
}

// ReplayLastResponse reports whether the push adapter should replay the
// notification that launched the app, with the trace of layers consulted.
func (r *Resolver) ReplayLastResponse() (bool, opts.Trace, error) {
	return r.ResolveBool(PathPushReplayLastResponse)
}

// PushOverrides builds an overrides payload from an optional config flag.
func PushOverrides(replay *bool) map[string]any {
	if replay == nil {
		return nil
	}
	return map[string]any{
		"push": map[string]any{
			"replay_last_response": *replay,
		},
	}
}

func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
