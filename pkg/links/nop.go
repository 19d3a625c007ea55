package links

import "context"

// NopObserver implements Observer without side effects.
type NopObserver struct{}

var _ Observer = (*NopObserver)(nil)

func (n *NopObserver) OnLinkResolved(ctx context.Context, info Resolution) {}

func (n *NopObserver) OnLinkDropped(ctx context.Context, info Drop) {}

// Observers forwards outcomes to multiple observers in order.
type Observers []Observer

var _ Observer = Observers(nil)

func (o Observers) OnLinkResolved(ctx context.Context, info Resolution) {
	for _, obs := range o {
		if obs != nil {
			obs.OnLinkResolved(ctx, info)
		}
	}
}

func (o Observers) OnLinkDropped(ctx context.Context, info Drop) {
	for _, obs := range o {
		if obs != nil {
			obs.OnLinkDropped(ctx, info)
		}
	}
}
