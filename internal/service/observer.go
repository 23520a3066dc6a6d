package service

import "github.com/xxxsen/mdld/internal/model"

// Observer receives progress callbacks from diff, merge and replay
// calls. It is injected per call through options; there is no global
// registration.
type Observer interface {
	OnChange(change model.Change)
	OnConflict(conflict model.Conflict)
	OnEvent(event model.StreamEvent)
}

type nopObserver struct{}

func (nopObserver) OnChange(model.Change)     {}
func (nopObserver) OnConflict(model.Conflict) {}
func (nopObserver) OnEvent(model.StreamEvent) {}

func observerOrNop(obs Observer) Observer {
	if obs == nil {
		return nopObserver{}
	}
	return obs
}
