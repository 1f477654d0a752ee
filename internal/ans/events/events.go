// Package events defines the NameAssigned notification and the in-process
// sinks it is delivered to.
package events

import (
	"context"
	"errors"
	"time"

	"ans/pkg/domain"
)

// NameAssigned is emitted after a binding commits.
type NameAssigned struct {
	Address    domain.Address `json:"address"`
	Name       string         `json:"name"`
	AssignedAt time.Time      `json:"assigned_at"`
}

// Publisher delivers events to a sink. Publish is called after the binding
// has committed, so a failure never undoes it.
type Publisher interface {
	Publish(ctx context.Context, event NameAssigned) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event NameAssigned) error

func (f PublisherFunc) Publish(ctx context.Context, event NameAssigned) error {
	return f(ctx, event)
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event NameAssigned) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
