package analytics

import "context"

// Store defines the interface for persisting analytics events.
type Store interface {
	SaveMappingCreated(ctx context.Context, event *MappingCreatedEvent) error
	SaveMappingResolved(ctx context.Context, event *MappingResolvedEvent) error
}
