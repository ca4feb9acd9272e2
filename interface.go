package arduinocloud

import (
	"context"
	"iter"
)

// CloudClient defines the interface for Arduino Cloud API operations.
// Client implements this interface, enabling mocking for tests.
type CloudClient interface {
	// ============================================================================
	// Thing Operations
	// ============================================================================

	GetThings(ctx context.Context) ([]Thing, error)
	GetThing(ctx context.Context, thingID string) (*Thing, error)
	Things(ctx context.Context) iter.Seq2[Thing, error]

	// ============================================================================
	// Property Operations
	// ============================================================================

	GetThingProperties(ctx context.Context, thingID string) ([]ThingProperty, error)
	UpdateThingProperty(ctx context.Context, thingID, propertyID string) (*ThingProperty, error)

	// ============================================================================
	// Device Operations
	// ============================================================================

	GetDevices(ctx context.Context) ([]Device, error)
	GetDevice(ctx context.Context, deviceID string) (*Device, error)

	// ============================================================================
	// Batch Operations
	// ============================================================================

	GetThingPropertiesBatch(ctx context.Context, thingIDs []string, cfg *BatchConfig) []BatchPropertiesResult
	GetThingsWithProperties(ctx context.Context, cfg *BatchConfig) ([]Thing, error)
}

// Ensure Client implements CloudClient at compile time.
var _ CloudClient = (*Client)(nil)
