package arduinocloud

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchConfig configures batch execution behavior.
type BatchConfig struct {
	// MaxConcurrent is the maximum number of concurrent API calls.
	// Defaults to 10 if not specified.
	MaxConcurrent int

	// StopOnError cancels the calls still pending once one of them fails.
	// Default is false (continue processing all).
	StopOnError bool
}

// DefaultBatchConfig returns sensible defaults for batch operations.
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{
		MaxConcurrent: 10,
		StopOnError:   false,
	}
}

// BatchPropertiesResult contains the properties fetched for one Thing.
type BatchPropertiesResult struct {
	ThingID    string          // The Thing ID
	Properties []ThingProperty // nil on error
	Error      error           // Error if the fetch failed
}

// GetThingPropertiesBatch fetches the properties of many Things concurrently.
// Results are returned in the order of thingIDs. All calls share the
// client's access token, so at most one token exchange happens.
//
// Example:
//
//	results := client.GetThingPropertiesBatch(ctx, []string{"thing1", "thing2"}, nil)
//	for _, r := range results {
//	    if r.Error != nil {
//	        log.Printf("Thing %s failed: %v", r.ThingID, r.Error)
//	    }
//	}
func (c *Client) GetThingPropertiesBatch(ctx context.Context, thingIDs []string, cfg *BatchConfig) []BatchPropertiesResult {
	if len(thingIDs) == 0 {
		return nil
	}

	if cfg == nil {
		cfg = DefaultBatchConfig()
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = 10
	}

	results := make([]BatchPropertiesResult, len(thingIDs))

	g := &errgroup.Group{}
	gctx := ctx
	if cfg.StopOnError {
		g, gctx = errgroup.WithContext(ctx)
	}
	g.SetLimit(limit)

	for i, id := range thingIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = BatchPropertiesResult{ThingID: id, Error: err}
				return nil
			}

			props, err := c.GetThingProperties(gctx, id)
			results[i] = BatchPropertiesResult{ThingID: id, Properties: props, Error: err}
			if cfg.StopOnError {
				return err
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// GetThingsWithProperties lists all Things and fills in their properties
// with GetThingPropertiesBatch. Things whose properties could not be fetched
// keep an empty list; the first such error is returned with the Things.
func (c *Client) GetThingsWithProperties(ctx context.Context, cfg *BatchConfig) ([]Thing, error) {
	things, err := c.GetThings(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(things))
	for i, thing := range things {
		ids[i] = thing.ID
	}

	var firstErr error
	for i, r := range c.GetThingPropertiesBatch(ctx, ids, cfg) {
		if r.Error != nil {
			if firstErr == nil {
				firstErr = r.Error
			}
			continue
		}
		things[i].Properties = r.Properties
	}

	return things, firstErr
}
