package arduinocloud

import (
	"context"
	"iter"
	"net/url"
)

// GetThings returns all Things of the account.
func (c *Client) GetThings(ctx context.Context) ([]Thing, error) {
	data, err := c.get(ctx, "things", "/iot/v2/things", "")
	if err != nil {
		return nil, err
	}

	return decodeResponse[[]Thing](data, "thing list")
}

// GetThing returns a single Thing by ID.
func (c *Client) GetThing(ctx context.Context, thingID string) (*Thing, error) {
	if thingID == "" {
		return nil, ErrEmptyThingID
	}

	data, err := c.get(ctx, "thing", "/iot/v2/things/"+url.PathEscape(thingID), thingID)
	if err != nil {
		return nil, err
	}

	thing, err := decodeResponse[Thing](data, "thing")
	if err != nil {
		return nil, err
	}
	return &thing, nil
}

// GetThingProperties returns the properties of a Thing.
// A NotFound error carries thingID as its ResourceID.
func (c *Client) GetThingProperties(ctx context.Context, thingID string) ([]ThingProperty, error) {
	if thingID == "" {
		return nil, ErrEmptyThingID
	}

	data, err := c.get(ctx, "thing_properties", "/iot/v2/things/"+url.PathEscape(thingID)+"/properties", thingID)
	if err != nil {
		return nil, err
	}

	return decodeResponse[[]ThingProperty](data, "thing properties")
}

// UpdateThingProperty fetches the current state of a single property.
// Despite the name it only reads; it never modifies the property.
func (c *Client) UpdateThingProperty(ctx context.Context, thingID, propertyID string) (*ThingProperty, error) {
	if thingID == "" {
		return nil, ErrEmptyThingID
	}
	if propertyID == "" {
		return nil, ErrEmptyPropertyID
	}

	path := "/iot/v2/things/" + url.PathEscape(thingID) + "/properties/" + url.PathEscape(propertyID)
	data, err := c.get(ctx, "thing_property", path, propertyID)
	if err != nil {
		return nil, err
	}

	prop, err := decodeResponse[ThingProperty](data, "thing property")
	if err != nil {
		return nil, err
	}
	return &prop, nil
}

// Things returns an iterator over all Things.
// The list is fetched once; an error is yielded as the only element.
//
// Example:
//
//	for thing, err := range client.Things(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(thing.Name)
//	}
func (c *Client) Things(ctx context.Context) iter.Seq2[Thing, error] {
	return func(yield func(Thing, error) bool) {
		things, err := c.GetThings(ctx)
		if err != nil {
			yield(Thing{}, err)
			return
		}
		for _, thing := range things {
			if !yield(thing, nil) {
				return
			}
		}
	}
}
