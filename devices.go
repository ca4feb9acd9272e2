package arduinocloud

import (
	"context"
	"net/url"
)

// GetDevices returns all devices registered with the account.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	data, err := c.get(ctx, "devices", "/iot/v2/devices", "")
	if err != nil {
		return nil, err
	}

	return decodeResponse[[]Device](data, "device list")
}

// GetDevice returns a single device by ID.
func (c *Client) GetDevice(ctx context.Context, deviceID string) (*Device, error) {
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}

	data, err := c.get(ctx, "device", "/iot/v2/devices/"+url.PathEscape(deviceID), deviceID)
	if err != nil {
		return nil, err
	}

	device, err := decodeResponse[Device](data, "device")
	if err != nil {
		return nil, err
	}
	return &device, nil
}
