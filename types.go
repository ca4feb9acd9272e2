package arduinocloud

import "time"

// Thing is an Arduino IoT Cloud Thing: the cloud-side twin of a device
// sketch that owns a set of properties.
type Thing struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	DeviceID      string            `json:"device_id,omitempty"`
	Timezone      string            `json:"timezone,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
	Properties    []ThingProperty   `json:"properties,omitempty"`
	WebhookActive bool              `json:"webhook_active,omitempty"`
	WebhookURI    string            `json:"webhook_uri,omitempty"`
	CreatedAt     time.Time         `json:"created_at,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at,omitempty"`
}

// ThingProperty is a variable of a Thing together with its last reported value.
type ThingProperty struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	VariableName    string    `json:"variable_name,omitempty"`
	Type            string    `json:"type"`
	Permission      string    `json:"permission,omitempty"`
	LastValue       any       `json:"last_value,omitempty"`
	Persist         bool      `json:"persist,omitempty"`
	LinkedToTrigger bool      `json:"linked_to_trigger,omitempty"`
	Tag             int       `json:"tag,omitempty"`
	ThingID         string    `json:"thing_id,omitempty"`
	ThingName       string    `json:"thing_name,omitempty"`
	UpdateParameter float64   `json:"update_parameter,omitempty"`
	UpdateStrategy  string    `json:"update_strategy,omitempty"`
	Href            string    `json:"href,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
	ValueUpdatedAt  time.Time `json:"value_updated_at,omitempty"`
}

// ConnectionType is how a device reaches the cloud.
type ConnectionType string

// Connection types reported by the API.
const (
	ConnectionWiFi          ConnectionType = "wifi"
	ConnectionEthernet      ConnectionType = "eth"
	ConnectionWiFiAndSecret ConnectionType = "wifiandsecret"
	ConnectionGSM           ConnectionType = "gsm"
	ConnectionNB            ConnectionType = "nb"
	ConnectionLoRa          ConnectionType = "lora"
)

// DeviceType is the board family of a device.
type DeviceType string

// Device types reported by the API.
const (
	DeviceMKRWiFi1010         DeviceType = "mkrwifi1010"
	DeviceMKR1000             DeviceType = "mkr1000"
	DeviceNano33IoT           DeviceType = "nano_33_iot"
	DeviceMKRGSM1400          DeviceType = "mkrgsm1400"
	DeviceMKRWAN1310          DeviceType = "mkrwan1310"
	DeviceMKRWAN1300          DeviceType = "mkrwan1300"
	DeviceMKRNB1500           DeviceType = "mkrnb1500"
	DeviceLoRa                DeviceType = "lora-device"
	DeviceLoginAndSecretWiFi  DeviceType = "login_and_secretkey_wifi"
	DeviceEnvieM7             DeviceType = "envie_m7"
	DeviceNanoRP2040Connect   DeviceType = "nanorp2040connect"
	DeviceNiclaVision         DeviceType = "nicla_vision"
	DevicePhone               DeviceType = "phone"
	DevicePortentaX8          DeviceType = "portenta_x8"
	DeviceOpta                DeviceType = "opta"
	DeviceGiga                DeviceType = "giga"
	DeviceGenericSecretKey    DeviceType = "generic_device_secretkey"
	DevicePortentaC33         DeviceType = "portenta_c33"
	DeviceUNOR4WiFi           DeviceType = "unor4wifi"
	DeviceNanoNora            DeviceType = "nano_nora"
)

// Device is a physical board registered with the cloud.
type Device struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Serial         string         `json:"serial,omitempty"`
	FQBN           string         `json:"fqbn,omitempty"`
	Type           DeviceType     `json:"type,omitempty"`
	ConnectionType ConnectionType `json:"connection_type,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	WiFiFwVersion  string         `json:"wifi_fw_version,omitempty"`
	// Status is "ONLINE", "OFFLINE" or "UNKNOWN" when the API reports it.
	Status     string    `json:"device_status,omitempty"`
	LastSeenAt time.Time `json:"last_activity_at,omitempty"`
}
