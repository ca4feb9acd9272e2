// Package arduinocloud provides a Go client library for the Arduino IoT Cloud API.
//
// The client authenticates with the OAuth2 client-credentials flow of an
// Arduino Cloud API key and reads Things, Thing properties and devices.
// Every outbound call goes through the same pipeline: a cached access token,
// a retry policy with exponential backoff and jitter, and a classifier that
// turns failed responses into typed errors.
//
// # Authentication
//
// Create an API key in the Arduino Cloud and pass its credentials:
//
//	client, err := arduinocloud.NewClient(arduinocloud.Credentials{
//	    ClientID:     "your-client-id",
//	    ClientSecret: "your-client-secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The access token is kept in memory and reused until it expires.
// Concurrent calls that find no valid token share a single exchange.
// To survive restarts, add a durable cache:
//
//	client, err := arduinocloud.NewClient(creds,
//	    arduinocloud.WithTokenCache(arduinocloud.NewFileTokenCache(arduinocloud.DefaultTokenCachePath())),
//	)
//
// Several processes can share one token through Redis with RedisTokenCache.
//
// # Basic Usage
//
// List Things and read their properties:
//
//	things, err := client.GetThings(ctx)
//	for _, thing := range things {
//	    props, err := client.GetThingProperties(ctx, thing.ID)
//	    ...
//	}
//
// Read many Things concurrently:
//
//	results := client.GetThingPropertiesBatch(ctx, thingIDs, nil)
//
// # Retries
//
// Transport failures and 404, 500 and 503 responses are retried, by default
// up to three attempts in total with jittered exponential backoff:
//
//	client, err := arduinocloud.NewClient(creds,
//	    arduinocloud.WithRetry(&arduinocloud.RetryConfig{
//	        MaxAttempts: 5,
//	        BaseDelay:   500 * time.Millisecond,
//	        MaxDelay:    10 * time.Second,
//	        Jitter:      0.5,
//	    }),
//	    arduinocloud.WithRetryHook(func(ctx context.Context, a arduinocloud.RetryAttempt) {
//	        log.Printf("retry %d after %s: %s", a.Attempt, a.Wait, a.Reason)
//	    }),
//	)
//
// Retries stop as soon as the context is done.
//
// # Error Handling
//
// Failed responses are returned as *APIError and match a sentinel error:
//
//	props, err := client.GetThingProperties(ctx, thingID)
//	if errors.Is(err, arduinocloud.ErrNotFound) {
//	    // Thing doesn't exist
//	}
//	if arduinocloud.IsUnauthorized(err) {
//	    // API key revoked
//	}
//
// Token exchange failures are wrapped in *AuthError, connection failures in
// *TransportError and malformed bodies in *DeserializationError.
// Cancellation is reported with the context error; use IsCanceled.
//
// # Configuration
//
// LoadConfig reads an optional YAML file and ARDUINO_* environment variables:
//
//	cfg, err := arduinocloud.LoadConfig("arduino.yaml")
//	client, err := arduinocloud.NewClientFromConfig(ctx, cfg)
//
// # Observability
//
// WithLogger enables structured logging through log/slog. WithMetrics records
// Prometheus counters and latency histograms:
//
//	metrics := arduinocloud.NewMetrics(prometheus.DefaultRegisterer)
//	client, err := arduinocloud.NewClient(creds, arduinocloud.WithMetrics(metrics))
//
// # Thread Safety
//
// The Client is safe for concurrent use by multiple goroutines.
package arduinocloud
