package clients

import "time"

const (
	VALKEY_PROCESSED_PREFIX = "intelligence:processed:"
	PROCESSED_TTL           = 24 * time.Hour

	MAX_RETRIES     = 3
	RETRY_BACKOFF   = 250 * time.Millisecond
	CONNECT_TIMEOUT = 3 * time.Second
)
