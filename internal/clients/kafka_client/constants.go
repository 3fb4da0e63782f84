package kafka_client

import "time"

const (
	MAX_RETRIES      = 5
	RETRY_DELAY      = 2 * time.Second
	READ_TIMEOUT     = time.Second
	FLUSH_TIMEOUT_MS = 5000
)
