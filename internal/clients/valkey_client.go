package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/ideaflow/config"
	"github.com/spacesedan/ideaflow/internal/models"
)

type ValkeyClient struct {
	Client valkey.Client
	opts   valkey.ClientOption
	stream string
	mu     sync.Mutex
}

func valkeyOptions(cfg *config.Config) valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress: []string{
			cfg.ValkeyAddress,
		},
		Password:         cfg.ValkeyPassword,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if cfg.ValkeyTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}
	return opts
}

func connect(opts valkey.ClientOption) (valkey.Client, error) {
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), CONNECT_TIMEOUT)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return client, nil
}

// NewValkeyClient connects to Valkey and verifies the connection with PING.
// Results are appended to cfg.ResultStream.
func NewValkeyClient(cfg *config.Config) (*ValkeyClient, error) {
	return newValkeyClient(valkeyOptions(cfg), cfg.ResultStream)
}

func newValkeyClient(opts valkey.ClientOption, stream string) (*ValkeyClient, error) {
	client, err := connect(opts)
	if err != nil {
		return nil, err
	}

	return &ValkeyClient{Client: client, opts: opts, stream: stream}, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connect(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}

	vc.Client.Close()
	vc.Client = client
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func (vc *ValkeyClient) Close() {
	vc.client().Close()
}

// Name identifies the publisher in logs and metrics.
func (vc *ValkeyClient) Name() string {
	return "valkey_stream"
}

// PublishResult appends the serialized result event to the result stream as
// a single "payload" field.
func (vc *ValkeyClient) PublishResult(ctx context.Context, event models.IntelligenceResultEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] failed to encode result payload: %w", err)
	}

	res := vc.DoWithRetry(ctx, func(b valkey.Builder) valkey.Completed {
		return b.Xadd().Key(vc.stream).Id("*").FieldValue().FieldValue("payload", string(payload)).Build()
	}, MAX_RETRIES)

	id, err := res.ToString()
	if err != nil {
		return fmt.Errorf("[ValkeyClient] failed to publish result to stream %s: %w", vc.stream, err)
	}

	slog.Info("[ValkeyClient] Published result",
		slog.String("stream", vc.stream),
		slog.String("question_id", event.QuestionID),
		slog.String("id", id))
	return nil
}

func processedKey(key string) string {
	return VALKEY_PROCESSED_PREFIX + key
}

// MarkProcessed records a request dedupe key. Each key expires on its own
// after PROCESSED_TTL.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, key string) error {
	res := vc.DoWithRetry(ctx, func(b valkey.Builder) valkey.Completed {
		return b.Set().Key(processedKey(key)).Value("1").Nx().ExSeconds(int64(PROCESSED_TTL.Seconds())).Build()
	}, MAX_RETRIES)

	// A nil reply means the key was already recorded.
	if err := res.Error(); err != nil && !valkey.IsValkeyNil(err) {
		return fmt.Errorf("[ValkeyClient] failed to mark %s processed: %w", key, err)
	}

	slog.Debug("[ValkeyClient] Marked request processed", slog.String("key", key))
	return nil
}

// IsProcessed reports whether key was already recorded. Lookup failures
// count as not processed so the request is analyzed again.
func (vc *ValkeyClient) IsProcessed(ctx context.Context, key string) bool {
	res := vc.DoWithRetry(ctx, func(b valkey.Builder) valkey.Completed {
		return b.Exists().Key(processedKey(key)).Build()
	}, MAX_RETRIES)

	n, err := res.AsInt64()
	if err != nil {
		return false
	}

	return n > 0
}

func (vc *ValkeyClient) Ping(ctx context.Context) error {
	c := vc.client()
	return c.Do(ctx, c.B().Ping().Build()).Error()
}

// DoWithRetry builds and sends a fresh command on every attempt. valkey-go
// recycles a command once it has been sent, so a Completed must never be
// sent twice.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build func(valkey.Builder) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		c := vc.client()
		result = c.Do(ctx, build(c.B()))
		if result.Error() == nil || valkey.IsValkeyNil(result.Error()) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))
		if isConnectionError(result.Error()) {
			vc.recreateClient()
		}

		select {
		case <-ctx.Done():
			return result
		case <-time.After(RETRY_BACKOFF):
		}
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
