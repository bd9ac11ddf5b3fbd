package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	fieldSubject   = "subject"
	fieldCode      = "code"
	fieldIssuedAt  = "issued_at"
	fieldExpiresAt = "expires_at"
	fieldVersion   = "version"

	scanBatch = 100
)

var errMalformedRecord = errors.New("otp store: malformed record")

// Deletes the key only while it still holds the given version.
var deleteIfVersionScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'version') == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Redis stores each record as a hash under prefix+subject. Keys carry a native
// TTL matching the record expiry, so no sweep is needed.
type Redis struct {
	client redis.UniversalClient
	prefix string
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

func NewRedis(client redis.UniversalClient, prefix string, clk clock.Clocker, ins instrument.Instrumentation) *Redis {
	if prefix == "" {
		prefix = "otp:"
	}
	if ins == nil {
		ins = instrument.NewNoop()
	}
	return &Redis{client: client, prefix: prefix, clock: clk, ins: ins}
}

func (r *Redis) key(subject string) string {
	return r.prefix + subject
}

func (r *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("otp.outbound.store").Start(ctx, name)
}

func (r *Redis) Get(ctx context.Context, subject string) (entity.Record, error) {
	ctx, span := r.startSpan(ctx, "Get")
	defer span.End()

	fields, err := r.client.HGetAll(ctx, r.key(subject)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entity.Record{}, err
	}
	if len(fields) == 0 {
		return entity.Record{}, goerror.ErrNotFound
	}

	return decodeRecord(fields)
}

func (r *Redis) Set(ctx context.Context, rec entity.Record) error {
	ctx, span := r.startSpan(ctx, "Set")
	defer span.End()

	ttl := rec.ExpiresAt.Sub(r.clock.Now())
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	key := r.key(rec.Subject)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		fieldSubject, rec.Subject,
		fieldCode, rec.Code,
		fieldIssuedAt, rec.IssuedAt.UnixMilli(),
		fieldExpiresAt, rec.ExpiresAt.UnixMilli(),
		fieldVersion, rec.Version,
	)
	pipe.PExpire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (r *Redis) Delete(ctx context.Context, subject string) error {
	ctx, span := r.startSpan(ctx, "Delete")
	defer span.End()

	if err := r.client.Del(ctx, r.key(subject)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (r *Redis) DeleteIfVersion(ctx context.Context, subject, version string) (bool, error) {
	ctx, span := r.startSpan(ctx, "DeleteIfVersion")
	defer span.End()

	n, err := deleteIfVersionScript.Run(ctx, r.client, []string{r.key(subject)}, version).Int64()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	return n == 1, nil
}

// List walks the keyspace with SCAN. Keys that vanish between SCAN and
// HGETALL are skipped.
func (r *Redis) List(ctx context.Context) ([]entity.Record, error) {
	ctx, span := r.startSpan(ctx, "List")
	defer span.End()

	var out []entity.Record
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		fields, err := r.client.HGetAll(ctx, iter.Val()).Result()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}

		rec, err := decodeRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: key %s", err, iter.Val())
		}
		out = append(out, rec)
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return out, nil
}

func decodeRecord(fields map[string]string) (entity.Record, error) {
	issuedAt, err := strconv.ParseInt(fields[fieldIssuedAt], 10, 64)
	if err != nil {
		return entity.Record{}, errMalformedRecord
	}
	expiresAt, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	if err != nil {
		return entity.Record{}, errMalformedRecord
	}

	return entity.Record{
		Subject:   fields[fieldSubject],
		Code:      fields[fieldCode],
		IssuedAt:  time.UnixMilli(issuedAt).UTC(),
		ExpiresAt: time.UnixMilli(expiresAt).UTC(),
		Version:   fields[fieldVersion],
	}, nil
}
