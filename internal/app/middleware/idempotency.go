package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venuecal/internal/app/commands"
)

// IdempotentCommand is implemented by commands that may arrive more than once:
// booking events redelivered by the broker and HTTP calls retried with the
// same Idempotency-Key header.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a pointer to a zero handler result; replays
	// decode into it.
	ResultPrototype() any
}

// IdempotencyRecord is the stored state of one keyed command. A pending record
// marks an attempt still running; a completed one holds either Payload or
// Error. ErrorKind names the sentinel the error matched, if any.
type IdempotencyRecord struct {
	Key        string
	Pending    bool
	Payload    []byte
	Error      string
	ErrorKind  string
	OccurredAt time.Time
}

// IdempotencyStore reserves keys before a command runs and keeps the outcome
// afterwards.
type IdempotencyStore interface {
	// Reserve stores rec unless the key is taken. A pending record that
	// started before staleBefore counts as abandoned and is taken over.
	// When the key is taken the existing record is returned with false.
	Reserve(ctx context.Context, rec IdempotencyRecord, staleBefore time.Time) (IdempotencyRecord, bool, error)
	// Save replaces the reservation with the final outcome.
	Save(ctx context.Context, rec IdempotencyRecord) error
	// Release drops a pending reservation so the next attempt runs again.
	Release(ctx context.Context, key string) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var (
	errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

	// ErrInProgress is returned to a duplicate that arrives while the first
	// attempt with the same key is still running.
	ErrInProgress = errors.New("middleware: command with this idempotency key is in progress")
)

const defaultReservationLease = 30 * time.Second

// ReplayedError carries a failure recorded for an earlier attempt. It unwraps
// to the sentinel the original error matched, so callers can keep using
// errors.Is on replays.
type ReplayedError struct {
	Message string
	Kind    error
}

func (e ReplayedError) Error() string { return e.Message }
func (e ReplayedError) Unwrap() error { return e.Kind }

type IdempotencyOption func(*idempotency)

// RememberErrors limits which failures are stored for replay. Failures not
// remembered leave no record, so a retry runs the command again.
func RememberErrors(fn func(error) bool) IdempotencyOption {
	return func(m *idempotency) { m.remember = fn }
}

// ReplayErrors lists the sentinels a replayed failure can unwrap to. The first
// one matching the original error is recorded by its message.
func ReplayErrors(kinds ...error) IdempotencyOption {
	return func(m *idempotency) { m.kinds = append(m.kinds, kinds...) }
}

// ReservationLease bounds how long a pending key blocks duplicates. A process
// that dies mid-command leaves its reservation behind; after the lease the
// next delivery takes it over.
func ReservationLease(d time.Duration) IdempotencyOption {
	return func(m *idempotency) {
		if d > 0 {
			m.lease = d
		}
	}
}

type idempotency struct {
	store    IdempotencyStore
	codec    ResultCodec
	remember func(error) bool
	kinds    []error
	lease    time.Duration
	now      func() time.Time
}

// Idempotency runs a keyed command at most once per key and replays the stored
// result or error afterwards. Keys are scoped by command key and reserved
// before the handler runs. Replayed results are pointers to the handler's
// result type; commands.Dispatch unwraps them.
func Idempotency(store IdempotencyStore, codec ResultCodec, opts ...IdempotencyOption) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	m := &idempotency{
		store:    store,
		codec:    codec,
		remember: func(error) bool { return true },
		lease:    defaultReservationLease,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			keyed, ok := cmd.(IdempotentCommand)
			if !ok || keyed.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := cmd.Key() + ":" + keyed.IdempotencyKey()
			now := m.now()
			existing, reserved, err := m.store.Reserve(ctx, IdempotencyRecord{Key: key, Pending: true, OccurredAt: now}, now.Add(-m.lease))
			if err != nil {
				return nil, err
			}
			if !reserved {
				if existing.Pending {
					return nil, fmt.Errorf("%w: %s", ErrInProgress, key)
				}
				return m.replay(existing, keyed)
			}
			result, err := next.Dispatch(ctx, cmd)
			return m.record(ctx, key, result, err)
		})
	}
}

func (m *idempotency) replay(rec IdempotencyRecord, cmd IdempotentCommand) (any, error) {
	if rec.Error != "" {
		return nil, ReplayedError{Message: rec.Error, Kind: m.kindByName(rec.ErrorKind)}
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) > 0 {
		if err := m.codec.Decode(rec.Payload, proto); err != nil {
			return nil, err
		}
	}
	return proto, nil
}

func (m *idempotency) record(ctx context.Context, key string, result any, err error) (any, error) {
	rec := IdempotencyRecord{Key: key, OccurredAt: m.now()}
	if err != nil {
		if !m.remember(err) {
			return nil, m.release(ctx, key, err)
		}
		rec.Error = err.Error()
		rec.ErrorKind = m.kindOf(err)
		if saveErr := m.store.Save(ctx, rec); saveErr != nil {
			return nil, errors.Join(err, saveErr)
		}
		return nil, err
	}
	if result != nil {
		payload, encErr := m.codec.Encode(result)
		if encErr != nil {
			return nil, m.release(ctx, key, encErr)
		}
		rec.Payload = payload
	}
	if saveErr := m.store.Save(ctx, rec); saveErr != nil {
		return nil, saveErr
	}
	return result, nil
}

func (m *idempotency) release(ctx context.Context, key string, cause error) error {
	if err := m.store.Release(ctx, key); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (m *idempotency) kindOf(err error) string {
	for _, k := range m.kinds {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return ""
}

func (m *idempotency) kindByName(name string) error {
	if name == "" {
		return nil
	}
	for _, k := range m.kinds {
		if k.Error() == name {
			return k
		}
	}
	return nil
}
