package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Error is the failure type for adapter operations. It carries the
// operation name and key alongside the cause, and unwraps to the cause.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Adapter is a JSON codec over a KV backend. Values round-trip through
// encoding/json; a missing key reads as a defined absence, never an error.
type Adapter struct {
	kv KV
}

// NewAdapter wraps kv in a JSON adapter.
func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// Set marshals value and stores it under key.
func (a *Adapter) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	if err := a.kv.SetItem(ctx, key, string(data)); err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Get reads key and unmarshals the stored JSON into out. ok is false when
// the key has never been written; out is left untouched in that case.
func (a *Adapter) Get(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := a.kv.GetItem(ctx, key)
	if err != nil {
		return false, &Error{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, &Error{Op: "get", Key: key, Err: err}
	}
	return true, nil
}

// Remove deletes key. Removing an absent key succeeds.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	if err := a.kv.RemoveItem(ctx, key); err != nil {
		return &Error{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// Merge shallow-merges the top-level fields of value over the JSON object
// stored at key and writes the result back. An absent or null stored value
// merges against the empty object. The read-modify-write is not protected
// across processes; in-process callers serialize through their own locks.
func (a *Adapter) Merge(ctx context.Context, key string, value any) error {
	patch, err := json.Marshal(value)
	if err != nil {
		return &Error{Op: "merge", Key: key, Err: err}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return &Error{Op: "merge", Key: key, Err: fmt.Errorf("value is not an object: %w", err)}
	}

	current := map[string]json.RawMessage{}
	raw, ok, err := a.kv.GetItem(ctx, key)
	if err != nil {
		return &Error{Op: "merge", Key: key, Err: err}
	}
	if ok && raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &current); err != nil {
			return &Error{Op: "merge", Key: key, Err: fmt.Errorf("stored value is not an object: %w", err)}
		}
	}

	for k, v := range fields {
		current[k] = v
	}

	merged, err := json.Marshal(current)
	if err != nil {
		return &Error{Op: "merge", Key: key, Err: err}
	}
	if err := a.kv.SetItem(ctx, key, string(merged)); err != nil {
		return &Error{Op: "merge", Key: key, Err: err}
	}
	return nil
}

// Clear removes every key from the backend.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.kv.Clear(ctx); err != nil {
		return &Error{Op: "clear", Err: err}
	}
	return nil
}
