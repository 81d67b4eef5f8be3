package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithBookingRef(ctx, "BK-TEST01")

	log.Error(ctx, "boom", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte(`"request_id"`)) {
		t.Fatalf("expected request_id in entry: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"booking_ref"`)) {
		t.Fatalf("expected booking_ref in entry: %s", buf.String())
	}
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf, WarnStack: true})

	log.Warn(context.Background(), "warny")

	if !bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("expected stack when warn stack enabled: %s", buf.String())
	}
}
