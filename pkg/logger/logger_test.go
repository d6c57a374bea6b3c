package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "payout-core-test", Output: &buf})

	ctx := logg.WithStoreID(context.Background(), "store-1")
	ctx = logg.WithActorID(ctx, "user-9")
	logg.Info(ctx, "approved")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["store_id"] != "store-1" {
		t.Fatalf("missing store_id field: %v", entry)
	}
	if entry["actor_id"] != "user-9" {
		t.Fatalf("missing actor_id field: %v", entry)
	}
	if entry["service"] != "payout-core-test" {
		t.Fatalf("missing service field: %v", entry)
	}
}

func TestErrorAttachesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "payout-core-test", Output: &buf})

	logg.Error(context.Background(), "boom", nil)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["stack"] == nil || entry["stack"] == "" {
		t.Fatal("error log should carry a stack trace")
	}
}
