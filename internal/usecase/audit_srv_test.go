package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestAuditRecord(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	userID := uuid.New()
	err := svc.Record(context.Background(), AuditEntry{
		Action:     "payout_created",
		Scale:      "payout",
		Label:      "AB-20260901-120000-0001",
		EntityType: "payout",
		EntityID:   uuid.NewString(),
		UserID:     &userID,
		Metadata:   map[string]any{"payout_amount": 450.0},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(repo.trails) != 1 {
		t.Fatalf("trails = %d, want 1", len(repo.trails))
	}
	trail := repo.trails[0]
	if trail.Action != "payout_created" || trail.EntityType != "payout" {
		t.Errorf("trail = %+v", trail)
	}
	if trail.UserID == nil || *trail.UserID != userID {
		t.Errorf("user id = %v, want %s", trail.UserID, userID)
	}

	var meta map[string]any
	if err := json.Unmarshal(trail.Metadata, &meta); err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if meta["payout_amount"] != 450.0 {
		t.Errorf("metadata payout_amount = %v, want 450", meta["payout_amount"])
	}
}

func TestAuditRecordStoreError(t *testing.T) {
	repo := &fakeAuditRepo{failErr: errors.New("store down")}
	svc := NewAuditService(repo, zap.NewNop())

	err := svc.Record(context.Background(), AuditEntry{
		Action:     "payment_captured",
		EntityType: "booking",
		EntityID:   uuid.NewString(),
	})
	if err == nil {
		t.Fatal("expected error to surface to the caller for logging")
	}
}
