package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinicore/models"
	"clinicore/utils"
)

// DraftStore persists the verification draft: the three fields that must
// survive the full-page redirect to the external OTP step. It is keyed by
// device, not session, so a rebuilt session still finds it.
type DraftStore struct {
	kv  KVStore
	ttl time.Duration
}

func NewDraftStore(kv KVStore, ttl time.Duration) *DraftStore {
	return &DraftStore{kv: kv, ttl: ttl}
}

func draftKey(deviceID string) string {
	return utils.DraftKeyPrefix + deviceID
}

// Put overwrites the draft for the device.
func (d *DraftStore) Put(ctx context.Context, deviceID string, draft models.VerificationDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal verification draft: %w", err)
	}
	if err := d.kv.Set(ctx, draftKey(deviceID), string(data), d.ttl); err != nil {
		return fmt.Errorf("failed to save verification draft: %w", err)
	}
	return nil
}

// Get returns the draft for the device. A missing draft is not an error; it
// simply means nothing survived to restore.
func (d *DraftStore) Get(ctx context.Context, deviceID string) (models.VerificationDraft, error) {
	var draft models.VerificationDraft
	data, err := d.kv.Get(ctx, draftKey(deviceID))
	if err != nil {
		if err == ErrNotFound {
			return draft, nil
		}
		return draft, fmt.Errorf("failed to retrieve verification draft: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		return draft, fmt.Errorf("failed to unmarshal verification draft: %w", err)
	}
	return draft, nil
}
