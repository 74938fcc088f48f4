package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"assetwatch/internal/domain"
	"assetwatch/internal/repository"
)

// ErrNotFound reports a lookup for a record that does not exist.
var ErrNotFound = errors.New("not found")

// AssetService provides business logic for the asset registry and the
// custody workflow. Status changes go through the transition table;
// an illegal transition is a caller error, never applied.
type AssetService struct {
	repo     repository.Repository
	eventBus *EventBus
	now      func() time.Time
}

// NewAssetService creates a new asset service
func NewAssetService(repo repository.Repository, eventBus *EventBus) *AssetService {
	return &AssetService{
		repo:     repo,
		eventBus: eventBus,
		now:      time.Now,
	}
}

// GetAsset retrieves a single asset by ID
func (s *AssetService) GetAsset(ctx context.Context, id int64) (*domain.Asset, error) {
	asset, err := s.repo.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %d: %w", id, ErrNotFound)
	}
	return asset, nil
}

// ListAssets returns all assets, optionally filtered by status
func (s *AssetService) ListAssets(ctx context.Context, status domain.Status) ([]domain.Asset, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return s.repo.ListAssets(ctx, status)
}

// CreateAsset registers a new asset. The hardware address, when given,
// is normalized to canonical uppercase colon-separated form on write so
// equivalent spellings cannot produce duplicate entries.
func (s *AssetService) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	if asset.Tag == "" {
		return fmt.Errorf("asset tag required")
	}
	if asset.Name == "" {
		return fmt.Errorf("asset name required")
	}
	if asset.MAC != "" {
		mac, err := domain.NormalizeMAC(asset.MAC)
		if err != nil {
			return err
		}
		asset.MAC = mac
	}

	if err := s.repo.CreateAsset(ctx, asset); err != nil {
		return err
	}

	s.audit(ctx, nil, domain.AuditActionCreate,
		fmt.Sprintf("asset:%d", asset.ID),
		fmt.Sprintf("registered asset %s (%s)", asset.Tag, asset.Name))

	s.eventBus.Publish(Event{
		Type:    EventAssetCreated,
		Payload: map[string]string{"tag": asset.Tag},
	})
	return nil
}

// UpdateAsset rewrites an asset's descriptive fields, normalizing the
// hardware address when present. Status is not writable here: the
// stored value is carried over, and changes go through SetStatus and
// the transition table.
func (s *AssetService) UpdateAsset(ctx context.Context, asset *domain.Asset) error {
	current, err := s.GetAsset(ctx, asset.ID)
	if err != nil {
		return err
	}
	if asset.Tag == "" {
		return fmt.Errorf("asset tag required")
	}
	if asset.Name == "" {
		return fmt.Errorf("asset name required")
	}
	if asset.MAC != "" {
		mac, err := domain.NormalizeMAC(asset.MAC)
		if err != nil {
			return err
		}
		asset.MAC = mac
	}

	// Runtime fields belong to the status and sighting paths.
	asset.Status = current.Status
	if asset.Condition == "" {
		asset.Condition = current.Condition
	}
	if asset.IP == "" {
		asset.IP = current.IP
	}

	if err := s.repo.UpdateAsset(ctx, asset); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventAssetUpdated,
		Payload: map[string]string{"tag": asset.Tag},
	})
	return nil
}

// SetStatus applies a manual status change, subject to the transition
// table.
func (s *AssetService) SetStatus(ctx context.Context, id int64, status domain.Status, location string) error {
	asset, err := s.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(asset.Status, status) {
		return fmt.Errorf("cannot transition asset %s from %s to %s", asset.Tag, asset.Status, status)
	}
	if err := s.repo.UpdateAssetStatus(ctx, id, status, location); err != nil {
		return err
	}

	s.audit(ctx, nil, domain.AuditActionUpdate,
		fmt.Sprintf("asset:%d", id),
		fmt.Sprintf("asset %s: %s -> %s", asset.Tag, asset.Status, status))
	return nil
}

// Issue checks an asset out to a custodian. The asset must be in a
// state that permits ASSIGNED, and must not already have an open
// assignment.
func (s *AssetService) Issue(ctx context.Context, assetID, toID, byID int64, purpose string, due *time.Time) (*domain.Assignment, error) {
	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(asset.Status, domain.StatusAssigned) {
		return nil, fmt.Errorf("asset %s is %s and cannot be issued", asset.Tag, asset.Status)
	}

	holder, err := s.repo.GetCustodian(ctx, toID)
	if err != nil {
		return nil, err
	}
	if holder == nil {
		return nil, fmt.Errorf("custodian %d: %w", toID, ErrNotFound)
	}

	open, err := s.repo.OpenAssignment(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("asset %s already has an open assignment", asset.Tag)
	}

	assignment := &domain.Assignment{
		AssetID:      assetID,
		AssignedTo:   toID,
		AssignedBy:   byID,
		Purpose:      purpose,
		ConditionOut: asset.Condition,
		DueAt:        due,
	}
	if err := s.repo.CreateAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	if err := s.repo.UpdateAssetStatus(ctx, assetID, domain.StatusAssigned, ""); err != nil {
		return nil, fmt.Errorf("mark asset assigned: %w", err)
	}

	note := &domain.Notification{
		CustodianID: toID,
		Message:     fmt.Sprintf("Asset %s (%s) has been issued to you.", asset.Tag, asset.Name),
	}
	if err := s.repo.CreateNotification(ctx, note); err != nil {
		log.Printf("Failed to create issue notification: %v", err)
	}

	s.audit(ctx, &byID, domain.AuditActionIssue,
		fmt.Sprintf("asset:%d", assetID),
		fmt.Sprintf("issued %s to %s", asset.Tag, holder.Name))

	s.eventBus.Publish(Event{
		Type:    EventAssetIssued,
		Payload: map[string]string{"tag": asset.Tag, "to": holder.Name},
	})
	return assignment, nil
}

// Return closes an asset's open assignment and moves it back to
// AVAILABLE, recording the returned condition.
func (s *AssetService) Return(ctx context.Context, assetID int64, condition domain.Condition) error {
	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}

	open, err := s.repo.OpenAssignment(ctx, assetID)
	if err != nil {
		return err
	}
	if open == nil {
		return fmt.Errorf("asset %s has no open assignment", asset.Tag)
	}

	if condition == "" {
		condition = open.ConditionOut
	}
	if err := s.repo.CloseAssignment(ctx, open.ID, s.now().UTC(), condition); err != nil {
		return fmt.Errorf("close assignment: %w", err)
	}

	if domain.CanTransition(asset.Status, domain.StatusAvailable) {
		if err := s.repo.UpdateAssetStatus(ctx, assetID, domain.StatusAvailable, ""); err != nil {
			return fmt.Errorf("mark asset available: %w", err)
		}
	}

	s.audit(ctx, &open.AssignedTo, domain.AuditActionReturn,
		fmt.Sprintf("asset:%d", assetID),
		fmt.Sprintf("returned %s in condition %s", asset.Tag, condition))

	s.eventBus.Publish(Event{
		Type:    EventAssetReturned,
		Payload: map[string]string{"tag": asset.Tag},
	})
	return nil
}

func (s *AssetService) audit(ctx context.Context, actor *int64, action domain.AuditAction, subject, description string) {
	entry := &domain.AuditEntry{Actor: actor, Action: action, Subject: subject, Description: description}
	if err := s.repo.AppendAudit(ctx, entry); err != nil {
		log.Printf("Failed to append audit entry: %v", err)
	}
}
