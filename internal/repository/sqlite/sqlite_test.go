package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"assetwatch/internal/domain"
)

// newTestRepo creates an in-memory repository for testing.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestCustodian(t *testing.T, repo *Repository, name, email string) *domain.Custodian {
	t.Helper()
	c := &domain.Custodian{Name: name, Email: email}
	assertNoError(t, repo.CreateCustodian(context.Background(), c))
	return c
}

func newTestAsset(t *testing.T, repo *Repository, tag, mac string) *domain.Asset {
	t.Helper()
	a := &domain.Asset{Tag: tag, Name: "Test device", MAC: mac}
	assertNoError(t, repo.CreateAsset(context.Background(), a))
	return a
}

func TestHelpers(t *testing.T) {
	if got := nullToString(sql.NullString{String: "x", Valid: true}); got != "x" {
		t.Errorf("nullToString valid = %q", got)
	}
	if got := nullToString(sql.NullString{String: "x", Valid: false}); got != "" {
		t.Errorf("nullToString invalid = %q", got)
	}
	if got := stringToNull(""); got.Valid {
		t.Error("stringToNull(\"\") should be NULL")
	}
	if got := timeToNull(nil); got.Valid {
		t.Error("timeToNull(nil) should be NULL")
	}
}

func TestCreateAndGetAsset(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	asset := newTestAsset(t, repo, "AW-LAP-0001", "AA:BB:CC:DD:EE:FF")
	if asset.ID == 0 {
		t.Fatal("expected generated asset ID")
	}
	if asset.Status != domain.StatusAvailable {
		t.Errorf("default status = %s, want AVAILABLE", asset.Status)
	}
	if asset.Condition != domain.ConditionGood {
		t.Errorf("default condition = %s, want GOOD", asset.Condition)
	}

	byTag, err := repo.GetAssetByTag(ctx, "AW-LAP-0001")
	assertNoError(t, err)
	if byTag == nil || byTag.ID != asset.ID {
		t.Fatalf("GetAssetByTag returned %+v", byTag)
	}

	missing, err := repo.GetAsset(ctx, 9999)
	assertNoError(t, err)
	if missing != nil {
		t.Errorf("expected nil for unknown asset, got %+v", missing)
	}
}

func TestGetAssetByMACCaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	asset := newTestAsset(t, repo, "AW-LAP-0002", "AA:BB:CC:DD:EE:01")

	for _, lookup := range []string{"AA:BB:CC:DD:EE:01", "aa:bb:cc:dd:ee:01", "Aa:Bb:Cc:Dd:Ee:01"} {
		got, err := repo.GetAssetByMAC(ctx, lookup)
		assertNoError(t, err)
		if got == nil || got.ID != asset.ID {
			t.Errorf("GetAssetByMAC(%q) = %+v, want asset %d", lookup, got, asset.ID)
		}
	}

	none, err := repo.GetAssetByMAC(ctx, "FF:FF:FF:FF:FF:FF")
	assertNoError(t, err)
	if none != nil {
		t.Errorf("expected nil for unknown MAC, got %+v", none)
	}
}

func TestAssetMACUnique(t *testing.T) {
	repo := newTestRepo(t)

	newTestAsset(t, repo, "AW-LAP-0003", "AA:BB:CC:DD:EE:02")

	dup := &domain.Asset{Tag: "AW-LAP-0004", Name: "Duplicate", MAC: "AA:BB:CC:DD:EE:02"}
	if err := repo.CreateAsset(context.Background(), dup); err == nil {
		t.Fatal("expected unique constraint violation for duplicate MAC")
	}

	// Assets without a hardware address do not collide with each other.
	newTestAsset(t, repo, "AW-MON-0001", "")
	newTestAsset(t, repo, "AW-MON-0002", "")
}

func TestRecordSighting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	asset := newTestAsset(t, repo, "AW-LAP-0005", "AA:BB:CC:DD:EE:03")
	seen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	assertNoError(t, repo.RecordSighting(ctx, asset.ID, "192.168.1.50", seen))

	got, err := repo.GetAsset(ctx, asset.ID)
	assertNoError(t, err)
	if got.IP != "192.168.1.50" {
		t.Errorf("IP = %q, want 192.168.1.50", got.IP)
	}
	if got.LastSeen == nil || !got.LastSeen.Equal(seen) {
		t.Errorf("LastSeen = %v, want %v", got.LastSeen, seen)
	}
	if got.Status != domain.StatusAvailable {
		t.Errorf("sighting must not change status, got %s", got.Status)
	}
}

func TestUpdateAssetStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	asset := newTestAsset(t, repo, "AW-LAP-0006", "")

	assertNoError(t, repo.UpdateAssetStatus(ctx, asset.ID, domain.StatusMissing, ""))
	got, err := repo.GetAsset(ctx, asset.ID)
	assertNoError(t, err)
	if got.Status != domain.StatusMissing {
		t.Fatalf("status = %s, want MISSING", got.Status)
	}

	assertNoError(t, repo.UpdateAssetStatus(ctx, asset.ID, domain.StatusAvailable, "Auto-detected: 192.168.1.50"))
	got, err = repo.GetAsset(ctx, asset.ID)
	assertNoError(t, err)
	if got.Status != domain.StatusAvailable {
		t.Errorf("status = %s, want AVAILABLE", got.Status)
	}
	if got.Location != "Auto-detected: 192.168.1.50" {
		t.Errorf("location = %q", got.Location)
	}
}

func TestListAssetsByStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := newTestAsset(t, repo, "AW-LAP-0007", "")
	newTestAsset(t, repo, "AW-LAP-0008", "")
	assertNoError(t, repo.UpdateAssetStatus(ctx, a.ID, domain.StatusMaintenance, ""))

	all, err := repo.ListAssets(ctx, "")
	assertNoError(t, err)
	if len(all) != 2 {
		t.Errorf("expected 2 assets, got %d", len(all))
	}

	maint, err := repo.ListAssets(ctx, domain.StatusMaintenance)
	assertNoError(t, err)
	if len(maint) != 1 || maint[0].ID != a.ID {
		t.Errorf("expected only the maintenance asset, got %+v", maint)
	}
}

func TestAssignmentLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	asset := newTestAsset(t, repo, "AW-CAM-0001", "")
	holder := newTestCustodian(t, repo, "Ama Mensah", "ama@example.com")
	issuer := newTestCustodian(t, repo, "Kofi Boateng", "")

	due := time.Now().Add(72 * time.Hour).UTC()
	a := &domain.Assignment{
		AssetID:    asset.ID,
		AssignedTo: holder.ID,
		AssignedBy: issuer.ID,
		Purpose:    "Field shoot",
		DueAt:      &due,
	}
	assertNoError(t, repo.CreateAssignment(ctx, a))
	if a.ID == 0 {
		t.Fatal("expected generated assignment ID")
	}

	open, err := repo.OpenAssignment(ctx, asset.ID)
	assertNoError(t, err)
	if open == nil || open.ID != a.ID {
		t.Fatalf("OpenAssignment = %+v, want assignment %d", open, a.ID)
	}

	// A second open assignment for the same asset is rejected.
	second := &domain.Assignment{AssetID: asset.ID, AssignedTo: issuer.ID, AssignedBy: holder.ID}
	if err := repo.CreateAssignment(ctx, second); err == nil {
		t.Fatal("expected second open assignment to violate unique index")
	}

	assertNoError(t, repo.CloseAssignment(ctx, a.ID, time.Now().UTC(), domain.ConditionGood))

	open, err = repo.OpenAssignment(ctx, asset.ID)
	assertNoError(t, err)
	if open != nil {
		t.Errorf("expected no open assignment after return, got %+v", open)
	}

	// Once returned, a new assignment may be opened.
	assertNoError(t, repo.CreateAssignment(ctx, second))
}

func TestListOverdueAssignments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	holder := newTestCustodian(t, repo, "Holder", "holder@example.com")
	issuer := newTestCustodian(t, repo, "Issuer", "issuer@example.com")

	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	overdueAsset := newTestAsset(t, repo, "AW-LAP-0010", "")
	overdue := &domain.Assignment{AssetID: overdueAsset.ID, AssignedTo: holder.ID, AssignedBy: issuer.ID, DueAt: &past}
	assertNoError(t, repo.CreateAssignment(ctx, overdue))

	onTimeAsset := newTestAsset(t, repo, "AW-LAP-0011", "")
	onTime := &domain.Assignment{AssetID: onTimeAsset.ID, AssignedTo: holder.ID, AssignedBy: issuer.ID, DueAt: &future}
	assertNoError(t, repo.CreateAssignment(ctx, onTime))

	noDueAsset := newTestAsset(t, repo, "AW-LAP-0012", "")
	noDue := &domain.Assignment{AssetID: noDueAsset.ID, AssignedTo: holder.ID, AssignedBy: issuer.ID}
	assertNoError(t, repo.CreateAssignment(ctx, noDue))

	returnedAsset := newTestAsset(t, repo, "AW-LAP-0013", "")
	returned := &domain.Assignment{AssetID: returnedAsset.ID, AssignedTo: holder.ID, AssignedBy: issuer.ID, DueAt: &past}
	assertNoError(t, repo.CreateAssignment(ctx, returned))
	assertNoError(t, repo.CloseAssignment(ctx, returned.ID, now, domain.ConditionGood))

	got, err := repo.ListOverdueAssignments(ctx, now)
	assertNoError(t, err)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 overdue assignment, got %d", len(got))
	}
	if got[0].ID != overdue.ID {
		t.Errorf("overdue assignment ID = %d, want %d", got[0].ID, overdue.ID)
	}
}

func TestNotifications(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := newTestCustodian(t, repo, "Reader", "")

	n1 := &domain.Notification{CustodianID: c.ID, Message: "first", Severity: domain.SeverityAlert}
	n2 := &domain.Notification{CustodianID: c.ID, Message: "second"}
	assertNoError(t, repo.CreateNotification(ctx, n1))
	assertNoError(t, repo.CreateNotification(ctx, n2))

	if n2.Severity != domain.SeverityInfo {
		t.Errorf("default severity = %s, want INFO", n2.Severity)
	}

	all, err := repo.ListNotifications(ctx, c.ID, false)
	assertNoError(t, err)
	if len(all) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(all))
	}

	assertNoError(t, repo.MarkNotificationRead(ctx, n1.ID))

	unread, err := repo.ListNotifications(ctx, c.ID, true)
	assertNoError(t, err)
	if len(unread) != 1 || unread[0].ID != n2.ID {
		t.Errorf("expected only the unread notification, got %+v", unread)
	}
}

func TestAuditTrail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := newTestCustodian(t, repo, "Actor", "")

	e1 := &domain.AuditEntry{Action: domain.AuditActionScan, Description: "scan of 192.168.1.0/24"}
	e2 := &domain.AuditEntry{Actor: &c.ID, Action: domain.AuditActionIssue, Subject: "asset:1", Description: "issued"}
	assertNoError(t, repo.AppendAudit(ctx, e1))
	assertNoError(t, repo.AppendAudit(ctx, e2))

	entries, err := repo.ListAudit(ctx, 10)
	assertNoError(t, err)
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].ID != e2.ID {
		t.Errorf("expected newest entry first, got %d", entries[0].ID)
	}
	if entries[0].Actor == nil || *entries[0].Actor != c.ID {
		t.Errorf("expected actor %d, got %v", c.ID, entries[0].Actor)
	}
	if entries[1].Actor != nil {
		t.Errorf("expected nil actor for system entry, got %v", entries[1].Actor)
	}
}
