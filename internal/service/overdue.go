package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"assetwatch/internal/domain"
	"assetwatch/internal/mail"
)

const (
	mailAttempts = 3
	mailBackoff  = 30 * time.Second
)

// OverdueRepository defines the repository interface for the overdue check
type OverdueRepository interface {
	ListOverdueAssignments(ctx context.Context, now time.Time) ([]domain.Assignment, error)
	GetAsset(ctx context.Context, id int64) (*domain.Asset, error)
	GetCustodian(ctx context.Context, id int64) (*domain.Custodian, error)
	CreateNotification(ctx context.Context, n *domain.Notification) error
	AppendAudit(ctx context.Context, e *domain.AuditEntry) error
}

// OverdueService runs the periodic overdue-assignment check. For each
// open assignment past its due date it creates in-app notifications
// (the durable side effect) and attempts best-effort email delivery
// with bounded retry. Nothing here propagates a failure to the caller
// beyond the repository being unreachable.
type OverdueService struct {
	repo     OverdueRepository
	sender   mail.Sender
	eventBus *EventBus

	// Overridable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewOverdueService creates a new overdue service
func NewOverdueService(repo OverdueRepository, sender mail.Sender, eventBus *EventBus) *OverdueService {
	return &OverdueService{
		repo:     repo,
		sender:   sender,
		eventBus: eventBus,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Run selects every open assignment past its due date and processes
// each one. A per-assignment error is audited and skipped; the pass
// always continues to the next overdue assignment.
func (s *OverdueService) Run(ctx context.Context) (*domain.OverdueReport, error) {
	now := s.now().UTC()

	overdue, err := s.repo.ListOverdueAssignments(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list overdue assignments: %w", err)
	}

	report := &domain.OverdueReport{}
	for _, assignment := range overdue {
		report.OverdueSeen++

		created, sent, err := s.processAssignment(ctx, assignment, now)
		report.NotificationsCreated += created
		report.EmailsSent += sent
		if err != nil {
			log.Printf("Failed to process overdue assignment %d: %v", assignment.ID, err)
			s.audit(ctx, domain.AuditActionError,
				fmt.Sprintf("assignment:%d", assignment.ID),
				fmt.Sprintf("overdue processing error: %v", err))
		}
	}

	if report.OverdueSeen > 0 {
		log.Printf("Overdue check: %d overdue, %d notifications, %d emails",
			report.OverdueSeen, report.NotificationsCreated, report.EmailsSent)
	}

	s.eventBus.Publish(Event{
		Type:    EventOverdueCheckDone,
		Payload: report,
	})

	return report, nil
}

// processAssignment handles one overdue assignment: notifications for
// both custodians, then the email attempt. Returns the notification and
// email counts it contributed.
func (s *OverdueService) processAssignment(ctx context.Context, assignment domain.Assignment, now time.Time) (created, sent int, err error) {
	asset, err := s.repo.GetAsset(ctx, assignment.AssetID)
	if err != nil {
		return 0, 0, fmt.Errorf("get asset: %w", err)
	}
	if asset == nil {
		return 0, 0, fmt.Errorf("asset %d not found", assignment.AssetID)
	}

	holder, err := s.repo.GetCustodian(ctx, assignment.AssignedTo)
	if err != nil {
		return 0, 0, fmt.Errorf("get holder: %w", err)
	}
	if holder == nil {
		return 0, 0, fmt.Errorf("custodian %d not found", assignment.AssignedTo)
	}

	issuer, err := s.repo.GetCustodian(ctx, assignment.AssignedBy)
	if err != nil {
		return 0, 0, fmt.Errorf("get issuer: %w", err)
	}
	if issuer == nil {
		return 0, 0, fmt.Errorf("custodian %d not found", assignment.AssignedBy)
	}

	overdueFor := now.Sub(*assignment.DueAt).Round(time.Hour)
	message := fmt.Sprintf("Asset %s (%s) held by %s was due back %s and is overdue by %s.",
		asset.Tag, asset.Name, holder.Name,
		assignment.DueAt.Format("2006-01-02"), overdueFor)

	// Notification creation is the durable side effect; it happens
	// regardless of whether email delivery is possible.
	issuerNote := &domain.Notification{CustodianID: issuer.ID, Message: message, Severity: domain.SeverityAlert}
	if err := s.repo.CreateNotification(ctx, issuerNote); err != nil {
		return created, sent, fmt.Errorf("create issuer notification: %w", err)
	}
	created++

	holderNote := &domain.Notification{CustodianID: holder.ID, Message: message, Severity: domain.SeverityWarning}
	if err := s.repo.CreateNotification(ctx, holderNote); err != nil {
		return created, sent, fmt.Errorf("create holder notification: %w", err)
	}
	created++

	recipients := mailRecipients(holder, issuer)
	if !s.sender.Enabled() || len(recipients) == 0 {
		return created, sent, nil
	}

	subject := fmt.Sprintf("Overdue equipment: %s", asset.Tag)
	if s.deliverWithRetry(ctx, assignment.ID, recipients, subject, message) {
		sent++
	}
	return created, sent, nil
}

// deliverWithRetry attempts delivery up to mailAttempts times with a
// fixed backoff. Exhaustion is downgraded to an audit entry, never an
// error.
func (s *OverdueService) deliverWithRetry(ctx context.Context, assignmentID int64, to []string, subject, body string) bool {
	var lastErr error
	for attempt := 1; attempt <= mailAttempts; attempt++ {
		lastErr = s.sender.Send(to, subject, body)
		if lastErr == nil {
			return true
		}
		log.Printf("Mail delivery attempt %d/%d for assignment %d failed: %v",
			attempt, mailAttempts, assignmentID, lastErr)
		if attempt < mailAttempts {
			s.sleep(mailBackoff)
		}
	}

	s.audit(ctx, domain.AuditActionNotify,
		fmt.Sprintf("assignment:%d", assignmentID),
		fmt.Sprintf("email delivery failed after %d attempts: %v", mailAttempts, lastErr))
	return false
}

func (s *OverdueService) audit(ctx context.Context, action domain.AuditAction, subject, description string) {
	entry := &domain.AuditEntry{Action: action, Subject: subject, Description: description}
	if err := s.repo.AppendAudit(ctx, entry); err != nil {
		log.Printf("Failed to append audit entry: %v", err)
	}
}

func mailRecipients(custodians ...*domain.Custodian) []string {
	var to []string
	for _, c := range custodians {
		if c != nil && c.Email != "" {
			to = append(to, c.Email)
		}
	}
	return to
}
