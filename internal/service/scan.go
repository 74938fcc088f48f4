package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"assetwatch/internal/domain"
	"assetwatch/internal/scanner"
)

// ScanRepository defines the repository interface for reconciliation
type ScanRepository interface {
	GetAssetByMAC(ctx context.Context, mac string) (*domain.Asset, error)
	RecordSighting(ctx context.Context, id int64, ip string, seen time.Time) error
	UpdateAssetStatus(ctx context.Context, id int64, status domain.Status, location string) error
	AppendAudit(ctx context.Context, e *domain.AuditEntry) error
}

// Scanner produces live-host results for a subnet.
type Scanner interface {
	Scan(ctx context.Context, cidr string) ([]domain.ScanResult, error)
}

// ScanService drives subnet scans and reconciles the results against
// the asset registry.
type ScanService struct {
	scanner  Scanner
	repo     ScanRepository
	eventBus *EventBus
	now      func() time.Time
}

// NewScanService creates a new scan service
func NewScanService(sc Scanner, repo ScanRepository, eventBus *EventBus) *ScanService {
	return &ScanService{
		scanner:  sc,
		repo:     repo,
		eventBus: eventBus,
		now:      time.Now,
	}
}

// Scan probes the subnet and reconciles responding hosts against the
// registry. The only caller-visible failure is scanner.ErrInvalidSubnet;
// individual host unreachability never fails the pass.
func (s *ScanService) Scan(ctx context.Context, cidr string) (*domain.ScanReport, error) {
	results, err := s.scanner.Scan(ctx, cidr)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, cidr, results)
}

// Reconcile maps one pass of scan results onto the asset registry by
// hardware address. Matched assets get their sighting fields refreshed;
// a MISSING asset found alive is recovered to AVAILABLE. Hosts with no
// matching asset are reported, never persisted. Re-running the same
// results is idempotent: last-seen advances but an asset already
// AVAILABLE is not counted as recovered again.
func (s *ScanService) Reconcile(ctx context.Context, subnet string, results []domain.ScanResult) (*domain.ScanReport, error) {
	report := &domain.ScanReport{Subnet: subnet}
	seen := s.now().UTC()

	for _, result := range results {
		if !result.Alive {
			continue
		}
		report.HostsResponding++

		if result.MAC == "" {
			// Live host whose hardware address could not be resolved.
			report.UnknownHosts++
			report.Unknown = append(report.Unknown, result)
			continue
		}

		asset, err := s.repo.GetAssetByMAC(ctx, result.MAC)
		if err != nil {
			log.Printf("Failed to look up asset for %s: %v", result.MAC, err)
			continue
		}
		if asset == nil {
			report.UnknownHosts++
			report.Unknown = append(report.Unknown, result)
			continue
		}

		report.AssetsMatched++
		if err := s.repo.RecordSighting(ctx, asset.ID, result.IP, seen); err != nil {
			log.Printf("Failed to record sighting for asset %s: %v", asset.Tag, err)
			continue
		}

		if asset.Status == domain.StatusMissing && domain.CanTransition(asset.Status, domain.StatusAvailable) {
			location := fmt.Sprintf("Auto-detected: %s", result.IP)
			if err := s.repo.UpdateAssetStatus(ctx, asset.ID, domain.StatusAvailable, location); err != nil {
				log.Printf("Failed to recover asset %s: %v", asset.Tag, err)
				continue
			}
			report.MissingRecovered++
			log.Printf("Recovered missing asset %s at %s", asset.Tag, result.IP)

			s.eventBus.Publish(Event{
				Type:    EventAssetRecovered,
				Payload: map[string]string{"tag": asset.Tag, "ip": result.IP},
			})
		}
	}

	entry := &domain.AuditEntry{
		Action:  domain.AuditActionScan,
		Subject: fmt.Sprintf("subnet:%s", subnet),
		Description: fmt.Sprintf("scan of %s: %d responding, %d matched, %d recovered, %d unknown",
			subnet, report.HostsResponding, report.AssetsMatched, report.MissingRecovered, report.UnknownHosts),
	}
	if err := s.repo.AppendAudit(ctx, entry); err != nil {
		log.Printf("Failed to record scan audit entry: %v", err)
	}

	s.eventBus.Publish(Event{
		Type:    EventScanCompleted,
		Payload: report,
	})

	return report, nil
}

// compile-time check that the scanner satisfies the service interface
var _ Scanner = (*scanner.Scanner)(nil)
