package api

import (
	"context"
	"io"
	"log/slog"

	"platter/internal/catalog"
	"platter/internal/logging"
	"platter/internal/reports"
	"platter/internal/services"
)

// ReportService exposes read-only report and status views.
type ReportService struct {
	store  *catalog.Store
	logger *slog.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(store *catalog.Store, logger *slog.Logger) *ReportService {
	if store == nil {
		return nil
	}
	return &ReportService{
		store:  store,
		logger: logging.NewComponentLogger(logger, "report-service"),
	}
}

// Status aggregates catalog totals and the most recent rebin run.
func (s *ReportService) Status(ctx context.Context) (StatusResponse, error) {
	counts, err := s.store.CatalogCounts(ctx)
	if err != nil {
		return StatusResponse{}, err
	}
	resp := StatusResponse{
		Items:      counts.Items,
		Artists:    counts.Artists,
		Zones:      counts.Zones,
		Unassigned: counts.Unassigned,
	}
	last, err := s.store.LatestRun(ctx)
	if err != nil {
		return StatusResponse{}, err
	}
	if last != nil {
		moves, err := s.store.ListMovesForRun(ctx, last.ID)
		if err != nil {
			return StatusResponse{}, err
		}
		run := FromRun(last, len(moves))
		resp.LastRun = &run
	}
	return resp, nil
}

// EarlyWarning surveys bucket range fill levels across bucketed zones.
func (s *ReportService) EarlyWarning(ctx context.Context) ([]reports.EarlyWarningRow, error) {
	return reports.EarlyWarning(ctx, s.store, reports.DefaultWarnPercent)
}

// FirstLast builds the shelf index for one zone.
func (s *ReportService) FirstLast(ctx context.Context, zoneCode string) ([]reports.FirstLastRow, error) {
	zone, err := s.requireZone(ctx, zoneCode)
	if err != nil {
		return nil, err
	}
	return reports.FirstLast(ctx, s.store, zone)
}

// ZoneBins reports occupancy for every active logical bin in a zone.
func (s *ReportService) ZoneBins(ctx context.Context, zoneCode string) ([]BinOccupancy, error) {
	zone, err := s.requireZone(ctx, zoneCode)
	if err != nil {
		return nil, err
	}
	bins, err := s.store.ActiveBins(ctx, zone.ID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountItemsPerBin(ctx, zone.ID)
	if err != nil {
		return nil, err
	}

	out := make([]BinOccupancy, 0, len(bins))
	for _, bin := range bins {
		label, err := s.store.PhysicalLabelForLogical(ctx, bin.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, BinOccupancy{
			LogicalBinID:     bin.ID,
			Number:           bin.Number,
			Capacity:         bin.EffectiveCapacity(zone),
			CapacityOverride: bin.CapacityOverride,
			PhysicalLabel:    label,
			ItemCount:        counts[bin.ID],
		})
	}
	return out, nil
}

// TaskList collects a run's moves, or every pending move when runID is
// empty.
func (s *ReportService) TaskList(ctx context.Context, runID string) (*reports.TaskList, error) {
	if runID == "" {
		return reports.PendingTaskList(ctx, s.store)
	}
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, services.Wrap(services.ErrNotFound, "reports", "task list", "unknown run "+runID, nil)
	}
	return reports.TaskListForRun(ctx, s.store, runID)
}

// WriteCatalogBook renders the printable catalog book for a zone.
func (s *ReportService) WriteCatalogBook(ctx context.Context, zoneCode string, w io.Writer) error {
	zone, err := s.requireZone(ctx, zoneCode)
	if err != nil {
		return err
	}
	return reports.CatalogBook(ctx, s.store, zone, w)
}

// WriteLabelSheet renders the QR label sheet for a zone's physical bins.
func (s *ReportService) WriteLabelSheet(ctx context.Context, zoneCode string, w io.Writer) error {
	zone, err := s.requireZone(ctx, zoneCode)
	if err != nil {
		return err
	}
	return reports.LabelSheet(ctx, s.store, zone, w)
}

func (s *ReportService) requireZone(ctx context.Context, code string) (*catalog.StorageZone, error) {
	zone, err := s.store.GetZoneByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, services.Wrap(services.ErrNotFound, "reports", "zone lookup", "unknown zone "+code, nil)
	}
	return zone, nil
}
