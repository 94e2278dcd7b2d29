package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
	"github.com/vadim/infra-metric/internal/domain/account/export"
	"github.com/vadim/infra-metric/internal/domain/account/service"
)

// Archiver stores exported files.
// Defined here (consumer) rather than in the storage package (provider).
type Archiver interface {
	ArchiveCSV(ctx context.Context, filename string, body []byte) (*ArchiveOutput, error)
}

// ArchiveOutput describes an archived export
type ArchiveOutput struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Export reports
const (
	ReportAccounts  = "accounts"
	ReportGroups    = "groups"
	ReportCapacity  = "capacity"
	ReportNoReplies = "no_replies"
)

// Policy orchestrates export use-cases on top of the analytics service
type Policy struct {
	svc      *service.Service
	archiver Archiver
	now      func() time.Time
}

// New creates a new export policy. archiver may be nil when archiving is disabled.
func New(svc *service.Service, archiver Archiver) *Policy {
	return &Policy{
		svc:      svc,
		archiver: archiver,
		now:      time.Now,
	}
}

// ExportInput selects what goes into an export
type ExportInput struct {
	Report    string
	Dimension entity.Dimension
	View      entity.View
	Threshold int64
	Drilldown service.DrilldownQuery
}

// ExportOutput is a rendered CSV export
type ExportOutput struct {
	Filename string
	Body     string
	Rows     int
}

// Export renders a report as CSV
func (p *Policy) Export(ctx context.Context, in ExportInput) (*ExportOutput, error) {
	var (
		body string
		rows int
	)

	switch in.Report {
	case ReportAccounts:
		records, err := p.svc.Drilldown(in.Drilldown)
		if err != nil {
			return nil, err
		}
		body, rows = export.ToCSV(records, export.AccountColumns), len(records)

	case ReportGroups:
		dim := in.Dimension
		if dim == "" {
			dim = entity.DimensionProvider
		}
		groups, err := p.svc.Groups(dim, in.View, in.Threshold)
		if err != nil {
			return nil, err
		}
		body, rows = export.ToCSV(groups, export.AggregateColumns), len(groups)

	case ReportCapacity:
		plan, err := p.svc.Capacity(ctx)
		if err != nil {
			return nil, err
		}
		body, rows = export.ToCSV(plan.Clients, export.CapacityColumns), len(plan.Clients)

	case ReportNoReplies:
		dim := in.Dimension
		if dim == "" {
			dim = entity.DimensionProvider
		}
		report, err := p.svc.NoReplies(dim, in.Threshold)
		if err != nil {
			return nil, err
		}
		body, rows = export.ToCSV(report.Accounts, export.AccountColumns), len(report.Accounts)

	default:
		return nil, entity.ErrUnknownReport
	}

	return &ExportOutput{
		Filename: export.Filename(in.Report, p.now()),
		Body:     body,
		Rows:     rows,
	}, nil
}

// ArchiveResult is an export that was rendered and archived
type ArchiveResult struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Key      string `json:"key"`
	URL      string `json:"url"`
}

// Archive renders a report and uploads it
func (p *Policy) Archive(ctx context.Context, in ExportInput) (*ArchiveResult, error) {
	if p.archiver == nil {
		return nil, entity.ErrArchiveDisabled
	}

	out, err := p.Export(ctx, in)
	if err != nil {
		return nil, err
	}

	archived, err := p.archiver.ArchiveCSV(ctx, out.Filename, []byte(out.Body))
	if err != nil {
		return nil, fmt.Errorf("archiving %s: %w", out.Filename, err)
	}

	return &ArchiveResult{
		Filename: out.Filename,
		Rows:     out.Rows,
		Key:      archived.Key,
		URL:      archived.URL,
	}, nil
}
