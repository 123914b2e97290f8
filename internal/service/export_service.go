package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-units-api/internal/dto"
	"github.com/noah-isme/school-units-api/internal/models"
	appErrors "github.com/noah-isme/school-units-api/pkg/errors"
	"github.com/noah-isme/school-units-api/pkg/export"
)

type schoolUnitPager interface {
	Page(ctx context.Context, filter models.SchoolUnitFilter) (*SchoolUnitPage, error)
}

type homologationHistoryReader interface {
	ListHistory(ctx context.Context, unitID int64, limit int) ([]models.HomologationEvent, error)
}

var schoolUnitExportHeaders = []string{"ID", "School unit", "SEC code", "UO code", "Typology", "Municipality", "NTE", "Status"}

const (
	exportDatasetSchoolUnits   = "school_units"
	exportDatasetHomologations = "homologations"
)

var historyExportHeaders = []string{"ID", "Action", "Reason", "Performed by", "Created at"}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders listings and histories as downloadable files.
type ExportService struct {
	units         schoolUnitPager
	homologations homologationHistoryReader
	metrics       *MetricsService
	logger        *zap.Logger
	now           func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(units schoolUnitPager, homologations homologationHistoryReader, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{units: units, homologations: homologations, metrics: metrics, logger: logger, now: time.Now}
}

// ExportSchoolUnits walks the whole filtered listing in keyset order and renders it.
func (s *ExportService) ExportSchoolUnits(ctx context.Context, rawFormat string, q dto.SchoolUnitListQuery) (*ExportFile, error) {
	renderer, format, err := rendererFor(rawFormat)
	if err != nil {
		return nil, err
	}
	filter, err := ParseListQuery(q)
	if err != nil {
		return nil, err
	}
	filter.PageSize = MaxPageSize

	dataset := export.Dataset{Title: "School units", Headers: schoolUnitExportHeaders}
	for {
		page, err := s.units.Page(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"ID":           strconv.FormatInt(item.ID, 10),
				"School unit":  item.Name,
				"SEC code":     item.SecCode,
				"UO code":      item.UOCode,
				"Typology":     item.TypologyName,
				"Municipality": item.MunicipalityName,
				"NTE":          item.NTEName,
				"Status":       item.Status,
			})
		}
		if !page.HasNext || page.NextCursor == nil {
			break
		}
		next, err := strconv.ParseInt(*page.NextCursor, 10, 64)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to continue export")
		}
		filter.Cursor = &next
	}

	return s.render(renderer, format, exportDatasetSchoolUnits, "school_units", dataset)
}

// ExportHistory renders the full homologation history of a unit.
func (s *ExportService) ExportHistory(ctx context.Context, unitID int64, rawFormat string) (*ExportFile, error) {
	renderer, format, err := rendererFor(rawFormat)
	if err != nil {
		return nil, err
	}
	events, err := s.homologations.ListHistory(ctx, unitID, 0)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Homologation history of school unit %d", unitID),
		Headers: historyExportHeaders,
	}
	for _, event := range events {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":           strconv.FormatInt(event.ID, 10),
			"Action":       string(event.Action),
			"Reason":       stringOrEmpty(event.Reason),
			"Performed by": stringOrEmpty(event.PerformedBy),
			"Created at":   event.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return s.render(renderer, format, exportDatasetHomologations, fmt.Sprintf("school_unit_%d_homologations", unitID), dataset)
}

// render encodes dataset. kind labels metrics and must stay a fixed value;
// filename may carry record ids.
func (s *ExportService) render(renderer export.Renderer, format export.Format, kind, filename string, dataset export.Dataset) (*ExportFile, error) {
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.metrics.RecordExport(kind, string(format))
	s.logger.Info("export generated",
		zap.String("dataset", kind),
		zap.String("file", filename),
		zap.String("format", string(format)),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", filename, s.now().UTC().Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

func rendererFor(raw string) (export.Renderer, export.Format, error) {
	format, err := export.ParseFormat(raw)
	if err != nil {
		return nil, "", appErrors.Validation("format must be csv, xlsx or pdf")
	}
	renderer, err := export.RendererFor(format)
	if err != nil {
		return nil, "", appErrors.Validation(err.Error())
	}
	return renderer, format, nil
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
