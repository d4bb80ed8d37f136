package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nihith303/interview-ace/internal/interview"
	"nihith303/interview-ace/internal/models"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportExists   = errors.New("report already exists for session")
)

// ReportRepository is the append-only document store for reports.
type ReportRepository interface {
	Save(ctx context.Context, report interview.Report) (interview.Report, error)
	ListByUser(ctx context.Context, userID string) ([]interview.Report, error)
	FindByID(ctx context.Context, id string) (interview.Report, error)
	FindBySession(ctx context.Context, sessionID string) (interview.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Save(ctx context.Context, report interview.Report) (interview.Report, error) {
	row, err := models.NewReport(report)
	if err != nil {
		return interview.Report{}, err
	}

	var existing int64
	if err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("session_id = ?", report.SessionID).
		Count(&existing).Error; err != nil {
		return interview.Report{}, fmt.Errorf("failed to check report: %w", err)
	}
	if existing > 0 {
		return interview.Report{}, ErrReportExists
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return interview.Report{}, ErrReportExists
		}
		return interview.Report{}, fmt.Errorf("failed to create report: %w", err)
	}
	return row.ToDomain()
}

func (r *reportRepository) ListByUser(ctx context.Context, userID string) ([]interview.Report, error) {
	var rows []models.Report
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]interview.Report, 0, len(rows))
	for i := range rows {
		report, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *reportRepository) FindByID(ctx context.Context, id string) (interview.Report, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return interview.Report{}, ErrReportNotFound
	}
	return r.findOne(ctx, "id = ?", parsed)
}

func (r *reportRepository) FindBySession(ctx context.Context, sessionID string) (interview.Report, error) {
	return r.findOne(ctx, "session_id = ?", sessionID)
}

func (r *reportRepository) findOne(ctx context.Context, query string, arg any) (interview.Report, error) {
	var row models.Report
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return interview.Report{}, ErrReportNotFound
		}
		return interview.Report{}, fmt.Errorf("failed to find report: %w", err)
	}
	return row.ToDomain()
}

// memoryReportRepository is used in development and tests.
type memoryReportRepository struct {
	mu      sync.RWMutex
	reports map[string]interview.Report
}

func NewMemoryReportRepository() ReportRepository {
	return &memoryReportRepository{reports: make(map[string]interview.Report)}
}

func (r *memoryReportRepository) Save(_ context.Context, report interview.Report) (interview.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reports {
		if existing.SessionID == report.SessionID {
			return interview.Report{}, ErrReportExists
		}
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if _, ok := r.reports[report.ID]; ok {
		return interview.Report{}, ErrReportExists
	}
	report = report.Clone()
	r.reports[report.ID] = report
	return report.Clone(), nil
}

func (r *memoryReportRepository) ListByUser(_ context.Context, userID string) ([]interview.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reports := make([]interview.Report, 0)
	for _, report := range r.reports {
		if report.UserID == userID {
			reports = append(reports, report.Clone())
		}
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID > reports[j].ID
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (r *memoryReportRepository) FindByID(_ context.Context, id string) (interview.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return interview.Report{}, ErrReportNotFound
	}
	return report.Clone(), nil
}

func (r *memoryReportRepository) FindBySession(_ context.Context, sessionID string) (interview.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, report := range r.reports {
		if report.SessionID == sessionID {
			return report.Clone(), nil
		}
	}
	return interview.Report{}, ErrReportNotFound
}
