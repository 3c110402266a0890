package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/domain"
)

type projectRow struct {
	ID          string
	Name        string
	DueDate     sql.NullString
	Status      string
	ClientID    sql.NullString
	ClientName  sql.NullString
	ClientEmail sql.NullString
	CreatedAt   time.Time
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) domain.ProjectRepository {
	return &projectRepository{
		db: db,
	}
}

func (r *projectRepository) ListByStatuses(ctx context.Context, statuses []domain.ProjectStatus) ([]domain.Project, error) {
	if len(statuses) == 0 {
		return []domain.Project{}, nil
	}

	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, s.String())
	}

	var rows []projectRow
	// due_date is cast to text so that both drivers hand back the raw stored value.
	err := r.db.WithContext(ctx).
		Table("projects").
		Select(`projects.id, projects.name, CAST(projects.due_date AS TEXT) AS due_date, projects.status,
			projects.client_id, clients.name AS client_name, clients.email AS client_email, projects.created_at`).
		Joins("LEFT JOIN clients ON clients.id = projects.client_id").
		Where("projects.status IN ?", values).
		Order("projects.due_date ASC").
		Order("projects.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, domain.Project{
			ID:          row.ID,
			Name:        row.Name,
			DueDate:     row.DueDate.String,
			Status:      domain.ProjectStatus(row.Status),
			ClientID:    row.ClientID.String,
			ClientName:  row.ClientName.String,
			ClientEmail: row.ClientEmail.String,
			CreatedAt:   row.CreatedAt,
		})
	}

	return projects, nil
}
