package domain

import "context"

//go:generate mockgen -source=project_repository.go -destination=project_repository_mock.go -package=domain

type ProjectRepository interface {
	// ListByStatuses returns projects in any of the given statuses with their client joined,
	// ordered by due date ascending and then by creation order.
	ListByStatuses(ctx context.Context, statuses []ProjectStatus) ([]Project, error)
}
