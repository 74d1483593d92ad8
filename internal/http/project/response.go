package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/jcastell/obratrack/internal/project"
)

type projectResponse struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Location      string         `json:"location"`
	InitialAmount int64          `json:"initial_amount"`
	PlannedStart  time.Time      `json:"planned_start"`
	PlannedEnd    time.Time      `json:"planned_end"`
	Status        project.Status `json:"status"`
	ResponsibleID string         `json:"responsible_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

func toResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Location:      p.Location,
		InitialAmount: p.InitialAmount,
		PlannedStart:  p.PlannedStart,
		PlannedEnd:    p.PlannedEnd,
		Status:        p.Status,
		ResponsibleID: p.ResponsibleID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toResponseList(projects []*project.Project) []projectResponse {
	resp := make([]projectResponse, len(projects))
	for i, p := range projects {
		resp[i] = toResponse(p)
	}

	return resp
}

type historyResponse struct {
	ID            uuid.UUID      `json:"id"`
	ProjectID     uuid.UUID      `json:"project_id"`
	Status        project.Status `json:"status"`
	ActorID       string         `json:"actor_id"`
	Justification string         `json:"justification"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toHistoryResponseList(entries []*project.HistoryEntry) []historyResponse {
	resp := make([]historyResponse, len(entries))
	for i, e := range entries {
		resp[i] = historyResponse{
			ID:            e.ID,
			ProjectID:     e.ProjectID,
			Status:        e.Status,
			ActorID:       e.ActorID,
			Justification: e.Justification,
			CreatedAt:     e.CreatedAt,
		}
	}

	return resp
}
