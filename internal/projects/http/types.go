package http

import (
	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
}

func New(svc *service.ProjectService) *Handler {
	return &Handler{svc: svc}
}

type projectsData struct {
	Projects []domain.Project `json:"projects"`
}

// replaceReq is the object form of the bulk replace body. The bare array
// form is accepted too.
type replaceReq struct {
	Projects *[]domain.Project `json:"projects"`
}

const (
	msgLoadFailed    = "Failed to load projects"
	msgReplaced      = "Projects updated successfully"
	msgTitleRequired = "Title is required"
	msgNotFound      = "Project not found"
	msgBadBody       = "Invalid request body"
	msgNotArray      = "Projects must be an array"
	msgInvalid       = "Invalid project data"
	msgInternal      = "Internal server error"
)
