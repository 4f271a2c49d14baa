package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/koji-portfolio/portfolio-backend/internal/api/http/response"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("list projects")
		response.Fail(c, http.StatusInternalServerError, msgLoadFailed, err)
		return
	}
	response.OK(c, http.StatusOK, projectsData{Projects: items}, "")
}

func (h *Handler) replace(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, msgBadBody, err)
		return
	}

	projects, err := decodeProjectList(body)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, msgNotArray, err)
		return
	}
	stored, err := h.svc.Replace(c.Request.Context(), projects)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, projectsData{Projects: stored}, msgReplaced)
}

func (h *Handler) create(c *gin.Context) {
	var p domain.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		response.Fail(c, http.StatusBadRequest, msgBadBody, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, created, "")
}

func (h *Handler) update(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, msgNotFound, nil)
		return
	}

	var patch domain.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		response.Fail(c, http.StatusBadRequest, msgBadBody, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, updated, "")
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, msgNotFound, nil)
		return
	}

	deleted, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, deleted, "")
}

// fail maps a service error onto the envelope. Unclassified and storage
// errors are logged and surfaced as an opaque 500.
func (h *Handler) fail(c *gin.Context, err error) {
	status := domain.StatusFor(err)
	switch status {
	case http.StatusNotFound:
		response.Fail(c, status, msgNotFound, err)
	case http.StatusBadRequest:
		msg := msgInvalid
		if errors.Is(err, domain.ErrTitleRequired) {
			msg = msgTitleRequired
		}
		response.Fail(c, status, msg, err)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("project request failed")
		response.Fail(c, status, msgInternal, err)
	}
}

// projectID parses the :id path parameter. Anything that is not a positive
// integer cannot name a stored project.
func projectID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeProjectList accepts either a bare JSON array or {"projects": [...]}.
func decodeProjectList(body []byte) ([]domain.Project, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}

	switch trimmed[0] {
	case '[':
		var projects []domain.Project
		if err := json.Unmarshal(trimmed, &projects); err != nil {
			return nil, err
		}
		return projects, nil
	case '{':
		var req replaceReq
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return nil, err
		}
		if req.Projects == nil {
			return nil, errors.New("projects field is missing or not an array")
		}
		return *req.Projects, nil
	default:
		return nil, errors.New("body is not an array")
	}
}
