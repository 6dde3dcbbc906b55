package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taldaor/internal/common"
	"taldaor/internal/models"
	"taldaor/internal/services"
)

// RequestHandlers handles maintenance request endpoints.
type RequestHandlers struct {
	requests    services.RequestService
	attachments services.AttachmentService
}

func NewRequestHandlers(requests services.RequestService, attachments services.AttachmentService) *RequestHandlers {
	return &RequestHandlers{requests: requests, attachments: attachments}
}

// CreateRequestPayload is the request-creation body.
type CreateRequestPayload struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// ListRequestsQuery holds the admin listing filters.
type ListRequestsQuery struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// UpdateStatusPayload is the admin status-update body.
type UpdateStatusPayload struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// Create handles POST /v1/requests (tenant files a request for themselves).
func (h *RequestHandlers) Create(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var payload CreateRequestPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if payload.Type == "" || payload.Title == "" || payload.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Type, title, and description are required")
	}

	request, err := h.requests.Create(c.Request().Context(), userID, &services.CreateRequestInput{
		Type:        models.RequestType(payload.Type),
		Title:       payload.Title,
		Description: payload.Description,
		Priority:    models.RequestPriority(payload.Priority),
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid type, priority, or missing fields")
		}
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, request)
}

// ListMine handles GET /v1/requests/mine.
func (h *RequestHandlers) ListMine(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var query ListRequestsQuery
	if err := c.Bind(&query); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	requests, err := h.requests.ListByTenant(c.Request().Context(), userID, query.Limit, query.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
	})
}

// List handles GET /v1/requests (admin; optional status filter).
func (h *RequestHandlers) List(c echo.Context) error {
	var query ListRequestsQuery
	if err := c.Bind(&query); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	var status *models.RequestStatus
	if query.Status != "" {
		s := models.RequestStatus(query.Status)
		status = &s
	}

	requests, err := h.requests.List(c.Request().Context(), status, query.Limit, query.Offset)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown status filter")
		}
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
	})
}

// Get handles GET /v1/requests/:id (admin or owning tenant).
func (h *RequestHandlers) Get(c echo.Context) error {
	request, err := h.loadAuthorized(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, request)
}

// UpdateStatus handles PUT /v1/requests/:id/status (admin only via route
// middleware).
func (h *RequestHandlers) UpdateStatus(c echo.Context) error {
	adminID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID format")
	}

	var payload UpdateStatusPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if payload.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Status is required")
	}

	request, err := h.requests.UpdateStatus(c.Request().Context(), requestID, adminID, &services.UpdateStatusInput{
		Status: models.RequestStatus(payload.Status),
		Notes:  payload.Notes,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown status")
		}
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Request not found")
		}
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

// ListLogs handles GET /v1/requests/:id/logs (admin only via route
// middleware).
func (h *RequestHandlers) ListLogs(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID format")
	}

	var query ListRequestsQuery
	if err := c.Bind(&query); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	logs, err := h.requests.ListLogs(c.Request().Context(), requestID, query.Limit, query.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs": logs,
	})
}

// UploadPhoto handles POST /v1/requests/:id/photos (admin or owning tenant).
func (h *RequestHandlers) UploadPhoto(c echo.Context) error {
	request, err := h.loadAuthorized(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A photo file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
	}
	defer file.Close()

	photo, err := h.attachments.Upload(
		c.Request().Context(),
		request.ID,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unsupported file type or size")
		}
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, photo)
}

// ListPhotos handles GET /v1/requests/:id/photos (admin or owning tenant).
func (h *RequestHandlers) ListPhotos(c echo.Context) error {
	request, err := h.loadAuthorized(c)
	if err != nil {
		return err
	}

	photos, err := h.attachments.List(c.Request().Context(), request.ID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"photos": photos,
	})
}

// loadAuthorized fetches the request from the :id param and enforces that the
// caller is an admin or the owning tenant. Non-owners get a 404, not a 403,
// so request ids cannot be probed.
func (h *RequestHandlers) loadAuthorized(c echo.Context) (*models.Request, error) {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID format")
	}

	request, err := h.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Request not found")
		}
		return nil, mapServiceError(c, err)
	}

	role, _ := common.GetRoleFromContext(ctx)
	if role != models.RoleAdmin && request.TenantID != userID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Request not found")
	}

	return request, nil
}
