package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

const maxPictureBytes = 5 << 20

var pictureExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

// CatalogHandler fronts the backend resources: courses, applications,
// the student profile and notifications.
type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCourses returns one page of the public catalog.
//
// @Summary      Course catalog
// @Tags         courses
// @Produce      json
// @Param        category   query     string  false  "Category"
// @Param        level      query     string  false  "Level"
// @Param        search     query     string  false  "Free text search"
// @Param        featured   query     bool    false  "Featured only"
// @Param        page       query     int     false  "Page"
// @Param        page_size  query     int     false  "Page size (1-100)"
// @Success      200        {object}  domain.CoursePage
// @Failure      422        {object}  errorResponse
// @Failure      502        {object}  errorResponse
// @Router       /v1/courses [get]
func (h *CatalogHandler) ListCourses(c echo.Context) error {
	var req coursesQuery
	if err := bindValid(c, &req); err != nil {
		return err
	}

	q := domain.CourseQuery{
		Category: req.Category,
		Level:    req.Level,
		Search:   strings.TrimSpace(req.Search),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Featured != "" {
		featured := req.Featured == "true"
		q.Featured = &featured
	}

	page, err := h.catalog.ListCourses(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetCourse returns the backend's course detail document unchanged.
//
// @Summary      Course detail
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Course ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  errorResponse
// @Router       /v1/courses/{id} [get]
func (h *CatalogHandler) GetCourse(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}

	raw, err := h.catalog.GetCourse(c.Request().Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// ListApplications lists the student's own applications, or the applications
// to an instructor's courses.
//
// @Summary      Course applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse[domain.CourseApplication]
// @Router       /v1/applications [get]
func (h *CatalogHandler) ListApplications(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	apps, err := h.catalog.ListApplications(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[domain.CourseApplication]{Data: apps})
}

// Apply submits an application to a course.
//
// @Summary      Apply to a course
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      applyRequest  true  "Application"
// @Success      201   {object}  domain.CourseApplication
// @Failure      422   {object}  errorResponse
// @Router       /v1/applications [post]
func (h *CatalogHandler) Apply(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req applyRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	app, err := h.catalog.Apply(c.Request().Context(), user, req.CourseID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, app)
}

// CancelApplication withdraws one of the student's applications.
//
// @Summary      Cancel an application
// @Tags         applications
// @Security     BearerAuth
// @Param        id  path  string  true  "Application ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/applications/{id} [delete]
func (h *CatalogHandler) CancelApplication(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.catalog.CancelApplication(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ReviewApplication approves or rejects an application.
//
// @Summary      Review an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Application ID"
// @Param        body  body      reviewRequest  true  "Decision"
// @Success      200   {object}  domain.CourseApplication
// @Failure      422   {object}  errorResponse
// @Router       /v1/applications/{id} [put]
func (h *CatalogHandler) ReviewApplication(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	app, err := h.catalog.ReviewApplication(c.Request().Context(), user, c.Param("id"), domain.ApplicationStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

// GetProfile returns the student profile.
//
// @Summary      Student profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.StudentProfile
// @Router       /v1/profile [get]
func (h *CatalogHandler) GetProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	profile, err := h.catalog.GetProfile(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile replaces the editable profile fields.
//
// @Summary      Update the student profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileRequest  true  "Profile"
// @Success      200   {object}  domain.StudentProfile
// @Failure      422   {object}  errorResponse
// @Router       /v1/profile [put]
func (h *CatalogHandler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	skills := req.Skills
	if skills == nil {
		skills = []string{}
	}
	profile, err := h.catalog.UpdateProfile(c.Request().Context(), user, domain.StudentProfile{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Location:    req.Location,
		Bio:         req.Bio,
		Skills:      skills,
		WebsiteURL:  req.WebsiteURL,
		GithubURL:   req.GithubURL,
		LinkedinURL: req.LinkedinURL,
		TwitterURL:  req.TwitterURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UploadProfilePicture forwards a multipart image upload.
//
// @Summary      Upload a profile picture
// @Tags         profile
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        profile_picture  formData  file  true  "Image (jpg, png, gif, webp; max 5 MB)"
// @Success      200              {object}  domain.StudentProfile
// @Failure      400              {object}  errorResponse
// @Router       /v1/profile/picture [post]
func (h *CatalogHandler) UploadProfilePicture(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("profile_picture")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "profile_picture is required")
	}
	if fh.Size > maxPictureBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "profile_picture must be at most 5 MB")
	}
	if _, ok := pictureExtensions[strings.ToLower(filepath.Ext(fh.Filename))]; !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "profile_picture must be an image")
	}

	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer file.Close()

	profile, err := h.catalog.UploadProfilePicture(c.Request().Context(), user, filepath.Base(fh.Filename), file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// ListNotifications returns the backend notification feed.
//
// @Summary      Notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse[domain.Notification]
// @Router       /v1/notifications [get]
func (h *CatalogHandler) ListNotifications(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	items, err := h.catalog.ListNotifications(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[domain.Notification]{Data: items})
}

// ReplyNotification answers a course comment as an instructor.
//
// @Summary      Reply to a notification
// @Tags         notifications
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  replyRequest  true  "Reply"
// @Success      204
// @Failure      422   {object}  errorResponse
// @Router       /v1/notifications/reply [post]
func (h *CatalogHandler) ReplyNotification(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req replyRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	err = h.catalog.ReplyNotification(c.Request().Context(), user, domain.NotificationReply{
		RelatedItemID: req.RelatedItemID,
		CourseID:      req.CourseID,
		Message:       req.Message,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
