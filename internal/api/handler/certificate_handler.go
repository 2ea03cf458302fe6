package handler

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

type CertificateHandler struct {
	certificates ports.CertificateService
}

func NewCertificateHandler(certificates ports.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// List returns the courses the student holds a certificate for.
//
// @Summary      Certificates
// @Tags         certificates
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse[domain.CertificateCourse]
// @Router       /v1/certificates [get]
func (h *CertificateHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	courses, err := h.certificates.List(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[domain.CertificateCourse]{Data: courses})
}

// Download renders the certificate of a completed course as a PDF attachment.
//
// @Summary      Download a certificate
// @Tags         certificates
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        courseId  path  int  true  "Course ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/certificates/{courseId}/pdf [get]
func (h *CertificateHandler) Download(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	courseID, err := intParam(c, "courseId")
	if err != nil {
		return err
	}

	file, err := h.certificates.Download(c.Request().Context(), user, courseID)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	return c.Blob(http.StatusOK, "application/pdf", file.Content)
}
