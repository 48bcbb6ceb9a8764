package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"clinicore/models"
	"clinicore/services/onboarding"
	"clinicore/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OnboardingHandler exposes the onboarding wizard over HTTP.
type OnboardingHandler struct {
	Service onboarding.OnboardingService
}

func NewOnboardingHandler(svc onboarding.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{Service: svc}
}

// CreateSessionHandler starts a new wizard session for a device.
func (h *OnboardingHandler) CreateSessionHandler(c *gin.Context) {
	var req struct {
		DeviceID string `json:"deviceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.CreateSession(c.Request.Context(), req.DeviceID)
	if err != nil {
		getLogger(c).Error("failed to create onboarding session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// MountHandler returns everything a step needs to render: committed answers,
// the cursor, and the draft-derived read-only fields.
func (h *OnboardingHandler) MountHandler(c *gin.Context) {
	view, err := h.Service.Mount(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// stepFiles collects the uploaded parts of a multipart submission along with
// any client-sent last-modified timestamps ("<field>LastModified").
func stepFiles(c *gin.Context, fields ...string) onboarding.StepFiles {
	files := onboarding.StepFiles{
		Headers:      make(map[string]*multipart.FileHeader),
		LastModified: make(map[string]int64),
	}
	for _, field := range fields {
		header, err := c.FormFile(field)
		if err != nil {
			continue
		}
		files.Headers[field] = header
		if raw := c.PostForm(field + "LastModified"); raw != "" {
			if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
				files.LastModified[field] = ms
			}
		}
	}
	return files
}

// PersonalInfoHandler handles the first step's multipart submission.
func (h *OnboardingHandler) PersonalInfoHandler(c *gin.Context) {
	req := models.PersonalInfoRequest{
		FullName:      c.PostForm("fullName"),
		Email:         c.PostForm("email"),
		Phone:         c.PostForm("phone"),
		Designation:   c.PostForm("designation"),
		DateOfBirth:   c.PostForm("dateOfBirth"),
		VerifiedToken: c.PostForm("verifiedToken"),
	}
	files := stepFiles(c, "profilePhoto")

	result, fieldErrs, err := h.Service.SubmitPersonalInfo(c.Request.Context(), c.Param("sessionID"), req, files)
	h.writeStepResult(c, result, fieldErrs, err)
}

// ClinicInfoHandler handles the second step's JSON submission.
func (h *OnboardingHandler) ClinicInfoHandler(c *gin.Context) {
	var req models.ClinicInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, fieldErrs, err := h.Service.SubmitClinicInfo(c.Request.Context(), c.Param("sessionID"), req)
	h.writeStepResult(c, result, fieldErrs, err)
}

// DocumentsHandler handles the third step's multipart submission.
func (h *OnboardingHandler) DocumentsHandler(c *gin.Context) {
	req := models.DocumentsRequest{
		Departments:       c.PostForm("departments"),
		DoctorsCount:      c.PostForm("doctorsCount"),
		CommunicationMode: c.PostForm("communicationMode"),
	}
	files := stepFiles(c, "governmentId", "registrationCertificate", "accreditation")

	result, fieldErrs, err := h.Service.SubmitDocuments(c.Request.Context(), c.Param("sessionID"), req, files)
	h.writeStepResult(c, result, fieldErrs, err)
}

// BackHandler rewinds the wizard by one step.
func (h *OnboardingHandler) BackHandler(c *gin.Context) {
	result, err := h.Service.Back(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		if errors.Is(err, onboarding.ErrStepOrder) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already at the first step"})
			return
		}
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResetHandler abandons the session and clears its staged files.
func (h *OnboardingHandler) ResetHandler(c *gin.Context) {
	if err := h.Service.Reset(c.Request.Context(), c.Param("sessionID")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Onboarding session reset"})
}

// SubmitHandler performs the terminal submission.
func (h *OnboardingHandler) SubmitHandler(c *gin.Context) {
	result, fieldErrs, err := h.Service.Finalize(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if fieldErrs.HasErrors() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fieldErrs})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OnboardingHandler) writeStepResult(c *gin.Context, result *models.StepResult, fieldErrs onboarding.FieldErrors, err error) {
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if fieldErrs.HasErrors() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fieldErrs})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OnboardingHandler) writeServiceError(c *gin.Context, err error) {
	if errors.Is(err, onboarding.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Onboarding session not found or expired"})
		return
	}
	getLogger(c).Error("onboarding request failed", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "Something went wrong", "Please try again.")
}
