package handlers

import (
	"net/http"

	"clinicore/services/onboarding"
	"clinicore/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerifyHandler exposes the phone-verification sub-flow.
type VerifyHandler struct {
	Service onboarding.OnboardingService
}

func NewVerifyHandler(svc onboarding.OnboardingService) *VerifyHandler {
	return &VerifyHandler{Service: svc}
}

// CheckPhoneHandler runs the uniqueness check and, when the number is free,
// kicks off OTP delivery and returns the external verification redirect.
func (h *VerifyHandler) CheckPhoneHandler(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phoneNumber" binding:"required"`
		SessionID   string `json:"sessionId" binding:"required"`
		ReturnURL   string `json:"returnUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.CheckPhone(c.Request.Context(), req.SessionID, req.PhoneNumber, req.ReturnURL)
	if err != nil {
		getLogger(c).Error("phone check failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Unable to verify phone number right now", "Please try again.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// VerifyOTPHandler confirms the code and returns the signed token the return
// redirect carries as its verified flag.
func (h *VerifyHandler) VerifyOTPHandler(c *gin.Context) {
	var req struct {
		Phone     string `json:"phone" binding:"required"`
		OTP       string `json:"otp" binding:"required"`
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.Service.ConfirmOTP(c.Request.Context(), req.SessionID, req.Phone, req.OTP)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Phone verified successfully", "token": token})
}
