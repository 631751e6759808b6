package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sunbridge-backend/lib/platforms/highlevel"
	"sunbridge-backend/lib/platforms/highlevel/session"
	"sunbridge-backend/lib/platforms/n8n"
	"sunbridge-backend/lib/timezone"
	"sunbridge-backend/services/provisioning"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) listContacts(c *gin.Context) {
	contacts, err := s.crm.GetContacts(c.Request.Context(), c.Query("locationId"))
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (s *Server) createContact(c *gin.Context) {
	var req highlevel.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	contact, err := s.crm.CreateContact(c.Request.Context(), req)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (s *Server) createAppointment(c *gin.Context) {
	var req highlevel.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	appointment, err := s.crm.CreateAppointment(c.Request.Context(), req)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

func (s *Server) provision(c *gin.Context) {
	var req provisioning.ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	result, err := s.provisioning.Provision(c.Request.Context(), req)
	if errors.Is(err, provisioning.ErrAlreadyProvisioned) ||
		errors.Is(err, provisioning.ErrDuplicateUser) {
		fail(c, http.StatusConflict, err)
		return
	}
	if err != nil {
		// a partial failure still reports what was created
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     err.Error(),
			"result":    result,
			"requestId": c.GetString("request_id"),
		})
		return
	}
	c.JSON(http.StatusCreated, result)
}

type analyzeCompanyRequest struct {
	Url string `json:"url"`
}

func (s *Server) analyzeCompany(c *gin.Context) {
	var req analyzeCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	profile, err := s.analyzer.AnalyzeCompany(c.Request.Context(), req.Url)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type analyzeSolarRequest struct {
	Address string `json:"address"`
}

func (s *Server) analyzeSolar(c *gin.Context) {
	var req analyzeSolarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	report, err := s.analyzer.AnalyzeSolar(c.Request.Context(), req.Address)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type keychainStatusEntry struct {
	Namespace   string `json:"namespace"`
	Id          string `json:"id"`
	Refreshable bool   `json:"refreshable"`
	ExpiresAt   string `json:"expiresAt"`
	Expired     bool   `json:"expired"`
}

// keychainStatus reports expiry per stored key. Token values are never
// returned.
func (s *Server) keychainStatus(c *gin.Context) {
	rows, err := s.keychain.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	entries := []keychainStatusEntry{}
	now := time.Now()
	for _, row := range rows {
		expiresAt := time.Unix(row.ExpiresAt, 0)
		entries = append(entries, keychainStatusEntry{
			Namespace:   row.Namespace,
			Id:          row.ID,
			Refreshable: row.RefreshToken != "",
			ExpiresAt:   expiresAt.Format(time.RFC3339),
			Expired:     expiresAt.Before(now),
		})
	}
	c.JSON(http.StatusOK, gin.H{"keys": entries})
}

type captureSessionRequest struct {
	Namespace string `json:"namespace"`
	Id        string `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	// Otp is the emailed security code, supplied up front since this
	// endpoint cannot prompt interactively.
	Otp string `json:"otp"`
}

func (s *Server) captureSession(c *gin.Context) {
	var req captureSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if req.Namespace == "" || req.Id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "namespace and id are required"})
		return
	}

	var otp session.OTPProvider
	if req.Otp != "" {
		otp = session.StaticOTP(req.Otp)
	}
	login, err := session.NewClient(session.ClientOptions{
		BaseUrl: s.loginUrl,
		OTP:     otp,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	bundle, err := s.keychain.CaptureSession(
		c.Request.Context(), req.Namespace, req.Id, login, req.Email, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) ||
		errors.Is(err, session.ErrOTPRejected) ||
		errors.Is(err, session.ErrNoOTPProvider) {
		fail(c, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"namespace": req.Namespace,
		"id":        req.Id,
		"expiresAt": bundle.ExpiresAt.Format(time.RFC3339),
	})
}

type workflowResponseRow struct {
	Status     string          `json:"status"`
	Response   json.RawMessage `json:"response"`
	RequestId  string          `json:"request_id"`
	ReceivedAt string          `json:"received_at"`
}

// workflowResponse receives the workflow engine's asynchronous replies
// and records them for later inspection.
func (s *Server) workflowResponse(c *gin.Context) {
	var result n8n.Result
	if err := c.ShouldBindJSON(&result); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	slog.InfoContext(c.Request.Context(), "workflow response",
		"status", result.Status,
		"request_id", c.GetString("request_id"),
	)

	if s.supa != nil {
		err := s.supa.From("n8n_responses").Insert([]workflowResponseRow{{
			Status:     result.Status,
			Response:   result.Response,
			RequestId:  c.GetString("request_id"),
			ReceivedAt: timezone.Now().Format(time.RFC3339),
		}}).Execute(c.Request.Context(), nil)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "failed to record workflow response", "err", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
