package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"assetwatch/internal/domain"
	"assetwatch/internal/repository"
	"assetwatch/internal/scanner"
	"assetwatch/internal/service"
)

// Handler handles asset API requests
type Handler struct {
	assets  *service.AssetService
	scans   *service.ScanService
	overdue *service.OverdueService
	repo    repository.Repository
}

// New creates a new API handler
func New(assets *service.AssetService, scans *service.ScanService, overdue *service.OverdueService, repo repository.Repository) *Handler {
	return &Handler{assets: assets, scans: scans, overdue: overdue, repo: repo}
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ListAssets returns all assets, optionally filtered by status
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	status := domain.Status(r.URL.Query().Get("status"))

	assets, err := h.assets.ListAssets(r.Context(), status)
	if err != nil {
		h.writeError(w, "Failed to list assets", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, assets, http.StatusOK)
}

// GetAsset returns a single asset
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	asset, err := h.assets.GetAsset(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to get asset: %v", err)
		h.writeError(w, "Failed to get asset", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, asset, http.StatusOK)
}

// CreateAsset registers a new asset
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var asset domain.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.assets.CreateAsset(r.Context(), &asset); err != nil {
		log.Printf("Failed to create asset: %v", err)
		h.writeError(w, "Failed to create asset", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, asset, http.StatusCreated)
}

// UpdateAsset rewrites an asset's descriptive fields
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var asset domain.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	asset.ID = id // Ensure ID matches path

	if err := h.assets.UpdateAsset(r.Context(), &asset); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to update asset: %v", err)
		h.writeError(w, "Failed to update asset", err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.assets.GetAsset(r.Context(), id)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, updated, http.StatusOK)
}

// StatusRequest is the body of a manual status change
type StatusRequest struct {
	Status   domain.Status `json:"status"`
	Location string        `json:"location,omitempty"`
}

// SetAssetStatus applies a manual status change
func (h *Handler) SetAssetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		h.writeError(w, "Invalid status", string(req.Status), http.StatusBadRequest)
		return
	}

	if err := h.assets.SetStatus(r.Context(), id, req.Status, req.Location); err != nil {
		h.writeError(w, "Failed to change status", err.Error(), http.StatusBadRequest)
		return
	}

	asset, err := h.assets.GetAsset(r.Context(), id)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, asset, http.StatusOK)
}

// IssueRequest is the body of an asset checkout
type IssueRequest struct {
	AssignedTo int64      `json:"assigned_to"`
	AssignedBy int64      `json:"assigned_by"`
	Purpose    string     `json:"purpose,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

// IssueAsset checks an asset out to a custodian
func (h *Handler) IssueAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.AssignedTo == 0 || req.AssignedBy == 0 {
		h.writeError(w, "Custodians required", "assigned_to and assigned_by are required", http.StatusBadRequest)
		return
	}

	assignment, err := h.assets.Issue(r.Context(), id, req.AssignedTo, req.AssignedBy, req.Purpose, req.DueAt)
	if err != nil {
		log.Printf("Failed to issue asset: %v", err)
		h.writeError(w, "Failed to issue asset", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, assignment, http.StatusCreated)
}

// ReturnRequest is the body of an asset return
type ReturnRequest struct {
	Condition domain.Condition `json:"condition,omitempty"`
}

// ReturnAsset closes an asset's open assignment
func (h *Handler) ReturnAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.assets.Return(r.Context(), id, req.Condition); err != nil {
		log.Printf("Failed to return asset: %v", err)
		h.writeError(w, "Failed to return asset", err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAssignments returns assignments, optionally only open ones
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("open") == "true"

	assignments, err := h.repo.ListAssignments(r.Context(), openOnly)
	if err != nil {
		log.Printf("Failed to list assignments: %v", err)
		h.writeError(w, "Failed to list assignments", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, assignments, http.StatusOK)
}

// ListCustodians returns all custodians
func (h *Handler) ListCustodians(w http.ResponseWriter, r *http.Request) {
	custodians, err := h.repo.ListCustodians(r.Context())
	if err != nil {
		log.Printf("Failed to list custodians: %v", err)
		h.writeError(w, "Failed to list custodians", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, custodians, http.StatusOK)
}

// CreateCustodian registers a new custodian
func (h *Handler) CreateCustodian(w http.ResponseWriter, r *http.Request) {
	var c domain.Custodian
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if c.Name == "" {
		h.writeError(w, "Name required", "custodian name is required", http.StatusBadRequest)
		return
	}

	if err := h.repo.CreateCustodian(r.Context(), &c); err != nil {
		log.Printf("Failed to create custodian: %v", err)
		h.writeError(w, "Failed to create custodian", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, c, http.StatusCreated)
}

// ListNotifications returns a custodian's notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.repo.ListNotifications(r.Context(), id, unreadOnly)
	if err != nil {
		log.Printf("Failed to list notifications: %v", err)
		h.writeError(w, "Failed to list notifications", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, notifications, http.StatusOK)
}

// MarkNotificationRead flips a notification's read flag
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.MarkNotificationRead(r.Context(), id); err != nil {
		log.Printf("Failed to mark notification read: %v", err)
		h.writeError(w, "Failed to mark notification read", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAudit returns the most recent audit entries
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.repo.ListAudit(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to list audit entries: %v", err)
		h.writeError(w, "Failed to list audit entries", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, entries, http.StatusOK)
}

// ScanRequest represents a subnet scan request
type ScanRequest struct {
	Subnet string `json:"subnet"`
}

// Scan probes a subnet and reconciles the results
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Subnet == "" {
		h.writeError(w, "Subnet required", "Please provide a CIDR block to scan (e.g., 192.168.1.0/24)", http.StatusBadRequest)
		return
	}

	report, err := h.scans.Scan(r.Context(), req.Subnet)
	if err != nil {
		if errors.Is(err, scanner.ErrInvalidSubnet) {
			h.writeError(w, "Invalid subnet", req.Subnet, http.StatusBadRequest)
			return
		}
		log.Printf("Scan of %s failed: %v", req.Subnet, err)
		h.writeError(w, "Scan failed", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, report, http.StatusOK)
}

// OverdueCheck runs the overdue-assignment pass on demand
func (h *Handler) OverdueCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.overdue.Run(r.Context())
	if err != nil {
		log.Printf("Overdue check failed: %v", err)
		h.writeError(w, "Overdue check failed", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, report, http.StatusOK)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Helper methods

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, "Invalid ID", "a numeric ID is required", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
