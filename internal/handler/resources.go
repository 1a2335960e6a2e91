package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/asoflow/asoflow/internal/store"
	"github.com/asoflow/asoflow/pkg/entitlement"
	"github.com/asoflow/asoflow/pkg/objstore"
	"github.com/asoflow/asoflow/pkg/tenant"
)

// maxCertificateUpload bounds the multipart form; scanned ASOs are small.
const maxCertificateUpload = 10 << 20

type createEmployeeRequest struct {
	Name     string `json:"name"`
	CPF      string `json:"cpf"`
	JobTitle string `json:"job_title"`
}

// createEmployee registers an employee, gated on the employees cap.
func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r, entitlement.ResourceEmployees) {
		return
	}
	t := tenant.MustFromContext(r.Context())

	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == "" || req.CPF == "" {
		respondError(w, http.StatusBadRequest, "name and cpf are required")
		return
	}

	emp := &store.Employee{
		TenantID: t.ID,
		Name:     req.Name,
		CPF:      req.CPF,
		JobTitle: req.JobTitle,
	}
	if err := h.employees.Create(r.Context(), emp); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	h.usage.Invalidate(r.Context(), t.ID)
	respondJSON(w, http.StatusCreated, emp)
}

type createRHUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// createRHUser registers an HR dashboard account, gated on the rh_users cap.
func (h *Handler) createRHUser(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r, entitlement.ResourceRHUsers) {
		return
	}
	t := tenant.MustFromContext(r.Context())

	var req createRHUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	user := &store.RHUser{
		TenantID: t.ID,
		Name:     req.Name,
		Email:    req.Email,
	}
	if err := h.rhUsers.Create(r.Context(), user); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	h.usage.Invalidate(r.Context(), t.ID)
	respondJSON(w, http.StatusCreated, user)
}

// createCertificate stores an ASO, gated on the certificates cap. The
// request is multipart: metadata fields plus an optional "document" PDF
// that lands in object storage.
func (h *Handler) createCertificate(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r, entitlement.ResourceCertificates) {
		return
	}
	t := tenant.MustFromContext(r.Context())

	if err := r.ParseMultipartForm(maxCertificateUpload); err != nil {
		respondError(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	employeeID, err := uuid.Parse(r.FormValue("employee_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee_id")
		return
	}
	kind := r.FormValue("kind")
	if !validCertKind(kind) {
		respondError(w, http.StatusBadRequest, "invalid certificate kind")
		return
	}
	issuedAt, err := time.Parse("2006-01-02", r.FormValue("issued_at"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid issued_at, want YYYY-MM-DD")
		return
	}
	expiresAt, err := time.Parse("2006-01-02", r.FormValue("expires_at"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid expires_at, want YYYY-MM-DD")
		return
	}
	if !expiresAt.After(issuedAt) {
		respondError(w, http.StatusBadRequest, "expires_at must be after issued_at")
		return
	}
	result := r.FormValue("result")
	if result == "" {
		result = "apto"
	}

	// Reject a document upload with storage disabled before the insert, so
	// the rejection leaves no certificate row behind.
	file, header, fileErr := r.FormFile("document")
	if fileErr == nil {
		defer func() { _ = file.Close() }()
		if h.documents == nil {
			respondError(w, http.StatusBadRequest, "document uploads are not enabled")
			return
		}
	}

	cert := &store.Certificate{
		TenantID:   t.ID,
		EmployeeID: employeeID,
		Kind:       kind,
		Result:     result,
		IssuedAt:   issuedAt,
		ExpiresAt:  expiresAt,
	}
	if err := h.certificates.Create(r.Context(), cert); err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	h.usage.Invalidate(r.Context(), t.ID)

	if fileErr == nil {
		key := objstore.CertificateKey(t.ID, cert.ID)
		obj, uploadErr := h.documents.Put(r.Context(), key, file, header.Size, "application/pdf")
		if uploadErr != nil {
			h.respondStoreError(w, r, uploadErr)
			return
		}
		if err := h.certificates.AttachDocument(r.Context(), t.ID, cert.ID, obj.Key); err != nil {
			h.respondStoreError(w, r, err)
			return
		}
		cert.DocumentKey = obj.Key
	}

	respondJSON(w, http.StatusCreated, cert)
}

func validCertKind(kind string) bool {
	switch kind {
	case store.CertKindAdmissional, store.CertKindPeriodico, store.CertKindRetorno,
		store.CertKindMudancaFuncao, store.CertKindDemissional:
		return true
	}
	return false
}
