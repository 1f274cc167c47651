package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/warband-face/internal/platform/errors"
	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"github.com/louisbranch/warband-face/internal/services/editor/morph"
	"github.com/louisbranch/warband-face/internal/services/editor/storage"
	"go.uber.org/zap"
)

const (
	maxRequestBodyBytes = 16 * 1024

	defaultPageSize = 50
	maxPageSize     = 200
)

// Error kinds that only the HTTP surface produces.
const (
	kindInvalidRequest  = "INVALID_REQUEST"
	kindUnauthenticated = "UNAUTHENTICATED"
	kindUnavailable     = "UNAVAILABLE"
	kindInternal        = "INTERNAL"
)

type apiErrorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type decodeRequest struct {
	HexCode string `json:"hex_code"`
}

type decodeResponse struct {
	Parameters   facecode.Parameters          `json:"parameters"`
	FaceCode     facecode.Code                `json:"face_code"`
	Layout       string                       `json:"layout"`
	MorphWeights [facecode.MorphCount]float64 `json:"morph_weights"`
	MorphTargets [facecode.MorphCount]string  `json:"morph_targets"`
}

type encodeRequest struct {
	Parameters facecode.Parameters `json:"parameters"`
}

type encodeResponse struct {
	FaceCode facecode.Code `json:"face_code"`
}

type validateResponse struct {
	Valid    bool   `json:"valid"`
	FaceCode string `json:"face_code"`
	Message  string `json:"message"`
}

type layoutResponse struct {
	Version   string        `json:"version"`
	TotalBits int           `json:"total_bits"`
	Fields    []layoutField `json:"fields"`
}

type layoutField struct {
	Name    string `json:"name"`
	Offset  uint8  `json:"offset"`
	Width   uint8  `json:"width"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Default int    `json:"default"`
}

type putCharacterRequest struct {
	FaceCode string `json:"face_code"`
}

type characterResponse struct {
	Name       string              `json:"name"`
	FaceCode   facecode.Code       `json:"face_code"`
	Layout     string              `json:"layout"`
	Parameters facecode.Parameters `json:"parameters,omitempty"`
	CreatedAt  string              `json:"created_at"`
	UpdatedAt  string              `json:"updated_at"`
}

type characterPageResponse struct {
	Characters    []characterResponse `json:"characters"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

func (h *handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if !readJSON(w, r, &req) {
		return
	}
	code, params, err := h.codec.DecodeString(req.HexCode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	weights, err := morph.Weights(h.codec.Layout(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decodeResponse{
		Parameters:   params,
		FaceCode:     code,
		Layout:       h.codec.Layout().Version(),
		MorphWeights: weights,
		MorphTargets: morph.TargetNames,
	})
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Parameters == nil {
		writeAPIError(w, http.StatusBadRequest, kindInvalidRequest, "", "parameters are required")
		return
	}
	code, err := h.codec.Encode(req.Parameters)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResponse{FaceCode: code})
}

// handleValidate always answers 200; validity is in the body.
func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("code")
	code, _, err := h.codec.DecodeString(raw)
	if err != nil {
		writeJSON(w, http.StatusOK, validateResponse{
			Valid:    false,
			FaceCode: raw,
			Message:  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:    true,
		FaceCode: code.String(),
		Message:  "face code is valid",
	})
}

func (h *handler) handleLayout(w http.ResponseWriter, _ *http.Request) {
	layout := h.codec.Layout()
	resp := layoutResponse{
		Version:   layout.Version(),
		TotalBits: layout.TotalBits(),
	}
	for _, f := range layout.Fields() {
		resp.Fields = append(resp.Fields, layoutField{
			Name:    f.Name,
			Offset:  f.Offset,
			Width:   f.Width,
			Min:     f.Min,
			Max:     f.Max,
			Default: f.Default,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	if !h.facesConfigured(w) {
		return
	}
	pageSize := defaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeAPIError(w, http.StatusBadRequest, kindInvalidRequest, "page_size", "page_size must be a positive integer")
			return
		}
		pageSize = min(parsed, maxPageSize)
	}
	page, err := h.faces.ListFaces(r.Context(), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		h.writeStorageError(w, "list characters", err)
		return
	}
	resp := characterPageResponse{
		Characters:    make([]characterResponse, 0, len(page.Faces)),
		NextPageToken: page.NextPageToken,
	}
	for _, face := range page.Faces {
		resp.Characters = append(resp.Characters, h.characterResponse(face))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	if !h.facesConfigured(w) {
		return
	}
	name, ok := characterName(w, r)
	if !ok {
		return
	}
	face, err := h.faces.GetFace(r.Context(), name)
	if err != nil {
		h.writeStorageError(w, "get character", err)
		return
	}
	writeJSON(w, http.StatusOK, h.characterResponse(face))
}

func (h *handler) handlePutCharacter(w http.ResponseWriter, r *http.Request) {
	if !h.facesConfigured(w) {
		return
	}
	name, ok := characterName(w, r)
	if !ok {
		return
	}
	var req putCharacterRequest
	if !readJSON(w, r, &req) {
		return
	}
	code, _, err := h.codec.DecodeString(req.FaceCode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	face, err := h.faces.PutFace(r.Context(), name, code, h.codec.Layout().Version())
	if err != nil {
		h.writeStorageError(w, "put character", err)
		return
	}
	h.logger.Info("character face saved",
		zap.String("name", face.Name),
		zap.Stringer("code", face.Code),
		zap.String("subject", subjectFromContext(r.Context())),
	)
	writeJSON(w, http.StatusOK, h.characterResponse(face))
}

func (h *handler) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if !h.facesConfigured(w) {
		return
	}
	name, ok := characterName(w, r)
	if !ok {
		return
	}
	if err := h.faces.DeleteFace(r.Context(), name); err != nil {
		h.writeStorageError(w, "delete character", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// characterName reads the {name} path segment, answering 400 when it is not a
// storable name.
func characterName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name, err := storage.NormalizeName(r.PathValue("name"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, kindInvalidRequest, "name", err.Error())
		return "", false
	}
	return name, true
}

func (h *handler) facesConfigured(w http.ResponseWriter) bool {
	if h.faces == nil {
		writeAPIError(w, http.StatusServiceUnavailable, kindUnavailable, "", "character storage is not configured")
		return false
	}
	return true
}

// characterResponse decodes the stored code under the current layout; a
// record that no longer decodes is still returned, without parameters.
func (h *handler) characterResponse(face storage.SavedFace) characterResponse {
	resp := characterResponse{
		Name:      face.Name,
		FaceCode:  face.Code,
		Layout:    face.Layout,
		CreatedAt: face.CreatedAt.Format(time.RFC3339),
		UpdatedAt: face.UpdatedAt.Format(time.RFC3339),
	}
	if params, err := h.codec.Decode(face.Code); err == nil {
		resp.Parameters = params
	}
	return resp
}

func (h *handler) writeStorageError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeAPIError(w, http.StatusNotFound, string(apperrors.CodeNotFound), "", "character not found")
		return
	case errors.Is(err, storage.ErrInvalidName):
		writeAPIError(w, http.StatusBadRequest, kindInvalidRequest, "name", err.Error())
		return
	}
	h.logger.Error(op, zap.Error(err))
	writeAPIError(w, http.StatusInternalServerError, kindInternal, "", "storage failure")
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		message := "request body must be a JSON object"
		if errors.Is(err, io.EOF) {
			message = "request body is required"
		}
		writeAPIError(w, http.StatusBadRequest, kindInvalidRequest, "", message)
		return false
	}
	return true
}

// writeDomainError maps rejected requests onto 400 and anything else onto 500.
func writeDomainError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := http.StatusBadRequest
	if !code.Recoverable() {
		status = http.StatusInternalServerError
	}
	writeAPIError(w, status, string(code), apperrors.FieldOf(err), err.Error())
}

func writeAPIError(w http.ResponseWriter, status int, kind string, field string, message string) {
	writeJSON(w, status, apiErrorEnvelope{Error: apiError{
		Kind:    kind,
		Field:   field,
		Message: message,
	}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
