package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/apperrors"
)

// publicSettingsHandler serves the read-only widget configuration. Two
// consecutive reads for an unmodified shop return identical payloads,
// so the response is cacheable for a short interval.
func (s *Server) publicSettingsHandler(w http.ResponseWriter, r *http.Request) {
	shop := mux.Vars(r)["shop"]
	if shop == "" {
		s.respondPublicSettingsError(w, http.StatusBadRequest, "Shop parameter is required")
		return
	}

	settings, err := s.settings.GetPublicSettings(r.Context(), shop)
	if err != nil {
		s.respondPublicSettingsError(w, apperrors.StatusCode(err), "Failed to load settings")
		return
	}

	payload, err := json.Marshal(settings)
	if err != nil {
		s.logger.Error("Failed to marshal public settings", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// missingShopSettingsHandler answers settings requests with no shop in
// the path.
func (s *Server) missingShopSettingsHandler(w http.ResponseWriter, r *http.Request) {
	s.respondPublicSettingsError(w, http.StatusBadRequest, "Shop parameter is required")
}

func (s *Server) respondPublicSettingsError(w http.ResponseWriter, code int, message string) {
	payload, _ := json.Marshal(map[string]string{"error": message})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(payload)
}

// getSettingsHandler returns the full store record for the dashboard.
func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	shop := mux.Vars(r)["shop"]

	store, err := s.settings.GetSettings(r.Context(), shop)
	if err != nil {
		s.respondWithError(w, apperrors.StatusCode(err), err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    store,
	})
}

// updateSettingsHandler applies a partial settings change.
func (s *Server) updateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	shop := mux.Vars(r)["shop"]

	var update models.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer r.Body.Close()

	store, err := s.settings.UpdateSettings(r.Context(), shop, &update)
	if err != nil {
		s.respondWithError(w, apperrors.StatusCode(err), err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    store,
	})
}
