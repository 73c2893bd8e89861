package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-admingen/pkg/admin"
	"github.com/goliatone/go-admingen/pkg/crud"
	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/model"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// MessageUnknownField is reported for payload keys the entity does not have.
const MessageUnknownField = "Champ inconnu"

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	entity, err := s.admin.Entity(chi.URLParam(r, "entity"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	query := crud.ParseListQuery(r.URL.Query()).Normalize(entity.Config.UI.PageSize)
	result, err := entity.Controller.List(r.Context(), query)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAPIConfig(w http.ResponseWriter, r *http.Request) {
	entity, err := s.admin.Entity(chi.URLParam(r, "entity"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, entity.Config)
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	entity, err := s.admin.Entity(chi.URLParam(r, "entity"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	record, err := entity.Controller.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "entity")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Create })
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.apiSave(w, r, entity, nil, "", http.StatusCreated, false)
}

// handleAPIReplace validates the body on its own. Stored fields it omits are
// unset.
func (s *Server) handleAPIReplace(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Update })
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	record, err := entity.Controller.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.apiSave(w, r, entity, record, id, http.StatusOK, true)
}

// handleAPIPatch merges the body into the stored record before validating.
func (s *Server) handleAPIPatch(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Update })
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	record, err := entity.Controller.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.apiSave(w, r, entity, record, id, http.StatusOK, false)
}

// apiSave binds the JSON body onto a form seeded with initial. With replace
// the seeded values are cleared first so only the body is validated.
func (s *Server) apiSave(w http.ResponseWriter, r *http.Request, entity *admin.Entity, initial crud.Record, id string, status int, replace bool) {
	body, err := decodeJSON(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	f, err := s.admin.NewForm(entity.Name(), initial)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if replace {
		f.Clear()
	}
	if unknown := bindJSON(f, body); len(unknown) > 0 {
		s.writeError(w, form.ErrInvalid, unknown)
		return
	}

	out := entity.Controller.Save(r.Context(), f, id)
	if !out.OK {
		var fields map[string][]string
		if errors.Is(out.Err, form.ErrInvalid) {
			fields = f.Errors()
		}
		s.writeError(w, out.Err, fields)
		return
	}
	writeJSON(w, status, out.Item)
}

func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Delete })
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	out := entity.Controller.Delete(r.Context(), id)
	if !out.OK {
		s.writeError(w, out.Err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleAPIBulkDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "entity")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Bulk && a.Delete })
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	var req bulkRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("decode body: %v", err)})
		return
	}
	result := entity.Controller.BulkDelete(r.Context(), selectedIDs(req.IDs))
	status := http.StatusOK
	if !result.OK() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

func decodeJSON(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if body == nil {
		return nil, errors.New("decode body: expected a JSON object")
	}
	return body, nil
}

// bindJSON sets every body key on f and returns the keys the entity lacks.
// The id key is owned by the store and skipped.
func bindJSON(f *form.Form, body map[string]any) map[string][]string {
	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var unknown map[string][]string
	for _, key := range keys {
		if key == "id" {
			continue
		}
		if err := f.Set(key, body[key]); err != nil {
			if unknown == nil {
				unknown = make(map[string][]string)
			}
			unknown[key] = []string{MessageUnknownField}
		}
	}
	return unknown
}
