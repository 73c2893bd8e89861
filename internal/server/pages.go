package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/pkg/admin"
	"github.com/goliatone/go-admingen/pkg/crud"
	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/render"
)

// ErrActionDisabled is returned when an entity does not enable an action.
var ErrActionDisabled = errors.New("server: action disabled")

// maxUploadMemory bounds the in-memory part of multipart submissions.
const maxUploadMemory = 32 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := s.admin.IndexPage()
	page.Notice = takeNotice(w, r, s.admin.BasePath())
	s.render(w, r, http.StatusOK, page, render.RenderOptions{})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "entity")
	page, err := s.admin.ListPage(r.Context(), name, crud.ParseListQuery(r.URL.Query()))
	if err != nil {
		s.failPage(w, err)
		return
	}
	page.Notice = takeNotice(w, r, s.admin.BasePath())
	options := render.RenderOptions{
		Hidden: render.MergeHiddenFields(nil, render.ReturnTo(page.ListHref)),
	}
	s.render(w, r, http.StatusOK, page, options)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	if _, err := s.allowed(name, func(a model.Actions) bool { return a.Read }); err != nil {
		s.failPage(w, err)
		return
	}
	page, err := s.admin.DetailPage(r.Context(), name, id)
	if err != nil {
		s.failPage(w, err)
		return
	}
	page.Notice = takeNotice(w, r, s.admin.BasePath())
	s.render(w, r, http.StatusOK, page, render.RenderOptions{})
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "entity")
	if _, err := s.allowed(name, func(a model.Actions) bool { return a.Create }); err != nil {
		s.failPage(w, err)
		return
	}
	f, err := s.admin.NewForm(name, nil)
	if err != nil {
		s.failPage(w, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, name, f, "", r.URL.Query().Get(render.FieldReturn), nil)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Update })
	if err != nil {
		s.failPage(w, err)
		return
	}
	record, err := entity.Controller.Get(r.Context(), id)
	if err != nil {
		s.failPage(w, err)
		return
	}
	f, err := s.admin.NewForm(name, record)
	if err != nil {
		s.failPage(w, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, name, f, id, r.URL.Query().Get(render.FieldReturn), nil)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "entity")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Create })
	if err != nil {
		s.failPage(w, err)
		return
	}
	f, err := s.admin.NewForm(name, nil)
	if err != nil {
		s.failPage(w, err)
		return
	}
	s.save(w, r, entity, f, "")
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Update })
	if err != nil {
		s.failPage(w, err)
		return
	}
	record, err := entity.Controller.Get(r.Context(), id)
	if err != nil {
		s.failPage(w, err)
		return
	}
	f, err := s.admin.NewForm(name, record)
	if err != nil {
		s.failPage(w, err)
		return
	}
	s.save(w, r, entity, f, id)
}

// save binds the submission, runs it through the controller and either
// redirects back to the list or re-renders the form with its errors.
func (s *Server) save(w http.ResponseWriter, r *http.Request, entity *admin.Entity, f *form.Form, id string) {
	if err := decodeSubmission(r.Context(), r, f); err != nil {
		s.logger.Warn("decode submission", zap.String("entity", entity.Name()), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	listPath := render.EntityPath(s.admin.BasePath(), entity.Name())
	returnTo := r.PostFormValue(render.FieldReturn)

	out := entity.Controller.Save(r.Context(), f, id)
	if out.OK {
		setNotice(w, s.admin.BasePath(), out.Notice)
		http.Redirect(w, r, render.SafeReturnPath(returnTo, listPath), http.StatusSeeOther)
		return
	}

	errs := f.Errors()
	var statusErr *crud.StatusError
	if errors.As(out.Err, &statusErr) && len(statusErr.Fields) > 0 {
		errs = statusErr.Fields
	}
	status := statusFor(out.Err)
	notice := out.Notice
	s.renderForm(w, r, status, entity.Name(), f, id, returnTo, func(page *render.Page, options *render.RenderOptions) {
		page.Notice = &notice
		options.Errors = errs
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Delete })
	if err != nil {
		s.failPage(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	out := entity.Controller.Delete(r.Context(), id)
	setNotice(w, s.admin.BasePath(), out.Notice)
	listPath := render.EntityPath(s.admin.BasePath(), name)
	http.Redirect(w, r, render.SafeReturnPath(r.PostFormValue(render.FieldReturn), listPath), http.StatusSeeOther)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "entity")
	entity, err := s.allowed(name, func(a model.Actions) bool { return a.Bulk && a.Delete })
	if err != nil {
		s.failPage(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	result := entity.Controller.BulkDelete(r.Context(), selectedIDs(r.PostForm["ids"]))
	setNotice(w, s.admin.BasePath(), bulkNotice(result))
	listPath := render.EntityPath(s.admin.BasePath(), name)
	http.Redirect(w, r, render.SafeReturnPath(r.PostFormValue(render.FieldReturn), listPath), http.StatusSeeOther)
}

// allowed resolves name and checks that enabled accepts its actions.
func (s *Server) allowed(name string, enabled func(model.Actions) bool) (*admin.Entity, error) {
	entity, err := s.admin.Entity(name)
	if err != nil {
		return nil, err
	}
	if !enabled(entity.Config.Actions) {
		return nil, fmt.Errorf("%w: %s", ErrActionDisabled, name)
	}
	return entity, nil
}

func (s *Server) renderForm(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	name string,
	f *form.Form,
	id string,
	returnTo string,
	adjust func(*render.Page, *render.RenderOptions),
) {
	page, err := s.admin.FormPage(r.Context(), name, f, id)
	if err != nil {
		s.failPage(w, err)
		return
	}
	options := render.RenderOptions{}
	if target := render.SafeReturnPath(returnTo, ""); target != "" {
		options.Hidden = render.MergeHiddenFields(nil, render.ReturnTo(target))
		page.ListHref = target
	}
	if adjust != nil {
		adjust(&page, &options)
	}
	s.render(w, r, status, page, options)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page render.Page, options render.RenderOptions) {
	query := r.URL.Query()
	renderer := s.renderer
	if requested := strings.TrimSpace(query.Get("renderer")); requested != "" {
		renderer = requested
	}
	out, contentType, err := s.admin.Render(r.Context(), page, admin.RenderRequest{
		Renderer: renderer,
		Accept:   r.Header.Get("Accept"),
		Theme:    query.Get("theme"),
		Variant:  query.Get("variant"),
		Options:  options,
	})
	if err != nil {
		s.failPage(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func decodeSubmission(ctx context.Context, r *http.Request, f *form.Form) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return err
		}
		return f.DecodeMultipart(ctx, r.MultipartForm)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	f.Decode(r.PostForm)
	return nil
}

func selectedIDs(raw []string) []string {
	ids := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func bulkNotice(result crud.BulkResult) crud.Notice {
	if result.OK() {
		return crud.Notice{
			Level:   crud.LevelSuccess,
			Message: fmt.Sprintf("%d élément(s) supprimé(s)", len(result.Deleted)),
		}
	}
	return crud.Notice{
		Level: crud.LevelError,
		Message: fmt.Sprintf("%d supprimé(s), %d en échec, %d ignoré(s)",
			len(result.Deleted), len(result.Failed), len(result.Skipped)),
	}
}
