package relations

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/pkg/relation"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type optionsResponse struct {
	Data []relation.Candidate `json:"data"`
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeError(w, err, http.StatusForbidden)
				return
			}
		}
		if opts.Fetcher == nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		entity := EntityFromRequest(r)
		if entity == "" {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		displayField := ""
		if opts.Resolve != nil {
			field, ok := opts.Resolve(entity)
			if !ok {
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			displayField = field
		}

		records, err := opts.Fetcher.Fetch(r.Context(), entity)
		if err != nil {
			opts.Logger.Warn("relation candidates failed", zap.String("entity", entity), zap.Error(err))
			writeError(w, err, http.StatusBadGateway)
			return
		}

		query := r.URL.Query().Get(opts.SearchParam)
		limit := parseInt(r.URL.Query().Get(opts.LimitParam))
		results := Search(relation.Candidates(records, displayField), query, limit, opts)
		if results == nil {
			results = []relation.Candidate{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(optionsResponse{Data: results})
	})
}

// EntityFromRequest reads the {entity} path value, falling back to the last
// path segment for routers that do not populate path values.
func EntityFromRequest(r *http.Request) string {
	if value := strings.TrimSpace(r.PathValue("entity")); value != "" {
		return value
	}
	base := path.Base(strings.TrimRight(r.URL.Path, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	code := fallback
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode() > 0 {
		code = httpErr.StatusCode()
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
