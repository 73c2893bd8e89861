package crud

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/pkg/form"
)

// Notice levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notice is a transient user-visible message.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Outcome is the result of a mutation as seen by the UI. DialogOpen stays
// true on failure so the user can retry.
type Outcome struct {
	OK         bool   `json:"ok"`
	Notice     Notice `json:"notice"`
	DialogOpen bool   `json:"dialogOpen"`
	Item       Record `json:"item,omitempty"`
	Err        error  `json:"-"`
}

// Messages shown in outcome notices.
const (
	MessageCreated     = "Élément créé avec succès"
	MessageUpdated     = "Élément mis à jour avec succès"
	MessageDeleted     = "Élément supprimé avec succès"
	MessageCreateError = "Erreur lors de la création"
	MessageUpdateError = "Erreur lors de la mise à jour"
	MessageDeleteError = "Erreur lors de la suppression"
	MessageInvalidForm = "Veuillez corriger les erreurs du formulaire"
	MessagePending     = "Une soumission est déjà en cours"
)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithCache shares a query cache between controllers.
func WithCache(cache *QueryCache) ControllerOption {
	return func(c *Controller) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithBulkPolicy sets the bulk delete policy.
func WithBulkPolicy(policy BulkPolicy) ControllerOption {
	return func(c *Controller) {
		c.policy = policy
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPageSize sets the default list page size.
func WithPageSize(size int) ControllerOption {
	return func(c *Controller) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// Controller wires a Service to the list cache and produces outcomes for
// each mutation. Failed calls are never retried.
type Controller struct {
	entity   string
	service  Service
	cache    *QueryCache
	policy   BulkPolicy
	pageSize int
	logger   *zap.Logger
}

// NewController constructs a controller for entity.
func NewController(entity string, service Service, options ...ControllerOption) *Controller {
	c := &Controller{
		entity:   entity,
		service:  service,
		cache:    NewQueryCache(),
		policy:   AbortOnFirstError,
		pageSize: DefaultPageSize,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Entity returns the entity name.
func (c *Controller) Entity() string { return c.entity }

// Service returns the underlying service.
func (c *Controller) Service() Service { return c.service }

// Policy returns the bulk delete policy.
func (c *Controller) Policy() BulkPolicy { return c.policy }

// List returns the page for query, served from the cache when possible.
func (c *Controller) List(ctx context.Context, query ListQuery) (ListResult, error) {
	query = query.Normalize(c.pageSize)
	if cached, ok := c.cache.Get(c.entity, query); ok {
		return cached, nil
	}
	result, err := c.service.FetchItems(ctx, query)
	if err != nil {
		c.logger.Warn("list failed", zap.String("entity", c.entity), zap.Error(err))
		return ListResult{}, fmt.Errorf("crud: list %s: %w", c.entity, err)
	}
	c.cache.Put(c.entity, query, result)
	return result, nil
}

// Get loads a single record.
func (c *Controller) Get(ctx context.Context, id string) (Record, error) {
	return GetItem(ctx, c.service, id)
}

// Create calls the service and invalidates the list cache on success.
func (c *Controller) Create(ctx context.Context, data Record) Outcome {
	item, err := c.service.CreateItem(ctx, data)
	if err != nil {
		return c.failure("create", MessageCreateError, err)
	}
	return c.success("create", MessageCreated, item)
}

// Update calls the service and invalidates the list cache on success.
func (c *Controller) Update(ctx context.Context, id string, partial Record) Outcome {
	if id == "" {
		return c.failure("update", MessageUpdateError, ErrInvalidID)
	}
	item, err := c.service.UpdateItem(ctx, id, partial)
	if err != nil {
		return c.failure("update", MessageUpdateError, err)
	}
	return c.success("update", MessageUpdated, item)
}

// Delete calls the service once for id and invalidates the list cache on
// success.
func (c *Controller) Delete(ctx context.Context, id string) Outcome {
	if id == "" {
		return c.failure("delete", MessageDeleteError, ErrInvalidID)
	}
	if err := c.service.DeleteItem(ctx, id); err != nil {
		return c.failure("delete", MessageDeleteError, err)
	}
	return c.success("delete", MessageDeleted, Record{"id": id})
}

// Save submits f through Create (id == "") or Update. Invalid forms never
// reach the service.
func (c *Controller) Save(ctx context.Context, f *form.Form, id string) Outcome {
	var out Outcome
	err := f.Submit(ctx, func(ctx context.Context, payload map[string]any) error {
		if id == "" {
			out = c.Create(ctx, payload)
		} else {
			out = c.Update(ctx, id, payload)
		}
		return out.Err
	})
	switch {
	case errors.Is(err, form.ErrInvalid):
		return Outcome{DialogOpen: true, Notice: Notice{Level: LevelError, Message: MessageInvalidForm}, Err: err}
	case errors.Is(err, form.ErrSubmitPending):
		return Outcome{DialogOpen: true, Notice: Notice{Level: LevelError, Message: MessagePending}, Err: err}
	case err != nil && out.Err == nil:
		return Outcome{DialogOpen: true, Notice: Notice{Level: LevelError, Message: err.Error()}, Err: err}
	}
	return out
}

// BulkDelete deletes ids one after another under the controller policy.
func (c *Controller) BulkDelete(ctx context.Context, ids []string) BulkResult {
	result := BulkResult{Deleted: []string{}}
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Skipped = append(result.Skipped, ids[i:]...)
			break
		}
		if err := c.service.DeleteItem(ctx, id); err != nil {
			c.logger.Warn("bulk delete item failed",
				zap.String("entity", c.entity),
				zap.String("id", id),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, BulkFailure{ID: id, Err: err, Message: err.Error()})
			if c.policy == AbortOnFirstError {
				result.Skipped = append(result.Skipped, ids[i+1:]...)
				break
			}
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	if len(result.Deleted) > 0 {
		c.cache.Invalidate(c.entity)
	}
	c.logger.Info("bulk delete",
		zap.String("entity", c.entity),
		zap.Stringer("policy", c.policy),
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result
}

func (c *Controller) success(action, message string, item Record) Outcome {
	c.cache.Invalidate(c.entity)
	c.logger.Info("mutation succeeded", zap.String("entity", c.entity), zap.String("action", action))
	return Outcome{
		OK:     true,
		Notice: Notice{Level: LevelSuccess, Message: message},
		Item:   item,
	}
}

func (c *Controller) failure(action, message string, err error) Outcome {
	c.logger.Warn("mutation failed",
		zap.String("entity", c.entity),
		zap.String("action", action),
		zap.Error(err),
	)
	return Outcome{
		DialogOpen: true,
		Notice:     Notice{Level: LevelError, Message: fmt.Sprintf("%s: %v", message, err)},
		Err:        err,
	}
}
