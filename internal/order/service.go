package order

import (
	"fmt"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"ms-orders/internal/imagecheck"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
	"ms-orders/internal/utils"
)

type DBLayer interface {
	Put(order models.Order) error
	GetByID(id string) (*models.Order, error)
	GetAll() ([]models.Order, error)
	SetStatus(id string, status models.Status) error
	Count() (int, error)
}

type CacheLayer interface {
	Put(order models.Order) error
	GetByID(id string) (*models.Order, error)
	GetAll() ([]models.Order, error)
	SetStatus(id string, status models.Status) error
	Count() (int, error)
}

type EventPublisher interface {
	PublishOrderCreated(order models.Order) error
	PublishStatusChanged(id string, status models.Status) error
}

type ArtifactStore interface {
	SaveImage(data []byte) (string, error)
}

// OrderService owns the tiered submission policy: the durable store is the
// source of truth when reachable, the replica cache absorbs everything else.
// The two tiers converge opportunistically on later reads and writes; there
// is no background sync.
type OrderService struct {
	DB        DBLayer
	Cache     CacheLayer
	Events    EventPublisher // optional
	Artifacts ArtifactStore  // optional
	Checker   Reachability
	Logger    *logger.Logger

	validate *validatorv10.Validate
}

func NewOrderService(db DBLayer, cache CacheLayer, checker Reachability, lg *logger.Logger) *OrderService {
	return &OrderService{
		DB:       db,
		Cache:    cache,
		Checker:  checker,
		Logger:   lg,
		validate: newValidator(),
	}
}

// Submit accepts a new order. Only validation can fail it: once the
// attributes and artifact check out, the order is written to whichever tier
// will take it and returned as a success either way.
func (s *OrderService) Submit(sub Submission) (*models.Order, error) {
	if err := checkAttributes(s.validate, sub); err != nil {
		return nil, err
	}

	payload := sub.payload()

	if len(sub.Logo) > 0 {
		if !imagecheck.IsImage(sub.Logo) {
			return nil, &ValidationError{Field: "logo", Reason: "not a recognised image"}
		}
		if s.Artifacts != nil {
			path, err := s.Artifacts.SaveImage(sub.Logo)
			if err != nil {
				// The order itself is already valid; a failed artifact
				// write loses the stored file, not the submission.
				s.Logger.Error("ORDER", fmt.Sprintf("artifact write failed: %v", err))
			} else {
				payload["logo"] = path
			}
		}
	}

	order := models.Order{
		ID:        utils.GenerateOrderID(),
		Status:    models.StatusPending,
		Payload:   payload,
		Items:     []models.LineItem{models.PlanLineItem(sub.PricingPlan)},
		Total:     models.PlanPrice(sub.PricingPlan),
		CreatedAt: time.Now().UTC(),
	}

	if s.Checker.Reachable() {
		if err := s.DB.Put(order); err == nil {
			// Mirror into the cache so the client tier can serve reads;
			// the durable write already succeeded, so a mirror failure is
			// only logged.
			if err := s.Cache.Put(order); err != nil {
				s.Logger.Warn("CACHE", fmt.Sprintf("mirror of %s failed: %v", order.ID, err))
			}
			s.publishCreated(order)
			s.Logger.LogOrder("CREATE", order.ID, "stored durably")
			return &order, nil
		} else {
			s.Logger.Warn("DATABASE", fmt.Sprintf("durable put of %s failed, falling back: %v", order.ID, err))
		}
	}

	if err := s.Cache.Put(order); err != nil {
		// Both tiers refused the write. The submission still succeeds per
		// policy; this log line is the only remaining trace.
		s.Logger.Error("ORDER", fmt.Sprintf("order %s not persisted in any tier: %v", order.ID, err))
	} else {
		s.Logger.LogOrder("CREATE", order.ID, "stored in replica cache only")
	}
	return &order, nil
}

// UpdateStatus applies a status change to whichever tier holds the order.
// Legality of the transition is the admin layer's concern; both stores apply
// any target status.
func (s *OrderService) UpdateStatus(id string, status models.Status) (*models.StatusUpdate, error) {
	if s.Checker.Reachable() {
		if err := s.DB.SetStatus(id, status); err == nil {
			// Best-effort propagation to the cache tier.
			if err := s.Cache.SetStatus(id, status); err != nil {
				s.Logger.Debug("CACHE", fmt.Sprintf("status mirror of %s skipped: %v", id, err))
			}
			s.publishStatusChanged(id, status)
			s.Logger.LogOrder("STATUS", id, string(status))
			return &models.StatusUpdate{ID: id, Status: status, Durable: true}, nil
		} else {
			s.Logger.Warn("DATABASE", fmt.Sprintf("durable status update of %s failed, falling back: %v", id, err))
		}
	}

	if err := s.Cache.SetStatus(id, status); err != nil {
		return nil, fmt.Errorf("update status of %s: %w", id, err)
	}
	s.Logger.LogOrder("STATUS", id, string(status)+" (replica cache only)")
	return &models.StatusUpdate{ID: id, Status: status, Durable: false}, nil
}

// GetOrders lists every visible order, newest first, preferring the durable
// tier and degrading to the cache.
func (s *OrderService) GetOrders() ([]models.Order, error) {
	if s.Checker.Reachable() {
		orders, err := s.DB.GetAll()
		if err == nil {
			return orders, nil
		}
		s.Logger.Warn("DATABASE", fmt.Sprintf("listing failed, falling back: %v", err))
	}
	return s.Cache.GetAll()
}

// GetOrder fetches one order, checking the cache when the durable store
// misses; a cache-only order submitted offline is still visible.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	if s.Checker.Reachable() {
		order, err := s.DB.GetByID(id)
		if err == nil {
			return order, nil
		}
	}
	return s.Cache.GetByID(id)
}

func (s *OrderService) publishCreated(order models.Order) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishOrderCreated(order); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("order_created publish failed for %s: %v", order.ID, err))
	}
}

func (s *OrderService) publishStatusChanged(id string, status models.Status) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishStatusChanged(id, status); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("order_status_changed publish failed for %s: %v", id, err))
	}
}
