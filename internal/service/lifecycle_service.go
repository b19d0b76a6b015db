package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/affiliate"
	"github.com/kosuite/shopcore/internal/domain"
	"github.com/kosuite/shopcore/internal/mailer"
	"github.com/kosuite/shopcore/internal/metrics"
	"github.com/kosuite/shopcore/internal/repository"
)

// LifecycleService owns the order state machine. It is driven exclusively
// by verified webhook events; nothing in this process schedules or retries
// transitions on its own.
type LifecycleService struct {
	repo    repository.OrderRepository
	mail    mailer.Sender
	tracker affiliate.Tracker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	repo repository.OrderRepository,
	mail mailer.Sender,
	tracker affiliate.Tracker,
	m *metrics.Metrics,
	logger *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		repo:    repo,
		mail:    mail,
		tracker: tracker,
		metrics: m,
		logger:  logger,
	}
}

// Apply routes one verified payment event through the state machine.
// A nil return means the gateway gets a 200 and will not redeliver;
// *errors.ErrNotFound means the event referenced an unknown order.
func (s *LifecycleService) Apply(ctx context.Context, evt domain.PaymentEvent) error {
	order, err := s.repo.FindByNumber(ctx, evt.MerchantOrderExtRef)
	if err != nil {
		s.metrics.WebhookEvents.WithLabelValues(evt.Event, "not_found").Inc()
		return err
	}

	switch evt.Event {
	case domain.EventOrderCompleted:
		return s.complete(ctx, order, evt)
	case domain.EventOrderAuthorised:
		return s.transition(ctx, order, evt, domain.OrderStatusAuthorized, nil)
	case domain.EventOrderCancelled:
		return s.transition(ctx, order, evt, domain.OrderStatusCancelled, func(o *domain.Order) {
			s.sendMail(ctx, "email_cancellation", mailer.OrderCancelled(o))
		})
	case domain.EventOrderPaymentFailed:
		return s.transition(ctx, order, evt, domain.OrderStatusFailed, func(o *domain.Order) {
			s.sendMail(ctx, "email_failure", mailer.OrderPaymentFailed(o))
		})
	default:
		// Forward compatibility: new gateway event types must not bounce.
		s.logger.Info("Ignoring unknown webhook event type",
			zap.String("event", evt.Event),
			zap.String("order_number", evt.MerchantOrderExtRef),
		)
		s.metrics.WebhookEvents.WithLabelValues(evt.Event, "ignored").Inc()
		return nil
	}
}

// complete handles ORDER_COMPLETED: the paid transition plus its side
// effects. Redeliveries of an already-paid order are acknowledged, and the
// commission path is consulted again because the flag CAS makes it safe.
func (s *LifecycleService) complete(ctx context.Context, order *domain.Order, evt domain.PaymentEvent) error {
	duplicate := order.Status == domain.OrderStatusPaid

	if !duplicate {
		if !order.Status.CanTransitionTo(domain.OrderStatusPaid) {
			return s.conflict(order, evt, domain.OrderStatusPaid)
		}

		now := time.Now().UTC()
		if err := s.repo.UpdateStatus(ctx, order.ID, domain.OrderStatusPaid, evt.PaymentMethod.Type, now); err != nil {
			s.metrics.WebhookEvents.WithLabelValues(evt.Event, "error").Inc()
			return err
		}
		order.Status = domain.OrderStatusPaid
		order.PaidAt = &now
		if evt.PaymentMethod.Type != "" {
			order.PaymentMethod = evt.PaymentMethod.Type
		}

		s.logger.Info("Order paid",
			zap.String("order_number", order.OrderNumber),
			zap.String("payment_method", order.PaymentMethod),
		)
		s.metrics.WebhookEvents.WithLabelValues(evt.Event, "applied").Inc()

		// The transition is committed; everything past this point is
		// best-effort and must not surface to the gateway.
		s.sendMail(ctx, "email_confirmation", mailer.OrderConfirmation(order))
	} else {
		s.logger.Info("Duplicate completed event for paid order",
			zap.String("order_number", order.OrderNumber),
		)
		s.metrics.WebhookEvents.WithLabelValues(evt.Event, "duplicate").Inc()
	}

	s.trackCommission(ctx, order)
	return nil
}

// transition handles the single-step events (authorised, cancelled, failed).
func (s *LifecycleService) transition(
	ctx context.Context,
	order *domain.Order,
	evt domain.PaymentEvent,
	target domain.OrderStatus,
	sideEffects func(*domain.Order),
) error {
	if order.Status == target {
		s.logger.Info("Duplicate webhook event, no transition",
			zap.String("order_number", order.OrderNumber),
			zap.String("status", string(target)),
		)
		s.metrics.WebhookEvents.WithLabelValues(evt.Event, "duplicate").Inc()
		return nil
	}
	if !order.Status.CanTransitionTo(target) {
		return s.conflict(order, evt, target)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, order.ID, target, evt.PaymentMethod.Type, now); err != nil {
		s.metrics.WebhookEvents.WithLabelValues(evt.Event, "error").Inc()
		return err
	}
	order.Status = target
	if target == domain.OrderStatusCancelled {
		order.CancelledAt = &now
	}
	if evt.PaymentMethod.Type != "" {
		order.PaymentMethod = evt.PaymentMethod.Type
	}

	s.logger.Info("Order transitioned",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(target)),
	)
	s.metrics.WebhookEvents.WithLabelValues(evt.Event, "applied").Inc()

	if sideEffects != nil {
		sideEffects(order)
	}
	return nil
}

// conflict logs an event whose target the current status does not admit.
// The gateway still gets a 200: redelivering a conflicting outcome forever
// helps nobody, this is a reconciliation concern.
func (s *LifecycleService) conflict(order *domain.Order, evt domain.PaymentEvent, target domain.OrderStatus) error {
	s.logger.Warn("Webhook event conflicts with current order status",
		zap.String("order_number", order.OrderNumber),
		zap.String("current", string(order.Status)),
		zap.String("target", string(target)),
		zap.String("event", evt.Event),
	)
	s.metrics.WebhookEvents.WithLabelValues(evt.Event, "ignored").Inc()
	return nil
}

// sendMail attempts one delivery. Failures are logged and counted, never
// propagated: the order's status is already committed.
func (s *LifecycleService) sendMail(ctx context.Context, effect string, msg mailer.Message) {
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send outcome email",
			zap.String("effect", effect),
			zap.Error(err),
		)
		s.metrics.SideEffects.WithLabelValues(effect, "error").Inc()
		return
	}
	s.metrics.SideEffects.WithLabelValues(effect, "ok").Inc()
}

// trackCommission fires the affiliate payout at most once per order. The
// claim is an atomic conditional update in the repository; only the winner
// calls the affiliate API, and a failed call releases the claim so a
// gateway redelivery can retry.
func (s *LifecycleService) trackCommission(ctx context.Context, order *domain.Order) {
	if order.AffiliateID == nil || *order.AffiliateID == "" {
		return
	}

	claimed, err := s.repo.MarkCommissionTracked(ctx, order.ID)
	if err != nil {
		s.logger.Error("Failed to claim commission flag",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		s.metrics.SideEffects.WithLabelValues("affiliate_tracking", "error").Inc()
		return
	}
	if !claimed {
		s.logger.Info("Commission already tracked, skipping",
			zap.String("order_number", order.OrderNumber),
		)
		s.metrics.SideEffects.WithLabelValues("affiliate_tracking", "skipped").Inc()
		return
	}

	conv := affiliate.Conversion{
		AffiliateID: *order.AffiliateID,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Amount:      order.Summary.Total,
		Currency:    "GBP",
	}
	if err := s.tracker.TrackSale(ctx, conv); err != nil {
		s.logger.Error("Failed to track affiliate conversion",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		s.metrics.SideEffects.WithLabelValues("affiliate_tracking", "error").Inc()

		if clearErr := s.repo.ClearCommissionTracked(ctx, order.ID); clearErr != nil {
			s.logger.Error("Failed to release commission claim",
				zap.String("order_number", order.OrderNumber),
				zap.Error(clearErr),
			)
		}
		return
	}

	s.metrics.SideEffects.WithLabelValues("affiliate_tracking", "ok").Inc()
}
