package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/triggerNode/BuxTax/src/logger"
	"github.com/triggerNode/BuxTax/src/model"
)

// Stripe event types that change an entitlement.
const (
	EventCheckoutCompleted   stripe.EventType = "checkout.session.completed"
	EventSubscriptionUpdated stripe.EventType = "customer.subscription.updated"
	EventSubscriptionDeleted stripe.EventType = "customer.subscription.deleted"
)

type entitlementServiceImpl struct {
	db  *sql.DB
	now func() time.Time
}

func NewEntitlementService(db *sql.DB) EntitlementService {
	return &entitlementServiceImpl{db: db, now: time.Now}
}

// HasActiveEntitlement is false, without error, for users that never subscribed.
func (s *entitlementServiceImpl) HasActiveEntitlement(userID string) (bool, error) {
	e, err := s.GetEntitlement(userID)
	if err != nil {
		return false, err
	}
	return e.IsActive(), nil
}

// GetEntitlement returns an inactive entitlement for unknown users.
func (s *entitlementServiceImpl) GetEntitlement(userID string) (*model.Entitlement, error) {
	e, err := model.GetEntitlementByUserID(s.db, userID)
	if errors.Is(err, model.ErrEntitlementNotFound) {
		return &model.Entitlement{UserID: userID, PaymentStatus: model.PaymentStatusInactive}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlement for user %s: %w", userID, err)
	}
	return e, nil
}

// ApplyStripeEvent updates the entitlement named by a verified webhook event. Events of
// other types, and events that carry no user id, are acknowledged and ignored.
func (s *entitlementServiceImpl) ApplyStripeEvent(event stripe.Event) error {
	var uid, status, plan string
	switch event.Type {
	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := decodeEventObject(event, &session); err != nil {
			return err
		}
		uid = session.Metadata["uid"]
		if uid == "" {
			uid = session.ClientReferenceID
		}
		status = model.PaymentStatusActive
		plan = session.Metadata["plan"]
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := decodeEventObject(event, &sub); err != nil {
			return err
		}
		uid = sub.Metadata["uid"]
		if event.Type == EventSubscriptionDeleted {
			status = model.PaymentStatusInactive
		} else {
			status = subscriptionPaymentStatus(sub.Status)
			plan = sub.Metadata["plan"]
		}
	default:
		logger.L.Debug("Ignoring stripe event", "eventID", event.ID, "type", event.Type)
		return nil
	}

	if uid == "" {
		logger.L.Warn("Stripe event without user id", "eventID", event.ID, "type", event.Type)
		return nil
	}

	e := &model.Entitlement{UserID: uid, PaymentStatus: status, Plan: plan, UpdatedAt: s.now().UTC()}
	if err := model.UpsertEntitlement(s.db, e); err != nil {
		return err
	}
	logger.L.Info("Entitlement updated from stripe event", "eventID", event.ID, "type", event.Type,
		"userID", uid, "paymentStatus", status)
	return nil
}

func decodeEventObject(event stripe.Event, v interface{}) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("stripe event %s (%s) has no data object", event.ID, event.Type)
	}
	if err := json.Unmarshal(event.Data.Raw, v); err != nil {
		return fmt.Errorf("invalid %s object in stripe event %s: %w", event.Type, event.ID, err)
	}
	return nil
}

func subscriptionPaymentStatus(status stripe.SubscriptionStatus) string {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return model.PaymentStatusActive
	case stripe.SubscriptionStatusPastDue:
		return model.PaymentStatusPastDue
	default:
		return model.PaymentStatusInactive
	}
}
