package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wtppaul/course-marketplace/internal/apperr"
	"github.com/wtppaul/course-marketplace/internal/config"
	"github.com/wtppaul/course-marketplace/internal/gateway"
	"github.com/wtppaul/course-marketplace/internal/logger"
	"github.com/wtppaul/course-marketplace/internal/models"
	"github.com/wtppaul/course-marketplace/internal/repository"
)

const bpsDenominator = 10000

// OrderGateway is the part of gateway.Client the payment flow needs.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error)
	KeyID() string
}

// WebhookLocker is satisfied by redis.WebhookLocker. Acquire returns a nil
// release func when someone else holds the lock.
type WebhookLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

type PaymentSettings struct {
	Currency          string
	PlatformAccountID string
	WebhookSecret     string
	CommissionRateBps int64
	GatewayFeeRateBps int64
	LockTTL           time.Duration
}

func PaymentSettingsFromConfig(cfg *config.Config) PaymentSettings {
	return PaymentSettings{
		Currency:          cfg.Gateway.Currency,
		PlatformAccountID: cfg.Gateway.PlatformAccountID,
		WebhookSecret:     cfg.Gateway.WebhookSecret,
		CommissionRateBps: cfg.CommissionRateBps,
		GatewayFeeRateBps: cfg.GatewayFeeRateBps,
		LockTTL:           cfg.WebhookLockTTL,
	}
}

// Split is the breakdown of one payment in minor units.
// Platform + GatewayFee + Seller == Amount.
type Split struct {
	Amount     int64 `json:"amount"`
	Platform   int64 `json:"platformAmount"`
	GatewayFee int64 `json:"gatewayFee"`
	Seller     int64 `json:"sellerAmount"`
}

// SplitAmount floors both fees so the seller is never overpaid; the seller
// gets the remainder.
func SplitAmount(amount, commissionBps, gatewayFeeBps int64) Split {
	platform := amount * commissionBps / bpsDenominator
	fee := amount * gatewayFeeBps / bpsDenominator
	return Split{
		Amount:     amount,
		Platform:   platform,
		GatewayFee: fee,
		Seller:     amount - platform - fee,
	}
}

// IsSelfSale reports whether the seller's payout account is the platform's
// own account, in which case no transfer is routed.
func IsSelfSale(payoutAccountID, platformAccountID string) bool {
	return payoutAccountID != "" && payoutAccountID == platformAccountID
}

// ToMinorUnits converts a major-unit price (99.99) to minor units (9999).
func ToMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// Checkout is everything the client needs to open the gateway widget.
type Checkout struct {
	Payment *models.Payment `json:"payment"`
	Order   *gateway.Order  `json:"order"`
	KeyID   string          `json:"keyId"`
}

type Settlement struct {
	Payment    *models.Payment    `json:"payment"`
	Enrollment *models.Enrollment `json:"enrollment,omitempty"`
}

type PaymentService interface {
	CreatePayment(ctx context.Context, courseID, buyerID uuid.UUID) (*Checkout, error)
	VerifyPayment(ctx context.Context, rawBody []byte, signature string) (*Settlement, error)
	ListPayments(ctx context.Context, buyerID uuid.UUID) ([]*models.Payment, error)
}

type paymentService struct {
	courses    repository.ICourseRepository
	enrollment repository.IEnrollmentRepository
	payments   repository.IPaymentRepository
	gateway    OrderGateway
	locker     WebhookLocker
	settings   PaymentSettings
	log        *logger.Logger
}

// NewPaymentService wires the settlement flow. locker may be nil, in which
// case concurrent deliveries rely on the idempotent writes alone.
func NewPaymentService(
	courses repository.ICourseRepository,
	enrollment repository.IEnrollmentRepository,
	payments repository.IPaymentRepository,
	gw OrderGateway,
	locker WebhookLocker,
	settings PaymentSettings,
	log *logger.Logger,
) PaymentService {
	if settings.LockTTL <= 0 {
		settings.LockTTL = 30 * time.Second
	}
	return &paymentService{
		courses:    courses,
		enrollment: enrollment,
		payments:   payments,
		gateway:    gw,
		locker:     locker,
		settings:   settings,
		log:        log.With("service", "PaymentService"),
	}
}

// CreatePayment validates everything locally before talking to the gateway
// so a rejected purchase never leaves an orphaned remote order.
func (s *paymentService) CreatePayment(ctx context.Context, courseID, buyerID uuid.UUID) (*Checkout, error) {
	course, err := s.courses.GetCourseWithInstructor(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, apperr.NotFound("course_not_found", "course %v not found", courseID)
	}
	if course.Instructor == nil {
		return nil, apperr.NotFound("instructor_not_found", "instructor of course %v not found", courseID)
	}
	payout := ""
	if course.Instructor.PayoutAccountID != nil {
		payout = strings.TrimSpace(*course.Instructor.PayoutAccountID)
	}
	if payout == "" {
		return nil, apperr.ErrPayoutNotConfigured
	}
	if course.Price == nil {
		return nil, apperr.ErrCourseNotPriced
	}
	amount := ToMinorUnits(*course.Price)
	if amount <= 0 {
		return nil, apperr.ErrCourseNotPriced
	}

	existing, err := s.enrollment.GetEnrollment(ctx, buyerID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.ErrAlreadyEnrolled
	}

	split := SplitAmount(amount, s.settings.CommissionRateBps, s.settings.GatewayFeeRateBps)
	req := gateway.OrderRequest{
		Amount:   amount,
		Currency: s.settings.Currency,
		Receipt:  "rcpt_" + uuid.NewString()[:8],
		Notes: map[string]string{
			"courseId": courseID.String(),
			"buyerId":  buyerID.String(),
		},
	}
	if !IsSelfSale(payout, s.settings.PlatformAccountID) {
		req.Transfers = []gateway.Transfer{{
			Account:  payout,
			Amount:   split.Seller,
			Currency: s.settings.Currency,
		}}
	}

	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		s.log.Error("gateway order creation failed", "course_id", courseID, "user_id", buyerID, "error", err)
		return nil, apperr.External("gateway_error", err)
	}

	payment := &models.Payment{
		GatewayOrderID:   order.ID,
		Amount:           amount,
		Currency:         s.settings.Currency,
		CommissionAmount: split.Platform,
		GatewayFee:       split.GatewayFee,
		SellerAmount:     split.Seller,
		Status:           models.PaymentPending,
		CourseID:         courseID,
		BuyerID:          buyerID,
		SellerID:         course.InstructorID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		s.log.Error("failed to persist payment", "gateway_order_id", order.ID, "course_id", courseID, "user_id", buyerID, "error", err)
		return nil, err
	}

	s.log.Info("payment order created", "gateway_order_id", order.ID, "course_id", courseID, "user_id", buyerID, "amount", amount)
	return &Checkout{Payment: payment, Order: order, KeyID: s.gateway.KeyID()}, nil
}

// VerifyPayment handles one webhook delivery. The signature is checked over
// the raw bytes before anything is parsed; settlement is idempotent so the
// gateway may redeliver freely.
func (s *paymentService) VerifyPayment(ctx context.Context, rawBody []byte, signature string) (*Settlement, error) {
	if !gateway.VerifySignature(rawBody, signature, s.settings.WebhookSecret) {
		s.log.Warn("webhook signature mismatch")
		return nil, apperr.ErrInvalidSignature
	}

	evt, err := gateway.ParseWebhook(rawBody)
	if err != nil {
		return nil, apperr.Validation("invalid_payload", "%v", err)
	}
	entity := evt.Payment()
	log := s.log.With("gateway_order_id", entity.OrderID, "event", evt.Event)
	if evt.Event != gateway.EventPaymentFailed && entity.Status != gateway.StatusCaptured {
		log.Warn("webhook for uncaptured payment", "status", entity.Status)
		return nil, apperr.ErrPaymentNotCaptured
	}

	release, err := s.lock(ctx, entity.OrderID)
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("failed to release webhook lock", "error", err)
			}
		}()
	}

	if evt.Event == gateway.EventPaymentFailed {
		payment, err := s.payments.MarkFailed(ctx, entity.OrderID, entity.ID)
		if err != nil {
			log.Error("failed to mark payment failed", "error", err)
			return nil, err
		}
		log.Info("payment marked failed", "status", payment.Status)
		return &Settlement{Payment: payment}, nil
	}

	stored, err := s.payments.GetByOrderID(ctx, entity.OrderID)
	if err != nil {
		log.Warn("webhook for unknown order", "error", err)
		return nil, err
	}
	if entity.Amount != 0 && entity.Amount != stored.Amount {
		log.Error("captured amount does not match order", "expected", stored.Amount, "got", entity.Amount)
		return nil, apperr.Validation("amount_mismatch", "captured amount %d does not match order amount %d", entity.Amount, stored.Amount)
	}

	payment, enrollment, err := s.payments.Settle(ctx, entity.OrderID, entity.ID)
	if err != nil {
		log.Error("settlement transaction failed", "user_id", stored.BuyerID, "course_id", stored.CourseID, "error", err)
		return nil, err
	}
	log.Info("payment settled", "user_id", payment.BuyerID, "course_id", payment.CourseID)
	return &Settlement{Payment: payment, Enrollment: enrollment}, nil
}

// lock takes the per-order webhook lock. A Redis outage degrades to running
// unlocked since both settlement writes are upserts.
func (s *paymentService) lock(ctx context.Context, orderID string) (func(context.Context) error, error) {
	if s.locker == nil {
		return nil, nil
	}
	release, err := s.locker.Acquire(ctx, orderID, s.settings.LockTTL)
	if err != nil {
		s.log.Warn("webhook lock unavailable, continuing unlocked", "gateway_order_id", orderID, "error", err)
		return nil, nil
	}
	if release == nil {
		return nil, apperr.ErrWebhookInFlight
	}
	return release, nil
}

func (s *paymentService) ListPayments(ctx context.Context, buyerID uuid.UUID) ([]*models.Payment, error) {
	payments, err := s.payments.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return payments, nil
}
