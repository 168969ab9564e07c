package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"storefront/api/internal/ids"
	"storefront/api/internal/models"
	"storefront/api/internal/payment"
	"storefront/api/internal/permissions"
	"storefront/api/internal/repository"
)

var ErrPermissionDenied = errors.New("permission not granted")

type OrderStore interface {
	Create(ctx context.Context, order models.Order) (models.Order, error)
	GetByID(ctx context.Context, id int64) (models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	Lines(ctx context.Context, orderID int64) ([]models.OrderLine, error)
	MarkPaid(ctx context.Context, id int64) error
}

type CheckoutClient interface {
	CreateSession(ctx context.Context, clientReference string, items []payment.LineItem) (payment.Session, error)
}

type OrderService struct {
	orders   OrderStore
	users    UserStore
	checkout CheckoutClient
	perms    *permissions.Engine
	log      zerolog.Logger
}

func NewOrderService(orders OrderStore, users UserStore, checkout CheckoutClient, perms *permissions.Engine, log zerolog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		users:    users,
		checkout: checkout,
		perms:    perms,
		log:      log,
	}
}

type CreateOrderInput struct {
	UserID  int64
	Address string
	Items   []OrderItemInput
}

type OrderItemInput struct {
	ProductID int64
	Quantity  int
}

// CreateOrder places an order for the user named by input.UserID. The
// requester must own that account (by email) or be an admin.
func (s *OrderService) CreateOrder(ctx context.Context, requester models.User, input CreateOrderInput) (models.Order, error) {
	owner, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return models.Order{}, err
	}

	d := s.perms.Can(requester.Role, permissions.ActionCreate, permissions.ResourceOrder, permissions.Context{
		RequesterEmail: requester.Email,
		OwnerEmail:     owner.Email,
	})
	if !d.Granted {
		return models.Order{}, ErrPermissionDenied
	}

	order := models.Order{
		UserID:  input.UserID,
		Address: input.Address,
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info().Int64("order_id", created.ID).Int64("user_id", created.UserID).Msg("order created")
	return created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, requester models.User, orderID int64) (models.Order, error) {
	order, err := s.existingOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.ownedBy(ctx, order, requester, permissions.ActionRead); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, requester models.User) ([]models.Order, error) {
	d := s.perms.Can(requester.Role, permissions.ActionReadAll, permissions.ResourceOrder, permissions.Context{
		RequesterEmail: requester.Email,
	})
	if !d.Granted {
		return nil, ErrPermissionDenied
	}
	return s.orders.List(ctx)
}

func (s *OrderService) ListOrdersByUser(ctx context.Context, requester models.User, userID int64) ([]models.Order, error) {
	owner, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := s.perms.Can(requester.Role, permissions.ActionRead, permissions.ResourceOrder, permissions.Context{
		RequesterEmail: requester.Email,
		OwnerEmail:     owner.Email,
	})
	if !d.Granted {
		return nil, ErrPermissionDenied
	}
	return s.orders.ListByUser(ctx, userID)
}

// CreatePaymentSession runs the payment guards and asks the provider for a
// fresh hosted-checkout session. Repeated calls on an unpaid order each
// mint a new session; a paid order never reaches the provider.
func (s *OrderService) CreatePaymentSession(ctx context.Context, requester models.User, orderID int64) (string, error) {
	order, err := s.paymentGuards(ctx, requester, orderID)
	if err != nil {
		return "", err
	}

	lines, err := s.orders.Lines(ctx, order.ID)
	if err != nil {
		return "", err
	}

	items := make([]payment.LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, payment.LineItem{
			Name:     line.Product.Title,
			Amount:   int64(math.Round(line.Product.Price * 100)), // minor units
			Quantity: line.Quantity,
		})
	}

	reference := fmt.Sprintf("order-%d-%s", order.ID, ids.New())
	session, err := s.checkout.CreateSession(ctx, reference, items)
	if err != nil {
		return "", err
	}

	s.log.Info().Int64("order_id", order.ID).Str("session_id", session.ID).Msg("checkout session created")
	return session.URL, nil
}

// CompletePayment runs the payment guards and flips the paid flag through
// the store's compare-and-set. A concurrent completion that loses the race
// surfaces as ErrAlreadyPaid, never as a second success.
func (s *OrderService) CompletePayment(ctx context.Context, requester models.User, orderID int64) error {
	order, err := s.paymentGuards(ctx, requester, orderID)
	if err != nil {
		return err
	}

	if err := s.orders.MarkPaid(ctx, order.ID); err != nil {
		return err
	}

	s.log.Info().Int64("order_id", order.ID).Msg("payment completed")
	return nil
}

// paymentGuards is the fixed guard sequence for payment operations:
// existence, then ownership, then paid state. The order decides which error
// a caller sees for ambiguous inputs (a paid order that is not theirs
// reports permission denied, not already-paid), so every payment path goes
// through this one chain rather than repeating the checks inline.
func (s *OrderService) paymentGuards(ctx context.Context, requester models.User, orderID int64) (models.Order, error) {
	order, err := s.existingOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.ownedBy(ctx, order, requester, permissions.ActionPay); err != nil {
		return models.Order{}, err
	}
	if order.Paid {
		return models.Order{}, repository.ErrAlreadyPaid
	}
	return order, nil
}

func (s *OrderService) existingOrder(ctx context.Context, orderID int64) (models.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *OrderService) ownedBy(ctx context.Context, order models.Order, requester models.User, action permissions.Action) error {
	owner, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// orphaned order: nobody can claim ownership of it
			return ErrPermissionDenied
		}
		return err
	}

	d := s.perms.Can(requester.Role, action, permissions.ResourceOrder, permissions.Context{
		RequesterEmail: requester.Email,
		OwnerEmail:     owner.Email,
	})
	if !d.Granted {
		return ErrPermissionDenied
	}
	return nil
}
