// Package application 编排结账流程：发起托管支付会话与订单物化。
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	cartdomain "github.com/wyfcoding/marketplace/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/marketplace/internal/catalog/domain"
	"github.com/wyfcoding/marketplace/internal/checkout/domain"
	orderdomain "github.com/wyfcoding/marketplace/internal/order/domain"
	pricing "github.com/wyfcoding/marketplace/internal/pricing/domain"
	userapp "github.com/wyfcoding/marketplace/internal/user/application"
	"github.com/wyfcoding/marketplace/pkg/config"
	"github.com/wyfcoding/marketplace/pkg/contextx"
	"github.com/wyfcoding/marketplace/pkg/logger"
	"github.com/wyfcoding/marketplace/pkg/metrics"
)

// webhook 事件类型
const eventCheckoutCompleted = "checkout.session.completed"

// CheckoutService 结账服务。BeginCheckout 发起托管支付会话；
// MaterializeSession 是订单物化的唯一入口，成功回调和 webhook 都走它。
type CheckoutService struct {
	carts     cartdomain.Repository
	products  catalogdomain.ProductRepository
	orders    orderdomain.OrderRepository
	users     *userapp.UserService
	gateway   domain.PaymentGateway
	pending   domain.PendingSessionRepository
	publisher orderdomain.EventPublisher
	metrics   *metrics.Metrics
	payment   config.PaymentConfig
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(
	carts cartdomain.Repository,
	products catalogdomain.ProductRepository,
	orders orderdomain.OrderRepository,
	users *userapp.UserService,
	gateway domain.PaymentGateway,
	pending domain.PendingSessionRepository,
	publisher orderdomain.EventPublisher,
	m *metrics.Metrics,
	payment config.PaymentConfig,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		products:  products,
		orders:    orders,
		users:     users,
		gateway:   gateway,
		pending:   pending,
		publisher: publisher,
		metrics:   m,
		payment:   payment,
	}
}

// CheckoutForm 结账页初始数据：联系信息预填 + 当前购物车
type CheckoutForm struct {
	Initial domain.OrderForm `json:"initial"`
}

// GetCheckoutForm 组装结账表单初始数据。认证用户预填邮箱和默认收货地址。
func (s *CheckoutService) GetCheckoutForm(ctx context.Context, userID *uint) (*CheckoutForm, error) {
	form := &CheckoutForm{}
	if userID == nil {
		return form, nil
	}
	user, err := s.users.GetProfile(ctx, *userID)
	if err != nil {
		return nil, err
	}
	form.Initial.Email = user.Email

	address, err := s.users.DefaultAddress(ctx, *userID)
	if err != nil {
		return nil, err
	}
	if address != nil {
		form.Initial.FullName = address.FullName
		form.Initial.Address = address.Address
		form.Initial.City = address.City
		form.Initial.State = address.State
		form.Initial.PostalCode = address.PostalCode
		form.Initial.Country = address.Country
		form.Initial.Phone = address.Phone
	}
	return form, nil
}

// BeginCheckout 发起托管支付会话。购物车条目在此刻按请求者类别锁价，
// 锁定的快照随会话元数据往返，物化阶段不再重新询价。
func (s *CheckoutService) BeginCheckout(
	ctx context.Context,
	browserSessionID string,
	userID *uint,
	category pricing.Category,
	form domain.OrderForm,
) (*domain.Session, error) {
	if err := form.Validate(); err != nil {
		s.metrics.CheckoutFailuresTotal.Inc()
		return nil, err
	}

	cart, err := s.carts.Get(ctx, browserSessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		s.metrics.CheckoutFailuresTotal.Inc()
		return nil, domain.ErrEmptyCart
	}

	keys := make([]string, 0, cart.Len())
	for k := range cart.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		snapshot  []domain.SnapshotEntry
		lineItems []domain.LineItem
	)
	for _, key := range keys {
		entry := cart.Entries[key]
		product, err := s.products.GetByID(ctx, entry.ProductID)
		if err != nil {
			if errors.Is(err, catalogdomain.ErrProductNotFound) {
				continue
			}
			return nil, err
		}
		unit := pricing.Quote(product.Price, category)
		snapshot = append(snapshot, domain.SnapshotEntry{
			ProductID: entry.ProductID,
			Name:      product.Name,
			Quantity:  entry.Quantity,
			UnitPrice: unit,
			Size:      entry.Size,
			Color:     entry.Color,
		})
		lineItems = append(lineItems, domain.LineItem{
			Name:       product.Name,
			UnitAmount: pricing.MinorUnits(unit),
			Quantity:   entry.Quantity,
			Currency:   s.payment.Currency,
		})
	}
	if len(snapshot) == 0 {
		s.metrics.CheckoutFailuresTotal.Inc()
		return nil, domain.ErrNoValidItems
	}

	orderData, err := json.Marshal(form)
	if err != nil {
		return nil, err
	}
	cartData, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateSession(ctx, domain.CreateSessionRequest{
		LineItems:     lineItems,
		SuccessURL:    s.payment.SuccessURL,
		CancelURL:     s.payment.CancelURL,
		CustomerEmail: form.Email,
		Metadata: map[string]string{
			domain.MetadataOrderData: string(orderData),
			domain.MetadataCart:      string(cartData),
		},
	})
	if err != nil {
		s.metrics.CheckoutFailuresTotal.Inc()
		return nil, err
	}

	if err := s.pending.Stash(ctx, browserSessionID, session.ID); err != nil {
		return nil, err
	}

	if form.SaveAddress && userID != nil {
		if _, err := s.users.AddAddress(ctx, userapp.AddAddressCommand{
			UserID:     *userID,
			FullName:   form.FullName,
			Address:    form.Address,
			City:       form.City,
			State:      form.State,
			PostalCode: form.PostalCode,
			Country:    form.Country,
			Phone:      form.Phone,
			SetDefault: form.SetDefault,
		}); err != nil {
			// 存地址失败不阻断支付流程
			logger.Warn(ctx, "failed to save shipping address during checkout",
				"user_id", *userID, "error", err)
		}
	}

	s.metrics.CheckoutSessionsTotal.Inc()
	logger.Info(ctx, "checkout session created",
		"session_id", session.ID,
		"items", len(snapshot),
	)
	return session, nil
}

// CompleteFromCallback 成功回调：取出暂存的会话 ID（单次有效）并物化订单，
// 然后清空购物车。
func (s *CheckoutService) CompleteFromCallback(ctx context.Context, browserSessionID string, userID *uint) (*orderdomain.Order, error) {
	sessionID, err := s.pending.Pop(ctx, browserSessionID)
	if err != nil {
		return nil, err
	}

	order, err := s.MaterializeSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, browserSessionID); err != nil {
		logger.Warn(ctx, "failed to clear cart after checkout", "session_id", browserSessionID, "error", err)
	}
	return order, nil
}

// HandleWebhook 校验签名并处理网关回调事件
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := s.gateway.VerifyWebhook(payload, signature); err != nil {
		return err
	}
	s.metrics.WebhookEventsTotal.Inc()

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID string `json:"id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode webhook event: %w", err)
	}

	if event.Type != eventCheckoutCompleted {
		logger.Debug(ctx, "ignoring webhook event", "type", event.Type)
		return nil
	}
	_, err := s.MaterializeSession(ctx, event.Data.Object.ID, nil)
	return err
}

// MaterializeSession 幂等地把已支付的会话物化为订单。已存在同会话订单时
// 直接返回该订单。订单行、库存扣减和事件发布在同一事务内完成；任一商品
// 库存不足则整个事务回滚。
func (s *CheckoutService) MaterializeSession(ctx context.Context, sessionID string, userID *uint) (*orderdomain.Order, error) {
	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.orders.GetBySessionID(ctx, session.ID); err == nil {
		logger.Info(ctx, "checkout session already materialized", "session_id", session.ID, "order_no", existing.OrderNo)
		return existing, nil
	} else if !errors.Is(err, orderdomain.ErrOrderNotFound) {
		return nil, err
	}

	var form domain.OrderForm
	if err := json.Unmarshal([]byte(session.Metadata[domain.MetadataOrderData]), &form); err != nil {
		return nil, fmt.Errorf("decode order metadata: %w", err)
	}
	var snapshot []domain.SnapshotEntry
	if err := json.Unmarshal([]byte(session.Metadata[domain.MetadataCart]), &snapshot); err != nil {
		return nil, fmt.Errorf("decode cart metadata: %w", err)
	}

	order := &orderdomain.Order{
		OrderNo:         orderdomain.NewOrderNo(),
		UserID:          userID,
		Email:           form.Email,
		FullName:        form.FullName,
		Address:         form.Address,
		City:            form.City,
		State:           form.State,
		PostalCode:      form.PostalCode,
		Country:         form.Country,
		Phone:           form.Phone,
		Status:          orderdomain.StatusProcessing,
		TotalAmount:     pricing.FromMinorUnits(session.AmountTotal),
		StripePaymentID: session.PaymentIntent,
		StripeSessionID: session.ID,
	}

	err = s.orders.WithTx(ctx, func(txCtx context.Context) error {
		for _, entry := range snapshot {
			err := s.products.DecrementStock(txCtx, entry.ProductID, entry.Quantity)
			if errors.Is(err, catalogdomain.ErrProductNotFound) {
				logger.Warn(txCtx, "product missing during order materialization",
					"product_id", entry.ProductID, "session_id", session.ID)
				continue
			}
			if err != nil {
				return err
			}
			order.Items = append(order.Items, orderdomain.OrderItem{
				ProductID: entry.ProductID,
				Name:      entry.Name,
				Price:     entry.UnitPrice,
				Quantity:  entry.Quantity,
				Size:      entry.Size,
				Color:     entry.Color,
			})
		}

		if err := s.orders.Save(txCtx, order); err != nil {
			return err
		}

		return s.publisher.PublishInTx(txCtx, contextx.GetTx(txCtx), orderdomain.TopicOrderPlaced, order.OrderNo, orderdomain.OrderPlacedEvent{
			OrderNo:     order.OrderNo,
			UserID:      order.UserID,
			Email:       order.Email,
			TotalAmount: order.TotalAmount.String(),
			ItemCount:   len(order.Items),
			SessionID:   order.StripeSessionID,
		})
	})
	if err != nil {
		// 并发物化同一会话时输掉竞争的一方撞唯一索引，按已处理返回
		if existing, lookupErr := s.orders.GetBySessionID(ctx, session.ID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}

	s.metrics.OrdersTotal.Inc()
	logger.Info(ctx, "order materialized",
		"order_no", order.OrderNo,
		"session_id", session.ID,
		"total", order.TotalAmount.String(),
	)
	return order, nil
}
