package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/internal/model"
	"github.com/yizhaofeng1/ai-trader/internal/repository"
	"github.com/yizhaofeng1/ai-trader/pkg/common"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"
	"github.com/yizhaofeng1/ai-trader/pkg/utils"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBrokerNotConfigured = errors.New("broker credentials not configured for live trading")
)

const simulatedCommission = 5.0

// OrderService executes orders against either the virtual paper ledger or the
// real broker API, depending on the account's simulation flag.
type OrderService interface {
	PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest) (*model.PaperOrder, error)
	GetAccount(ctx context.Context, userID uint) (*model.VirtualAccount, error)
	GetOrders(ctx context.Context, userID uint, limit int) ([]model.PaperOrder, error)
}

type orderService struct {
	cfg         *config.Config
	log         *logger.Logger
	accountRepo repository.AccountRepository
	brokerRepo  repository.BrokerRepository
	uow         repository.UnitOfWork
}

func NewOrderService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) OrderService {
	return &orderService{
		cfg:         cfg,
		log:         log,
		accountRepo: repo.AccountRepo,
		brokerRepo:  repo.BrokerRepo,
		uow:         repo.UnitOfWork,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest) (*model.PaperOrder, error) {
	account, err := s.accountRepo.GetOrCreate(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account.IsSimulation {
		return s.placeSimulated(ctx, account, req)
	}
	return s.placeLive(ctx, account, req)
}

// placeSimulated fills against the virtual balance. Balance check and
// deduction happen in one transaction with the order row so a rejected order
// never moves money.
func (s *orderService) placeSimulated(ctx context.Context, account *model.VirtualAccount, req dto.PlaceOrderRequest) (*model.PaperOrder, error) {
	order := &model.PaperOrder{
		UserID:           req.UserID,
		AnalysisRecordID: req.AnalysisRecordID,
		Symbol:           req.Symbol,
		Direction:        req.Direction,
		Quantity:         req.Quantity,
		Price:            req.Price,
		StopLoss:         req.StopLoss,
		TakeProfit:       req.TakeProfit,
		Status:           model.OrderStatusFilled,
		Commission:       simulatedCommission,
	}

	err := s.uow.Run(func(opts ...utils.DBOption) error {
		cost := req.Price*float64(req.Quantity) + simulatedCommission

		switch req.Direction {
		case common.DIRECTION_BUY:
			if account.Balance < cost {
				return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, cost, account.Balance)
			}
			account.Balance -= cost
		case common.DIRECTION_SELL:
			account.Balance += req.Price*float64(req.Quantity) - simulatedCommission
		default:
			return fmt.Errorf("unknown order direction %q", req.Direction)
		}

		if err := s.accountRepo.UpdateBalance(ctx, account.ID, account.Balance, opts...); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
		if err := s.accountRepo.CreateOrder(ctx, order, opts...); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Simulated order filled",
		logger.StringField("symbol", order.Symbol),
		logger.StringField("direction", order.Direction),
		logger.IntField("quantity", order.Quantity),
	)
	return order, nil
}

// placeLive forwards the order to the broker and records the accepted order
// locally. The broker owns the money, so no balance bookkeeping here.
func (s *orderService) placeLive(ctx context.Context, account *model.VirtualAccount, req dto.PlaceOrderRequest) (*model.PaperOrder, error) {
	if account.BrokerAppID == "" || account.BrokerAppSecret == "" || account.BrokerCustomerID == "" {
		return nil, ErrBrokerNotConfigured
	}

	creds := dto.BrokerCredentials{
		AppID:      account.BrokerAppID,
		AppSecret:  account.BrokerAppSecret,
		CustomerID: account.BrokerCustomerID,
	}
	result, err := s.brokerRepo.PlaceOrder(ctx, creds, dto.BrokerOrder{
		Symbol:    req.Symbol,
		Direction: req.Direction,
		Quantity:  req.Quantity,
		Price:     req.Price,
	})
	if err != nil {
		s.log.ErrorContextWithAlert(ctx, "Broker order failed", logger.ErrorField(err), logger.StringField("symbol", req.Symbol))
		return nil, fmt.Errorf("broker rejected order: %w", err)
	}

	order := &model.PaperOrder{
		UserID:           req.UserID,
		AnalysisRecordID: req.AnalysisRecordID,
		Symbol:           req.Symbol,
		Direction:        req.Direction,
		Quantity:         req.Quantity,
		Price:            req.Price,
		StopLoss:         req.StopLoss,
		TakeProfit:       req.TakeProfit,
		Status:           model.OrderStatusPending,
		Commission:       0,
	}
	if err := s.accountRepo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("broker accepted order %s but local record failed: %w", result.OrderID, err)
	}

	s.log.InfoContext(ctx, "Live order placed",
		logger.StringField("symbol", order.Symbol),
		logger.StringField("broker_order_id", result.OrderID),
	)
	return order, nil
}

func (s *orderService) GetAccount(ctx context.Context, userID uint) (*model.VirtualAccount, error) {
	return s.accountRepo.GetOrCreate(ctx, userID)
}

func (s *orderService) GetOrders(ctx context.Context, userID uint, limit int) ([]model.PaperOrder, error) {
	return s.accountRepo.GetOrders(ctx, userID, limit)
}
