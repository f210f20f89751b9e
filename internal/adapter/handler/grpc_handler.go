package handler

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/samber/lo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/aspas/internal/adapter/handler/salesrpc"
	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/logger"
)

type GRPCHandler struct {
	svc Services
}

var _ salesrpc.SalesCounterServer = (*GRPCHandler)(nil)

func NewGRPCHandler(svc Services) *GRPCHandler {
	return &GRPCHandler{svc: svc}
}

func (h *GRPCHandler) Login(ctx context.Context, req *salesrpc.LoginRequest) (*salesrpc.LoginResponse, error) {
	sess, err := h.svc.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return &salesrpc.LoginResponse{Status: h.failure(ctx, err)}, nil
	}
	token, err := h.svc.Sessions.Start(sess)
	if err != nil {
		return &salesrpc.LoginResponse{Status: h.failure(ctx, err)}, nil
	}
	return &salesrpc.LoginResponse{
		Status: salesrpc.Status{Success: true, Message: "logged in"},
		Token:  token,
		Role:   string(sess.Role),
	}, nil
}

func (h *GRPCHandler) ListSellableParts(ctx context.Context, _ *salesrpc.ListSellablePartsRequest) (*salesrpc.ListSellablePartsResponse, error) {
	if _, err := h.session(ctx); err != nil {
		return &salesrpc.ListSellablePartsResponse{Status: h.failure(ctx, err)}, nil
	}

	parts, err := h.svc.Inventory.ListSellableParts(ctx)
	if err != nil {
		return &salesrpc.ListSellablePartsResponse{Status: h.failure(ctx, err)}, nil
	}
	return &salesrpc.ListSellablePartsResponse{
		Status: salesrpc.Status{Success: true, Message: "ok"},
		Parts: lo.Map(parts, func(p domain.Part, _ int) salesrpc.Part {
			return salesrpc.Part{ID: p.ID, Name: p.Name, Stock: p.Stock, Price: p.Price.StringFixed(2)}
		}),
	}, nil
}

func (h *GRPCHandler) RecordSale(ctx context.Context, req *salesrpc.SaleRequest) (*salesrpc.SaleResponse, error) {
	return h.recordSale(ctx, req, h.svc.Sales.RecordSale), nil
}

func (h *GRPCHandler) RecordCustomerSale(ctx context.Context, req *salesrpc.SaleRequest) (*salesrpc.SaleResponse, error) {
	return h.recordSale(ctx, req, h.svc.Sales.RecordCustomerSale), nil
}

func (h *GRPCHandler) recordSale(ctx context.Context, req *salesrpc.SaleRequest, record saleFunc) *salesrpc.SaleResponse {
	sess, err := h.session(ctx)
	if err != nil {
		return &salesrpc.SaleResponse{Status: h.failure(ctx, err)}
	}

	receipt, err := record(ctx, sess, domain.SaleRequest{
		PartID:        req.PartID,
		Quantity:      req.Quantity,
		PaymentMethod: req.PaymentMethod,
		RequestID:     req.RequestID,
	})
	if err != nil {
		return &salesrpc.SaleResponse{Status: h.failure(ctx, err)}
	}

	resp := &salesrpc.SaleResponse{
		Status:         salesrpc.Status{Success: true, Message: "sale recorded"},
		SaleID:         receipt.SaleID,
		RemainingStock: receipt.RemainingStock,
		Reorders: lo.Map(receipt.Reorders, func(e domain.ReorderEvent, _ int) salesrpc.Reorder {
			return salesrpc.Reorder{PartID: e.PartID, OldStock: e.OldStock, NewStock: e.NewStock}
		}),
	}
	if receipt.Amount.Valid {
		resp.Amount = receipt.Amount.Decimal.StringFixed(2)
	}
	return resp
}

func (h *GRPCHandler) session(ctx context.Context) (domain.Session, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	tokens := md.Get(salesrpc.TokenMetadataKey)
	if len(tokens) == 0 {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return h.svc.Sessions.Lookup(tokens[0])
}

func (h *GRPCHandler) failure(ctx context.Context, err error) salesrpc.Status {
	code, message := classify(err)
	if code == http.StatusInternalServerError {
		logger.Error(ctx, "grpc call failed", logger.ErrorF(err))
	}
	return salesrpc.Status{Success: false, Message: message}
}

// UnaryLogging logs method, status code and duration of every unary call.
func UnaryLogging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		method := path.Base(info.FullMethod)
		start := time.Now()

		resp, err := handler(ctx, req)

		d := time.Since(start)
		if err != nil {
			st, _ := status.FromError(err)
			logger.Warn(ctx, "grpc call",
				logger.String("method", method),
				logger.String("code", st.Code().String()),
				logger.Duration("duration", d),
				logger.ErrorF(err),
			)
			return resp, err
		}

		logger.Debug(ctx, "grpc call",
			logger.String("method", method),
			logger.String("code", "OK"),
			logger.Duration("duration", d),
		)
		return resp, nil
	}
}
