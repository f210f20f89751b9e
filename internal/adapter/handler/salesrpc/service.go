package salesrpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName = "aspas.sales.v1.SalesCounter"

	// TokenMetadataKey carries the session token issued by Login.
	TokenMetadataKey = "x-session-token"
)

// SalesCounterServer is the point-of-sale surface: log in, pick a part,
// ring up a sale.
type SalesCounterServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ListSellableParts(context.Context, *ListSellablePartsRequest) (*ListSellablePartsResponse, error)
	RecordSale(context.Context, *SaleRequest) (*SaleResponse, error)
	RecordCustomerSale(context.Context, *SaleRequest) (*SaleResponse, error)
}

func RegisterSalesCounterServer(s grpc.ServiceRegistrar, srv SalesCounterServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SalesCounterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: loginHandler},
		{MethodName: "ListSellableParts", Handler: listSellablePartsHandler},
		{MethodName: "RecordSale", Handler: recordSaleHandler},
		{MethodName: "RecordCustomerSale", Handler: recordCustomerSaleHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "aspas/sales/v1",
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req any, Resp any](
	name string,
	call func(SalesCounterServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SalesCounterServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SalesCounterServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	loginHandler = unary("Login", SalesCounterServer.Login)

	listSellablePartsHandler = unary("ListSellableParts", SalesCounterServer.ListSellableParts)

	recordSaleHandler = unary("RecordSale", SalesCounterServer.RecordSale)

	recordCustomerSaleHandler = unary("RecordCustomerSale", SalesCounterServer.RecordCustomerSale)
)
