package handler

import (
	"context"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/aspas/internal/adapter/handler/salesrpc"
	"github.com/rl1809/aspas/internal/core/domain"
)

func newRPCClient(t *testing.T) (*salesrpc.Client, Services) {
	t.Helper()

	svc := newTestServices(t)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryLogging()))
	salesrpc.RegisterSalesCounterServer(srv, NewGRPCHandler(svc))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return salesrpc.NewClient(conn), svc
}

func TestGRPC_SaleFlow(t *testing.T) {
	client, svc := newRPCClient(t)
	ctx := context.Background()

	id, err := svc.Inventory.AddPart(ctx, domain.Session{Username: "admin", Role: domain.RoleAdmin}, domain.NewPart{
		Name: "Wiper blade", Stock: 10, Price: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	parts, err := client.ListSellableParts(ctx)
	require.NoError(t, err)
	assert.False(t, parts.Success, "calls before login carry no session")
	assert.Equal(t, "unauthorized", parts.Message)

	login, err := client.Login(ctx, "employee1", "emp123")
	require.NoError(t, err)
	require.True(t, login.Success)
	assert.Equal(t, "employee", login.Role)

	parts, err = client.ListSellableParts(ctx)
	require.NoError(t, err)
	require.True(t, parts.Success)
	require.Len(t, parts.Parts, 1)
	assert.Equal(t, "50.00", parts.Parts[0].Price)

	sale, err := client.RecordSale(ctx, &salesrpc.SaleRequest{PartID: id, Quantity: 3, PaymentMethod: "UPI"})
	require.NoError(t, err)
	require.True(t, sale.Success, sale.Message)
	assert.Equal(t, "150.00", sale.Amount)
	assert.Equal(t, 7, sale.RemainingStock)

	sale, err = client.RecordCustomerSale(ctx, &salesrpc.SaleRequest{PartID: id, Quantity: 8})
	require.NoError(t, err)
	assert.False(t, sale.Success)
	assert.Equal(t, "insufficient stock", sale.Message)

	sale, err = client.RecordCustomerSale(ctx, &salesrpc.SaleRequest{PartID: id, Quantity: 7})
	require.NoError(t, err)
	require.True(t, sale.Success)
	assert.Empty(t, sale.Amount)
	assert.Zero(t, sale.RemainingStock)
}

func TestGRPC_LoginRejected(t *testing.T) {
	client, _ := newRPCClient(t)

	resp, err := client.Login(context.Background(), "admin", "wrong")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Token)
}
