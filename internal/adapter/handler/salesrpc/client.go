package salesrpc

import (
	"context"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls a SalesCounter server over an existing connection. After a
// successful Login the session token is attached to every later call.
type Client struct {
	cc grpc.ClientConnInterface

	mu    sync.RWMutex
	token string
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, "Login", &LoginRequest{Username: username, Password: password}, out); err != nil {
		return nil, err
	}
	if out.Success {
		c.mu.Lock()
		c.token = out.Token
		c.mu.Unlock()
	}
	return out, nil
}

func (c *Client) ListSellableParts(ctx context.Context) (*ListSellablePartsResponse, error) {
	out := new(ListSellablePartsResponse)
	if err := c.invoke(ctx, "ListSellableParts", &ListSellablePartsRequest{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RecordSale(ctx context.Context, req *SaleRequest) (*SaleResponse, error) {
	out := new(SaleResponse)
	if err := c.invoke(ctx, "RecordSale", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RecordCustomerSale(ctx context.Context, req *SaleRequest) (*SaleResponse, error) {
	out := new(SaleResponse)
	if err := c.invoke(ctx, "RecordCustomerSale", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, TokenMetadataKey, token)
	}
	return c.cc.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(CodecName))
}
