package salesrpc

// Every response embeds Status. Business failures travel as Success=false
// with a message rather than as gRPC errors.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Status
	Token string `json:"token,omitempty"`
	Role  string `json:"role,omitempty"`
}

type ListSellablePartsRequest struct{}

type Part struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
	Price string `json:"price"`
}

type ListSellablePartsResponse struct {
	Status
	Parts []Part `json:"parts,omitempty"`
}

type SaleRequest struct {
	RequestID     string `json:"request_id,omitempty"`
	PartID        string `json:"part_id"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

type Reorder struct {
	PartID   string `json:"part_id"`
	OldStock int    `json:"old_stock"`
	NewStock int    `json:"new_stock"`
}

type SaleResponse struct {
	Status
	SaleID         string    `json:"sale_id,omitempty"`
	Amount         string    `json:"amount,omitempty"`
	RemainingStock int       `json:"remaining_stock"`
	Reorders       []Reorder `json:"reorders,omitempty"`
}
