package dto

// RecordMovementRequest records a stock ledger movement
type RecordMovementRequest struct {
	WarehouseID    string `json:"warehouse_id" binding:"required,uuid"`
	ProductID      string `json:"product_id" binding:"required,uuid"`
	ProductName    string `json:"product_name" binding:"required,max=100"`
	Direction      string `json:"direction" binding:"required,oneof=IN OUT"`
	Quantity       string `json:"quantity" binding:"required"`
	ValuatedAmount string `json:"valuated_amount" binding:"required"`
	Code           string `json:"code" binding:"omitempty,max=50"`
	Notes          string `json:"notes" binding:"omitempty,max=255"`
}

// BalanceRequest queries the derived balance for a warehouse-product pair
type BalanceRequest struct {
	WarehouseID string `form:"warehouse_id" binding:"required,uuid"`
	ProductID   string `form:"product_id" binding:"required,uuid"`
	AsOf        string `form:"as_of" binding:"omitempty"` // RFC3339
}

// CreateContractRequest creates a rental contract in DRAFT status
type CreateContractRequest struct {
	ContractNumber string `json:"contract_number" binding:"required,max=50"`
	CustomerID     string `json:"customer_id" binding:"required,uuid"`
	CustomerName   string `json:"customer_name" binding:"required,max=100"`
	MonthlyRate    string `json:"monthly_rate" binding:"required"`
}

// TransitionRequest moves a lifecycle entity to a target status
type TransitionRequest struct {
	Target string `json:"target" binding:"required,max=30"`
	Note   string `json:"note" binding:"omitempty,max=255"`
}

// CreateOrderRequest creates a sales order in DRAFT status
type CreateOrderRequest struct {
	OrderNumber string                   `json:"order_number" binding:"required,max=50"`
	CustomerID  string                   `json:"customer_id" binding:"required,uuid"`
	WarehouseID string                   `json:"warehouse_id" binding:"required,uuid"`
	Items       []CreateOrderItemRequest `json:"items" binding:"omitempty,dive"`
}

// CreateOrderItemRequest is a line item in an order creation request
type CreateOrderItemRequest struct {
	ProductID   string `json:"product_id" binding:"required,uuid"`
	ProductName string `json:"product_name" binding:"required,max=100"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

// AddOrderItemRequest appends a line item to a draft order
type AddOrderItemRequest struct {
	ProductID   string `json:"product_id" binding:"required,uuid"`
	ProductName string `json:"product_name" binding:"required,max=100"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

// ApplyDiscountRequest applies a percent or amount discount to a draft order
type ApplyDiscountRequest struct {
	Kind  string `json:"kind" binding:"required,oneof=percent amount"`
	Value string `json:"value" binding:"required"`
}

// CreateBranchRequest creates a branch
type CreateBranchRequest struct {
	Code    string `json:"code" binding:"required,max=20"`
	Name    string `json:"name" binding:"required,max=100"`
	Address string `json:"address" binding:"omitempty,max=255"`
}

// UpdateBranchRequest renames or re-activates a branch
type UpdateBranchRequest struct {
	Name     string `json:"name" binding:"omitempty,max=100"`
	IsActive *bool  `json:"is_active"`
}
