package persistence

import "strings"

// ValidateSortOrder normalizes the sort direction, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns defaultField if the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// ContractSortFields are the sortable columns of rental_contracts
var ContractSortFields = map[string]bool{
	"id":              true,
	"contract_number": true,
	"customer_name":   true,
	"monthly_rate":    true,
	"status":          true,
	"created_at":      true,
	"updated_at":      true,
}

// OrderSortFields are the sortable columns of sales_orders
var OrderSortFields = map[string]bool{
	"id":             true,
	"order_number":   true,
	"total_amount":   true,
	"payable_amount": true,
	"status":         true,
	"created_at":     true,
	"updated_at":     true,
}

// BranchSortFields are the sortable columns of branches
var BranchSortFields = map[string]bool{
	"id":         true,
	"code":       true,
	"name":       true,
	"created_at": true,
	"updated_at": true,
}
