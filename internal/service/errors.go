package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrSaleNotFound is returned when a sale is not found
	ErrSaleNotFound = errors.New("sale not found")

	// ErrInvalidSale is returned when a sale cannot be created from the request
	ErrInvalidSale = errors.New("invalid sale")

	// ErrAdvisorPeriodNotFound is returned when no period exists for the advisor
	ErrAdvisorPeriodNotFound = errors.New("advisor period not found")

	// ErrInvalidAdvisorPeriod is returned when period figures are inconsistent
	ErrInvalidAdvisorPeriod = errors.New("invalid advisor period")

	// ErrTierDocumentNotFound is returned when the tier table document does not exist in storage
	ErrTierDocumentNotFound = errors.New("tier document not found")

	// ErrDataWarehouseUnavailable is returned when a sync is requested without a warehouse connection
	ErrDataWarehouseUnavailable = errors.New("data warehouse not available")
)
