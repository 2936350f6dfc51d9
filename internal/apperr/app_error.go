package apperr

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/pkg/zerror"
)

const (
	ValidationErrorCode       = "VALIDATION_FAILED"
	UnauthorizedCode          = "UNAUTHORIZED"
	ForbiddenCode             = "FORBIDDEN"
	InvalidCredentialsCode    = "INVALID_CREDENTIALS"
	AccountDisabledCode       = "ACCOUNT_DISABLED"
	EmailTakenCode            = "EMAIL_TAKEN"
	ProductNotFoundCode       = "PRODUCT_NOT_FOUND"
	ProductUnavailableCode    = "PRODUCT_UNAVAILABLE"
	InsufficientStockCode     = "INSUFFICIENT_STOCK"
	CartEmptyCode             = "CART_EMPTY"
	CartItemNotFoundCode      = "CART_ITEM_NOT_FOUND"
	SaleNotFoundCode          = "SALE_NOT_FOUND"
	UserNotFoundCode          = "USER_NOT_FOUND"
	SelfManagementCode        = "SELF_MANAGEMENT"
	RoleChangeForbiddenCode   = "ROLE_CHANGE_FORBIDDEN"
	AdminDeleteForbiddenCode  = "ADMIN_DELETE_FORBIDDEN"
	InvalidStaffRoleCode      = "INVALID_STAFF_ROLE"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	UnauthorizedErr = zerror.NewUnauthorized(UnauthorizedCode, "Not authorized. Please login first.")
	ForbiddenErr    = zerror.NewForbidden(ForbiddenCode, "Access denied")

	InvalidCredentialsErr = zerror.NewUnauthorized(InvalidCredentialsCode, "Invalid email or password")
	AccountDisabledErr    = zerror.NewUnauthorized(AccountDisabledCode, "Your account has been deactivated. Please contact admin.")
	EmailTakenErr         = zerror.NewBadRequest(EmailTakenCode, "Email already registered")

	ProductNotFoundErr  = zerror.NewNotFound(ProductNotFoundCode, "Product not found")
	ProductInactiveErr  = zerror.NewNotFound(ProductUnavailableCode, "Product not available")
	CartEmptyErr        = zerror.NewBadRequest(CartEmptyCode, "Cart is empty")
	CartItemNotFoundErr = zerror.NewNotFound(CartItemNotFoundCode, "Product not found in cart")
	SaleNotFoundErr     = zerror.NewNotFound(SaleNotFoundCode, "Sale not found")
	UserNotFoundErr     = zerror.NewNotFound(UserNotFoundCode, "User not found")

	SaleViewForbiddenErr = zerror.NewForbidden(ForbiddenCode, "Not authorized to view this sale")

	SelfEditErr    = zerror.NewBadRequest(SelfManagementCode, "You cannot edit your own account from here")
	SelfDisableErr = zerror.NewBadRequest(SelfManagementCode, "You cannot disable your own account")
	SelfDeleteErr  = zerror.NewBadRequest(SelfManagementCode, "You cannot delete your own account")

	RoleChangeForbiddenErr  = zerror.NewBadRequest(RoleChangeForbiddenCode, "Cannot change customer role to admin or staff")
	AdminDeleteForbiddenErr = zerror.NewBadRequest(AdminDeleteForbiddenCode, "Cannot delete admin accounts")
	InvalidStaffRoleErr     = zerror.NewBadRequest(InvalidStaffRoleCode, "Invalid role. Only staff or admin allowed")
)

// NewProductUnavailable reports a product that exists in a cart or sale
// request but can no longer be sold.
func NewProductUnavailable(name string) zerror.ZError {
	return zerror.NewBadRequest(ProductUnavailableCode, fmt.Sprintf("Product %s is not available", name))
}

// NewProductGone reports a product reference that no longer resolves at all.
func NewProductGone(id uuid.UUID) zerror.ZError {
	return zerror.NewBadRequest(ProductUnavailableCode, fmt.Sprintf("Product with ID %s not found", id))
}

// NewInsufficientStock reports how much stock is actually available.
func NewInsufficientStock(available int) zerror.ZError {
	return zerror.NewBadRequest(InsufficientStockCode, fmt.Sprintf("Only %d items available in stock", available))
}
