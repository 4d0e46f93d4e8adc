package enum

// ── Order lifecycle ──

const (
	OrderStatusPending   = "pending"   // en cola
	OrderStatusCooking   = "cooking"   // cocinando
	OrderStatusReady     = "ready"     // listo para cobrar
	OrderStatusPaid      = "paid"      // pagado
	OrderStatusCancelled = "cancelled" // cancelado
)

// ── Payment methods ──

const (
	PaymentMethodEfectivo = "efectivo"
	PaymentMethodYape     = "yape"
)

// ── Staff roles ──

const (
	RoleAdmin    = "admin"
	RoleMesero   = "mesero"
	RoleCajero   = "cajero"
	RoleChef     = "chef"
	RoleAyudante = "ayudante"
)

// IsValidRole reports whether s names a known staff role.
func IsValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleMesero, RoleCajero, RoleChef, RoleAyudante:
		return true
	}
	return false
}

// IsValidPaymentMethod reports whether s names a supported payment method.
func IsValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodEfectivo, PaymentMethodYape:
		return true
	}
	return false
}

// IsValidOrderStatus reports whether s names a known order status.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusCooking, OrderStatusReady,
		OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}
