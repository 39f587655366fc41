package usercontext

// Locals keys shared by middlewares and controllers
const (
	KeyUserContext     = "USER_CONTEXT"
	KeyCustomerContext = "CUSTOMER_CONTEXT"
)
