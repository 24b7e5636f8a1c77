package types

// Product is one catalog entry in products.json
type Product struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	PriceKsh Number `json:"price_ksh"`
	Quantity Number `json:"quantity"`
	Unit     string `json:"unit"`
	Image    string `json:"image"`
	Verified bool   `json:"verified"`
}

// ProductInput is the body of POST /products/add and PATCH
// /products/update/{id}; on update, zero fields keep the stored value.
type ProductInput struct {
	Name     string `json:"name"`
	PriceKsh Number `json:"price_ksh"`
	Quantity Number `json:"quantity"`
	Unit     string `json:"unit"`
	Image    string `json:"image"`
}

// Account is a farmer, admin or distributor login record
type Account struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Location string `json:"location,omitempty"`
}

// Public returns a copy without the password.
func (a Account) Public() Account {
	a.Password = ""
	return a
}

const (
	UserRoleBuyer    = "buyer"
	UserStatusActive = "Active"
)

// User is a buyer account in users.json
type User struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// Public returns a copy without the password.
func (u User) Public() User {
	u.Password = ""
	return u
}

// SignupInput is the body of POST /users/signup
type SignupInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

const OrderStatusPending = "Pending"

// Order is one entry in orders.json
type Order struct {
	ID          int    `json:"id"`
	Product     string `json:"product"`
	Quantity    Number `json:"quantity"`
	Buyer       string `json:"buyer"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Status      string `json:"status"`
	Farmer      string `json:"farmer"`
	Distributor string `json:"distributor"`
	OrderDate   string `json:"order_date,omitempty"`
}

// OrderInput is the body of POST /orders/place
type OrderInput struct {
	Product   string `json:"product"`
	Quantity  Number `json:"quantity"`
	Buyer     string `json:"buyer"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Farmer    string `json:"farmer"`
	OrderDate string `json:"order_date"`
}

// OrderStatusUpdate is the body of POST /orders/distributor/update
type OrderStatusUpdate struct {
	ID          int    `json:"id"`
	Status      string `json:"status"`
	Distributor string `json:"distributor"`
}
