package customers

import "github.com/shopspring/decimal"

// Customer is the single customer record referenced by sales and invoices.
type Customer struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Contact     string          `json:"contact"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type CustomerInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Contact     string          `json:"contact" validate:"max=100"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Phone       string          `json:"phone" validate:"max=50"`
	Address     string          `json:"address"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

func (in CustomerInput) toCustomer(id int64) Customer {
	return Customer{
		ID:          id,
		Name:        in.Name,
		Contact:     in.Contact,
		Email:       in.Email,
		Phone:       in.Phone,
		Address:     in.Address,
		CreditLimit: in.CreditLimit,
		Outstanding: in.Outstanding,
	}
}

// AvailableCredit is the remaining headroom under the credit limit.
func (c Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.Outstanding)
}
