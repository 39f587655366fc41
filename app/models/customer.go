package models

import "time"

// Customer mirrors a customer created at the billing gateway. Rows are only
// written after the gateway returned an id and are never deleted.
type Customer struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	AsaasCustomerID string    `gorm:"column:asaas_customer_id;type:varchar(255);not null;uniqueIndex" json:"asaasCustomerId"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Email           string    `gorm:"type:varchar(255);not null;index" json:"email"`
	CpfCnpj         string    `gorm:"column:cpf_cnpj;type:varchar(20);not null" json:"cpfCnpj"`
	Phone           string    `gorm:"type:varchar(20);not null" json:"phone"`
	PostalCode      *string   `gorm:"type:varchar(10)" json:"postalCode"`
	Address         *string   `gorm:"type:varchar(255)" json:"address"`
	AddressNumber   *string   `gorm:"type:varchar(20)" json:"addressNumber"`
	Complement      *string   `gorm:"type:varchar(255)" json:"complement"`
	Province        *string   `gorm:"type:varchar(100)" json:"province"`
	City            *string   `gorm:"type:varchar(100)" json:"city"`
	State           *string   `gorm:"type:varchar(2)" json:"state"`
	Password        string    `gorm:"type:varchar(255)" json:"-"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Subscriptions []Subscription `gorm:"foreignKey:CustomerID" json:"-"`
}

// HasPortalAccess reports whether an admin has set a portal password.
func (c *Customer) HasPortalAccess() bool {
	return c.Password != ""
}

// SetPassword hashes and stores the customer portal password.
func (c *Customer) SetPassword(password string) error {
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	c.Password = hashed
	return nil
}

// CheckPassword verifies a portal password. Customers without one never match.
func (c *Customer) CheckPassword(password string) bool {
	if c.Password == "" {
		return false
	}
	return CheckPasswordHash(password, c.Password)
}
