package repository

import (
	"context"

	"github.com/ManuelReschke/SubDesk/app/models"
	"gorm.io/gorm"
)

// customerRepository implements the CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository instance
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return translateError(r.db.WithContext(ctx).Create(customer).Error)
}

func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByExternalID(ctx context.Context, asaasCustomerID string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("asaas_customer_id = ?", asaasCustomerID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetPortalAccountByEmail returns the most recent customer with the given email
// that has a portal password. Emails are not unique since a visitor may
// subscribe more than once, so rows without portal access are skipped.
func (r *customerRepository) GetPortalAccountByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("email = ? AND password IS NOT NULL AND password <> ''", email).
		Order("id DESC").
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update writes the mutable columns. The external id is never touched.
func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Updates(map[string]interface{}{
			"name":           customer.Name,
			"email":          customer.Email,
			"cpf_cnpj":       customer.CpfCnpj,
			"phone":          customer.Phone,
			"postal_code":    customer.PostalCode,
			"address":        customer.Address,
			"address_number": customer.AddressNumber,
			"complement":     customer.Complement,
			"province":       customer.Province,
			"city":           customer.City,
			"state":          customer.State,
			"password":       customer.Password,
		}).Error
	return translateError(err)
}

func (r *customerRepository) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&customers).Error
	return customers, err
}

// ListWithSubscriptionSummary joins every customer with its subscriptions.
// The active subscription is the most recently created ACTIVE one.
func (r *customerRepository) ListWithSubscriptionSummary(ctx context.Context) ([]CustomerWithSummary, error) {
	customers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return []CustomerWithSummary{}, nil
	}

	var subs []models.Subscription
	err = r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&subs).Error
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[uint][]models.Subscription, len(customers))
	for _, s := range subs {
		byCustomer[s.CustomerID] = append(byCustomer[s.CustomerID], s)
	}

	result := make([]CustomerWithSummary, 0, len(customers))
	for _, c := range customers {
		owned := byCustomer[c.ID]
		row := CustomerWithSummary{Customer: c, TotalSubscriptions: len(owned)}
		for i := range owned {
			if owned[i].IsActive() {
				active := owned[i]
				row.ActiveSubscription = &active
				row.HasActiveSubscription = true
				break
			}
		}
		result = append(result, row)
	}
	return result, nil
}

func (r *customerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}

func (r *customerRepository) CountWithActiveSubscription(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("EXISTS (SELECT 1 FROM subscriptions s WHERE s.customer_id = customers.id AND s.status = ?)", models.SubscriptionStatusActive).
		Count(&count).Error
	return count, err
}
