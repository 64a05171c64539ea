package payments

import (
	"errors"
	"fmt"

	"livewright-backend/internal/domain/contracts"
	"livewright-backend/internal/infra/stripegw"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB      *gorm.DB
	Gateway stripegw.Gateway
	Log     *zap.Logger
}

func NewHandler(db *gorm.DB, gw stripegw.Gateway, log *zap.Logger) *Handler {
	return &Handler{DB: db, Gateway: gw, Log: log}
}

var errNotFound = errors.New("contract or pricing option not found")

// resolveContractAndOption loads the contract by its public token and the
// pricing option under it. Soft-deleted rows are invisible here (gorm filters
// deleted_at on every read).
func (h *Handler) resolveContractAndOption(contractUID string, optionID uint) (*contracts.Contract, *contracts.PricingOption, error) {
	var contract contracts.Contract
	if err := h.DB.Where("unique_id = ?", contractUID).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errNotFound
		}
		return nil, nil, err
	}

	var option contracts.PricingOption
	if err := h.DB.Where("id = ? AND contract_id = ?", optionID, contract.ID).First(&option).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errNotFound
		}
		return nil, nil, err
	}

	return &contract, &option, nil
}

// ensureCustomer reuses the contract's Stripe customer or creates one keyed
// to the contract token.
func (h *Handler) ensureCustomer(contract *contracts.Contract, email, firstName, lastName string) (string, error) {
	if contract.StripeCustomerID != nil && *contract.StripeCustomerID != "" {
		return *contract.StripeCustomerID, nil
	}

	if email == "" {
		email = contract.Email
	}
	if firstName == "" {
		firstName = contract.FirstName
	}
	if lastName == "" {
		lastName = contract.LastName
	}

	customerID, err := h.Gateway.CreateCustomer(email, firstName, lastName, map[string]string{
		"contract_uid": contract.UniqueID,
		"contract_id":  fmt.Sprint(contract.ID),
	})
	if err != nil {
		return "", err
	}

	if err := h.DB.Model(&contracts.Contract{}).
		Where("id = ?", contract.ID).
		Update("stripe_customer_id", customerID).Error; err != nil {
		return "", err
	}
	contract.StripeCustomerID = &customerID

	return customerID, nil
}
