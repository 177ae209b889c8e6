package commission

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/renta-rw/renta-backend/shared/models"
)

// Result is a computed commission: the clamped amount and the rule that
// produced it.
type Result struct {
	Amount decimal.Decimal
	RuleID uuid.UUID
}

// Engine computes and records agent commissions from CommissionRule rows.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

var oneHundred = decimal.NewFromInt(100)

// Compute looks up the active rule for actionType and evaluates it against
// transactionAmount. A nil result means no active rule exists and no
// commission is owed; that is not an error.
//
// Clamping is min first, then max. When a rule carries min > max the max
// bound is applied last and wins; this resolution order is observable
// behavior and must not be reordered.
func (e *Engine) Compute(actionType string, transactionAmount decimal.Decimal) (*Result, error) {
	var rule models.CommissionRule
	err := e.db.Where("action_type = ? AND is_active = ?", actionType, true).First(&rule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up commission rule: %w", err)
	}

	return evaluate(&rule, transactionAmount), nil
}

func evaluate(rule *models.CommissionRule, transactionAmount decimal.Decimal) *Result {
	var amount decimal.Decimal
	switch rule.CommissionType {
	case models.CommissionFixed:
		amount = rule.CommissionValue
	case models.CommissionPercentage:
		amount = transactionAmount.Mul(rule.CommissionValue).Div(oneHundred)
	default:
		return nil
	}

	if rule.MinAmount != nil && amount.LessThan(*rule.MinAmount) {
		amount = *rule.MinAmount
	}
	if rule.MaxAmount != nil && amount.GreaterThan(*rule.MaxAmount) {
		amount = *rule.MaxAmount
	}

	return &Result{
		Amount: amount.Round(2),
		RuleID: rule.ID,
	}
}

// Record inserts the agent transaction and, when a rule matches, its
// pending commission in one database transaction so a matched rule can
// never leave an orphaned transaction behind.
func (e *Engine) Record(txn *models.AgentTransaction) (*models.AgentCommission, error) {
	var commission *models.AgentCommission

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return fmt.Errorf("failed to create agent transaction: %w", err)
		}

		amount := decimal.Zero
		if txn.TransactionAmount != nil {
			amount = *txn.TransactionAmount
		}

		var rule models.CommissionRule
		err := tx.Where("action_type = ? AND is_active = ?", txn.ActionType, true).First(&rule).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return fmt.Errorf("failed to look up commission rule: %w", err)
		}

		result := evaluate(&rule, amount)
		if result == nil {
			return nil
		}

		ruleID := result.RuleID
		commission = &models.AgentCommission{
			AgentTransactionID: txn.ID,
			AgentID:            txn.AgentID,
			CommissionRuleID:   &ruleID,
			Amount:             result.Amount,
			Status:             models.CommissionPending,
		}
		if err := tx.Create(commission).Error; err != nil {
			commission = nil
			return fmt.Errorf("failed to create agent commission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commission, nil
}

// ValidateRule rejects rule definitions the engine cannot evaluate. A
// min > max pair is accepted but logged as suspect by the caller; the
// engine's clamp order resolves it deterministically.
func ValidateRule(rule *models.CommissionRule) error {
	switch rule.CommissionType {
	case models.CommissionFixed, models.CommissionPercentage:
	default:
		return fmt.Errorf("unknown commission type: %s", rule.CommissionType)
	}
	if rule.ActionType == "" {
		return fmt.Errorf("action type is required")
	}
	if rule.CommissionValue.IsNegative() {
		return fmt.Errorf("commission value must not be negative")
	}
	return nil
}
