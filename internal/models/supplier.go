package models

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

type PerformanceStatus string

const (
	PerformanceExcellent PerformanceStatus = "Excellent"
	PerformanceGood      PerformanceStatus = "Good"
	PerformanceAverage   PerformanceStatus = "Average"
	PerformancePoor      PerformanceStatus = "Poor"
)

var (
	MinRating  = decimal.Zero
	MaxRating  = decimal.NewFromInt(5)
	maxPercent = decimal.NewFromInt(100)

	ratingScale   = decimal.NewFromInt(20)
	onTimeWeight  = decimal.RequireFromString("0.3")
	qualityWeight = decimal.RequireFromString("0.3")
	scoreDivisor  = decimal.NewFromInt(2)

	excellentFrom = decimal.NewFromInt(80)
	goodFrom      = decimal.NewFromInt(60)
	averageFrom   = decimal.NewFromInt(40)
)

type Supplier struct {
	ID uint `gorm:"primaryKey" json:"id"`
	BaseEntity
	ContactPerson      string          `gorm:"size:100" json:"contact_person"`
	Email              string          `gorm:"size:254;index" json:"email"`
	Phone              string          `gorm:"size:20" json:"phone"`
	Address            string          `gorm:"type:text" json:"address"`
	Rating             decimal.Decimal `gorm:"type:numeric(3,2);not null" json:"rating"`
	TotalOrders        int             `gorm:"not null" json:"total_orders"`
	OnTimeDeliveryRate decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"on_time_delivery_rate"`
	QualityScore       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"quality_score"`
	Timestamps
}

// PerformanceScore is (rating*20 + on-time rate*0.3 + quality*0.3) / 2,
// which tops out at 80 for a perfect supplier.
func (s *Supplier) PerformanceScore() decimal.Decimal {
	return s.Rating.Mul(ratingScale).
		Add(s.OnTimeDeliveryRate.Mul(onTimeWeight)).
		Add(s.QualityScore.Mul(qualityWeight)).
		Div(scoreDivisor).
		Round(2)
}

func (s *Supplier) PerformanceStatus() PerformanceStatus {
	return StatusForScore(s.PerformanceScore())
}

func StatusForScore(score decimal.Decimal) PerformanceStatus {
	switch {
	case score.GreaterThanOrEqual(excellentFrom):
		return PerformanceExcellent
	case score.GreaterThanOrEqual(goodFrom):
		return PerformanceGood
	case score.GreaterThanOrEqual(averageFrom):
		return PerformanceAverage
	default:
		return PerformancePoor
	}
}

// ValidateRating checks the closed interval [0, 5].
func ValidateRating(r decimal.Decimal) error {
	if r.LessThan(MinRating) || r.GreaterThan(MaxRating) {
		return invalid("rating", "must be between 0.0 and 5.0, got %s", r.String())
	}
	return nil
}

func validatePercent(field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(maxPercent) {
		return invalid(field, "must be between 0 and 100, got %s", v.String())
	}
	return nil
}

func (s *Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if s.Email != "" {
		if _, err := mail.ParseAddress(s.Email); err != nil {
			return invalid("email", "is not a valid address")
		}
	}
	if err := ValidateRating(s.Rating); err != nil {
		return err
	}
	if err := validatePercent("on_time_delivery_rate", s.OnTimeDeliveryRate); err != nil {
		return err
	}
	return validatePercent("quality_score", s.QualityScore)
}

type SupplierEvaluation struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SupplierID    uint            `gorm:"index;not null" json:"supplier_id"`
	Supplier      Supplier        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Rating        decimal.Decimal `gorm:"type:numeric(3,2);not null" json:"rating"`
	Notes         string          `gorm:"type:text" json:"notes"`
	EvaluatedByID *uint           `json:"evaluated_by_id"`
	EvaluatedBy   *User           `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Timestamps
}
