package supplier

import (
	"fmt"

	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/notification"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// AddEvaluation stores a rating for the supplier and recomputes its average.
func AddEvaluation(db *gorm.DB, supplierID uint, rating decimal.Decimal, notes string, evaluatedBy *uint) (*models.SupplierEvaluation, error) {
	if err := models.ValidateRating(rating); err != nil {
		return nil, err
	}
	eval := &models.SupplierEvaluation{
		SupplierID:    supplierID,
		Rating:        rating,
		Notes:         notes,
		EvaluatedByID: evaluatedBy,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		var s models.Supplier
		if err := tx.First(&s, supplierID).Error; err != nil {
			return fmt.Errorf("load supplier %d: %w", supplierID, err)
		}
		if err := tx.Create(eval).Error; err != nil {
			return fmt.Errorf("create evaluation: %w", err)
		}
		if err := UpdateSupplierRating(tx, &s); err != nil {
			return err
		}
		_, err := notification.RatingAlert(tx, &s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return eval, nil
}

// UpdateSupplierRating sets the rating to the mean of all evaluations,
// rounded to two decimals. Suppliers without evaluations keep their rating.
func UpdateSupplierRating(db *gorm.DB, s *models.Supplier) error {
	var ratings []decimal.Decimal
	if err := db.Model(&models.SupplierEvaluation{}).Where("supplier_id = ?", s.ID).Pluck("rating", &ratings).Error; err != nil {
		return fmt.Errorf("load evaluations of supplier %d: %w", s.ID, err)
	}
	if len(ratings) == 0 {
		return nil
	}
	mean := decimal.Avg(ratings[0], ratings[1:]...).Round(2)
	if err := db.Model(s).Update("rating", mean).Error; err != nil {
		return fmt.Errorf("update rating of supplier %d: %w", s.ID, err)
	}
	s.Rating = mean
	return nil
}

// Evaluations lists the supplier's evaluations, newest first.
func Evaluations(db *gorm.DB, supplierID uint) ([]models.SupplierEvaluation, error) {
	var evals []models.SupplierEvaluation
	err := db.Where("supplier_id = ?", supplierID).
		Order("created_at desc").Order("id desc").Find(&evals).Error
	if err != nil {
		return nil, fmt.Errorf("list evaluations of supplier %d: %w", supplierID, err)
	}
	return evals, nil
}

type DeliveryStats struct {
	TotalOrders     int             `json:"total_orders"`
	CompletedOrders int             `json:"completed_orders"`
	OnTimeOrders    int             `json:"on_time_orders"`
	OnTimeRate      decimal.Decimal `json:"on_time_rate"`
}

func deliveryStats(db *gorm.DB, supplierID uint) (DeliveryStats, error) {
	var orders []models.ProcurementOrder
	err := db.Select("id", "status", "expected_delivery_date", "actual_delivery_date").
		Where("supplier_id = ?", supplierID).Find(&orders).Error
	if err != nil {
		return DeliveryStats{}, fmt.Errorf("load orders of supplier %d: %w", supplierID, err)
	}

	st := DeliveryStats{TotalOrders: len(orders), OnTimeRate: decimal.Zero}
	for i := range orders {
		if orders[i].Status != models.OrderReceived {
			continue
		}
		st.CompletedOrders++
		if orders[i].DeliveredOnTime() {
			st.OnTimeOrders++
		}
	}
	if st.CompletedOrders > 0 {
		st.OnTimeRate = decimal.NewFromInt(int64(st.OnTimeOrders)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(st.CompletedOrders))).
			Round(2)
	}
	return st, nil
}

// RefreshDeliveryStats stores the order count and on-time delivery rate
// derived from the supplier's orders.
func RefreshDeliveryStats(db *gorm.DB, supplierID uint) error {
	st, err := deliveryStats(db, supplierID)
	if err != nil {
		return err
	}
	err = db.Model(&models.Supplier{}).Where("id = ?", supplierID).Updates(map[string]any{
		"total_orders":          st.TotalOrders,
		"on_time_delivery_rate": st.OnTimeRate,
	}).Error
	if err != nil {
		return fmt.Errorf("update delivery stats of supplier %d: %w", supplierID, err)
	}
	return nil
}

type Performance struct {
	DeliveryStats
	AverageRating     decimal.Decimal             `json:"average_rating"`
	PerformanceScore  decimal.Decimal             `json:"performance_score"`
	PerformanceStatus models.PerformanceStatus    `json:"performance_status"`
	Evaluations       []models.SupplierEvaluation `json:"evaluations"`
}

func PerformanceData(db *gorm.DB, s *models.Supplier) (*Performance, error) {
	st, err := deliveryStats(db, s.ID)
	if err != nil {
		return nil, err
	}
	evals, err := Evaluations(db, s.ID)
	if err != nil {
		return nil, err
	}
	return &Performance{
		DeliveryStats:     st,
		AverageRating:     s.Rating,
		PerformanceScore:  s.PerformanceScore(),
		PerformanceStatus: s.PerformanceStatus(),
		Evaluations:       evals,
	}, nil
}
