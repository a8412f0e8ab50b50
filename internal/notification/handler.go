package notification

import (
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/auth"
	"github.com/Mondejar-101/erpsample/internal/config"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// GET /api/notifications?read=false&page=1
func ListNotificationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := auth.CurrentUser(c)
		read := c.Query("read", "false") == "true"
		page := pagination.Parse(c)

		var total int64
		var items []models.Notification
		q := page.Apply(Query(database.DB, userID, read), &total)
		if err := q.Find(&items).Error; err != nil {
			return apierror.From(err, "", "notifications could not be listed")
		}

		unread, err := UnreadCount(database.DB, userID)
		if err != nil {
			return apierror.From(err, "", "unread count failed")
		}

		return c.JSON(fiber.Map{
			"notifications": page.Wrap(items, total),
			"read":          read,
			"unread_count":  unread,
		})
	}
}

// POST /api/notifications/:id/read
func MarkReadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid id")
		}
		userID, _ := auth.CurrentUser(c)

		n, err := MarkRead(database.DB, uint(id), userID, time.Now())
		if err != nil {
			return apierror.From(err, "notification not found", "notification could not be updated")
		}
		return c.JSON(fiber.Map{
			"message":      "Notification marked as read.",
			"notification": n,
		})
	}
}

// POST /api/notifications/read-all
func MarkAllReadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := auth.CurrentUser(c)
		n, err := MarkAllRead(database.DB, userID, time.Now())
		if err != nil {
			return apierror.From(err, "", "notifications could not be updated")
		}
		return c.JSON(fiber.Map{"updated": n})
	}
}

// POST /api/notifications/scan
// Runs the low-stock and delivery deadline checks.
func ScanHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lowStock, err := ScanLowStock(database.DB)
		if err != nil {
			return apierror.From(err, "", "low stock scan failed")
		}
		deadlines, err := ScanOrderDeadlines(database.DB, time.Now(), cfg.OrderDueWithin)
		if err != nil {
			return apierror.From(err, "", "order deadline scan failed")
		}
		return c.JSON(fiber.Map{
			"low_stock":     lowStock,
			"order_overdue": deadlines.Overdue,
			"order_due":     deadlines.DueSoon,
		})
	}
}
