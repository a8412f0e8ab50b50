package audit

import (
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/auth"
	"github.com/Mondejar-101/erpsample/internal/database"
	"github.com/Mondejar-101/erpsample/internal/models"
	"github.com/Mondejar-101/erpsample/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	IsUndone    bool               `json:"is_undone"`
	UndoneBy    *uint              `json:"undone_by"`
	UndoneAt    *string            `json:"undone_at"`
}

func ActorFrom(c *fiber.Ctx) Actor {
	id, name := auth.CurrentUser(c)
	return Actor{ID: id, Name: name}
}

// GET /api/audit-logs?entity_type=product&entity_id=1&user_id=1
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.AuditLog{})

		if uid := c.QueryInt("user_id"); uid > 0 {
			dbq = dbq.Where("user_id = ?", uid)
		}
		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if eid := c.QueryInt("entity_id"); eid > 0 {
			dbq = dbq.Where("entity_id = ?", eid)
		}

		page := pagination.Parse(c)
		var total int64
		var logs []models.AuditLog
		if err := page.Apply(dbq.Order("created_at DESC").Order("id DESC"), &total).Find(&logs).Error; err != nil {
			return apierror.From(err, "", "audit logs could not be listed")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			var undoneAt *string
			if l.UndoneAt != nil {
				formatted := l.UndoneAt.Format("2006-01-02 15:04:05")
				undoneAt = &formatted
			}
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				IsUndone:    l.IsUndone,
				UndoneBy:    l.UndoneBy,
				UndoneAt:    undoneAt,
			})
		}
		return c.JSON(page.Wrap(resp, total))
	}
}

// POST /api/audit-logs/:id/undo
func UndoAuditLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid log id")
		}
		userID, userName := auth.CurrentUser(c)

		if err := UndoLog(database.DB, uint(id), userID, userName, time.Now()); err != nil {
			return apierror.From(err, "audit log not found", "change could not be undone")
		}
		return c.JSON(fiber.Map{"message": "Change undone."})
	}
}
