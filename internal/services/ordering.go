package services

import (
	"database/sql"

	"github.com/localnerve/mapsdb/internal/metrics"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"gorm.io/gorm"
)

// ordered is satisfied by the models kept in an explicit per-project display order
type ordered interface {
	models.MarketArea | models.MapConfiguration
}

// siblingOrder is the list ordering for ordered models. Ties are broken by
// most recent modification.
const siblingOrder = "display_order ASC, last_modified DESC"

// nextOrder returns max(order)+1 within the project, or 0 when it has no siblings
func nextOrder[T ordered](tx *gorm.DB, projectID string) (int, error) {
	var highest sql.NullInt64
	if err := tx.Model(new(T)).
		Where("project_id = ?", projectID).
		Select("MAX(display_order)").
		Scan(&highest).Error; err != nil {
		return 0, wrapDB(err, "read order")
	}
	if !highest.Valid {
		return 0, nil
	}
	return int(highest.Int64) + 1, nil
}

// listOrdered returns the project's siblings in display order
func listOrdered[T ordered](tx *gorm.DB, projectID string) ([]T, error) {
	items := []T{}
	if err := tx.Where("project_id = ?", projectID).Order(siblingOrder).Find(&items).Error; err != nil {
		return nil, wrapDB(err, "list")
	}
	return items, nil
}

// reorder assigns order = index for every id in ids. ids must name every
// sibling in the project exactly once. Runs inside the caller's transaction.
func reorder[T ordered](tx *gorm.DB, kind, projectID string, ids []string) ([]T, error) {
	var siblingIDs []string
	if err := lockForUpdate(tx).Model(new(T)).
		Where("project_id = ?", projectID).
		Pluck("id", &siblingIDs).Error; err != nil {
		return nil, wrapDB(err, "load siblings")
	}

	known := make(map[string]struct{}, len(siblingIDs))
	for _, id := range siblingIDs {
		known[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return nil, types.FieldError("order", "contains an id that does not belong to this project: "+id)
		}
		if _, dup := seen[id]; dup {
			return nil, types.FieldError("order", "contains a duplicate id: "+id)
		}
		seen[id] = struct{}{}
	}
	if len(ids) != len(siblingIDs) {
		return nil, types.FieldError("order", "must list every item in the project exactly once")
	}

	for i, id := range ids {
		if err := tx.Model(new(T)).Where("id = ?", id).Update("display_order", i).Error; err != nil {
			return nil, wrapDB(err, "update order")
		}
	}

	metrics.Reorders.WithLabelValues(kind).Inc()
	return listOrdered[T](tx, projectID)
}
