package services

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/localnerve/mapsdb/internal/metrics"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// maxCost is the first value that does not fit the decimal(10,2) column
var maxCost = decimal.New(1, 8)

const (
	exportDateLayout  = "2006-01-02"
	exportTimeLayout  = "2006-01-02 15:04:05"
	missingProjectCSV = "N/A"
)

// RecordUsageInput is the body of a record-usage request. UserID defaults to the caller.
type RecordUsageInput struct {
	UserID    string           `json:"user_id"`
	ProjectID string           `json:"project_id"`
	Cost      *decimal.Decimal `json:"cost"`
}

// UsageView is a ledger row as returned to clients, cost fixed to 2 decimals
type UsageView struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Project   string    `json:"project"`
	Cost      string    `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
}

// UserUsage is one user's rollup within the stats window
type UserUsage struct {
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	UsageCount int64           `json:"usage_count"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// MarshalJSON writes total_cost fixed to 2 decimals, like every other cost on the wire
func (u UserUsage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UserID     string `json:"user_id"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		UsageCount int64  `json:"usage_count"`
		TotalCost  string `json:"total_cost"`
	}{u.UserID, u.Username, u.Email, u.UsageCount, u.TotalCost.StringFixed(2)})
}

// ExportFilter narrows a ledger export. Nil bounds are open; an empty UserIDs exports every user.
type ExportFilter struct {
	Start   *time.Time
	End     *time.Time
	UserIDs []string
}

// validateCost accepts non-negative amounts with at most 2 fractional digits
func validateCost(cost *decimal.Decimal) error {
	switch {
	case cost == nil:
		return types.FieldError("cost", "this field is required")
	case cost.IsNegative():
		return types.FieldError("cost", "cost must not be negative")
	case !cost.Equal(cost.Round(2)):
		return types.FieldError("cost", "cost must have at most 2 decimal places")
	case cost.GreaterThanOrEqual(maxCost):
		return types.FieldError("cost", "cost must be less than 100000000")
	}
	return nil
}

func now(db *gorm.DB) time.Time {
	if db.NowFunc != nil {
		return db.NowFunc()
	}
	return time.Now().UTC()
}

// RecordUsage appends one ledger row. Charging another user requires staff.
// Every call is a new row; usage is never merged.
func RecordUsage(db *gorm.DB, acc Access, in RecordUsageInput) (*UsageView, error) {
	if err := validateCost(in.Cost); err != nil {
		return nil, err
	}
	userID := in.UserID
	if userID == "" {
		userID = acc.UserID
	}
	if userID != acc.UserID && !acc.IsStaff {
		return nil, types.Forbidden("only staff can record usage for another user")
	}

	row := models.EnrichmentUsage{
		UserID:    userID,
		ProjectID: in.ProjectID,
		Cost:      in.Cost.Round(2),
		Timestamp: now(db),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := findOne[models.User](tx, "user", userID); err != nil {
			return err
		}
		if _, err := requireProject(tx, acc, in.ProjectID); err != nil {
			return err
		}
		return wrapDB(tx.Create(&row).Error, "record usage")
	})
	if err != nil {
		return nil, err
	}

	metrics.UsageRecorded.Inc()
	metrics.UsageCost.Add(row.Cost.InexactFloat64())
	log.Debug().Str("user", userID).Str("project", in.ProjectID).Str("cost", row.Cost.StringFixed(2)).Msg("Usage recorded")
	view := newUsageView(row)
	return &view, nil
}

func newUsageView(row models.EnrichmentUsage) UsageView {
	return UsageView{
		ID:        row.ID,
		User:      row.UserID,
		Project:   row.ProjectID,
		Cost:      row.Cost.StringFixed(2),
		Timestamp: row.Timestamp,
	}
}

// ListMyUsage returns the caller's ledger rows, newest first
func ListMyUsage(db *gorm.DB, acc Access) ([]UsageView, error) {
	var rows []models.EnrichmentUsage
	if err := db.Where("user_id = ?", acc.UserID).
		Order("recorded_at DESC").Order("id").
		Find(&rows).Error; err != nil {
		return nil, wrapDB(err, "list usage")
	}
	views := make([]UsageView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newUsageView(row))
	}
	return views, nil
}

// UsageStats sums each user's usage recorded at or after asOf minus
// windowDays. Every user is present in the result, with zeros when idle.
func UsageStats(db *gorm.DB, windowDays int, asOf time.Time) (map[string]UserUsage, error) {
	if windowDays <= 0 {
		return nil, types.FieldError("window_days", "must be greater than 0")
	}
	since := asOf.UTC().AddDate(0, 0, -windowDays)

	var rows []UserUsage
	err := db.Clauses(hints.Comment("select", "usage_stats")).
		Table("users").
		Select("users.id AS user_id, users.username, users.email, "+
			"COUNT(eu.id) AS usage_count, COALESCE(SUM(eu.cost), 0) AS total_cost").
		Joins("LEFT JOIN enrichment_usage eu ON eu.user_id = users.id AND eu.recorded_at >= ?", since).
		Group("users.id, users.username, users.email").
		Order("users.username").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDB(err, "usage stats")
	}

	stats := make(map[string]UserUsage, len(rows))
	for _, row := range rows {
		row.TotalCost = row.TotalCost.Round(2)
		stats[row.UserID] = row
	}
	return stats, nil
}

// ParseExportFilter reads the export query parameters. Dates are YYYY-MM-DD
// in UTC and the end date includes its whole day.
func ParseExportFilter(startDate, endDate string, userIDs []string) (ExportFilter, error) {
	var f ExportFilter
	fields := map[string]string{}
	if startDate != "" {
		start, err := time.Parse(exportDateLayout, startDate)
		if err != nil {
			fields["start_date"] = "must be a date formatted YYYY-MM-DD"
		} else {
			f.Start = &start
		}
	}
	if endDate != "" {
		end, err := time.Parse(exportDateLayout, endDate)
		if err != nil {
			fields["end_date"] = "must be a date formatted YYYY-MM-DD"
		} else {
			end = end.AddDate(0, 0, 1)
			f.End = &end
		}
	}
	if len(fields) > 0 {
		return f, types.Validation("validation failed", fields)
	}
	if f.Start != nil && f.End != nil && !f.Start.Before(*f.End) {
		return f, types.FieldError("end_date", "must not be before start_date")
	}
	for _, id := range userIDs {
		if id != "" {
			f.UserIDs = append(f.UserIDs, id)
		}
	}
	return f, nil
}

type exportRow struct {
	Email         string
	RecordedAt    time.Time
	ProjectNumber *string
	Cost          decimal.Decimal
}

// ExportUsage writes the filtered ledger as CSV ordered by username, then newest first.
// The output depends only on the ledger and the filter.
func ExportUsage(db *gorm.DB, f ExportFilter, w io.Writer) error {
	query := db.Clauses(hints.Comment("select", "usage_export")).
		Table("enrichment_usage eu").
		Select("users.email, eu.recorded_at, projects.project_number, eu.cost").
		Joins("JOIN users ON users.id = eu.user_id").
		Joins("LEFT JOIN projects ON projects.id = eu.project_id")
	if f.Start != nil {
		query = query.Where("eu.recorded_at >= ?", *f.Start)
	}
	if f.End != nil {
		query = query.Where("eu.recorded_at < ?", *f.End)
	}
	if len(f.UserIDs) > 0 {
		query = query.Where("eu.user_id IN ?", f.UserIDs)
	}

	rows, err := query.Order("users.username").Order("eu.recorded_at DESC").Order("eu.id").Rows()
	if err != nil {
		return wrapDB(err, "export usage")
	}
	defer rows.Close()

	out := csv.NewWriter(w)
	if err := out.Write([]string{"Email", "Date", "Project Number", "Cost"}); err != nil {
		return errors.Wrap(err, "write export header")
	}
	var count int
	for rows.Next() {
		var row exportRow
		if err := db.ScanRows(rows, &row); err != nil {
			return wrapDB(err, "scan usage row")
		}
		project := missingProjectCSV
		if row.ProjectNumber != nil {
			project = *row.ProjectNumber
		}
		if err := out.Write([]string{
			row.Email,
			row.RecordedAt.UTC().Format(exportTimeLayout),
			project,
			row.Cost.StringFixed(2),
		}); err != nil {
			return errors.Wrap(err, "write export row")
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return wrapDB(err, "read usage rows")
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return errors.Wrap(err, "flush export")
	}
	log.Info().Int("rows", count).Msg("Usage exported")
	return nil
}
