package datawarehouse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdvisorActualsView is the warehouse view aggregating sales and activity per advisor and day
const AdvisorActualsView = "dbo.vw_salesflow_advisor_daily_actuals"

// AdvisorActuals are period-to-date totals for one advisor
type AdvisorActuals struct {
	AdvisorID      string
	AchievedAmount decimal.Decimal
	MessagesSent   int
	CallsMade      int
	ActiveDays     int
	SalesClosed    int
}

const advisorActualsQuery = `
SELECT
	advisor_id,
	SUM(sales_amount)        AS achieved_amount,
	SUM(messages_sent)       AS messages_sent,
	SUM(calls_made)          AS calls_made,
	COUNT(DISTINCT CASE WHEN messages_sent > 0 OR calls_made > 0 OR sales_closed > 0 THEN activity_date END) AS active_days,
	SUM(sales_closed)        AS sales_closed
FROM ` + AdvisorActualsView + `
WHERE activity_date >= @p1 AND activity_date <= @p2
GROUP BY advisor_id`

// GetAdvisorActuals sums every advisor's figures between from and to (inclusive dates).
// Malformed rows are logged and skipped.
func (c *Client) GetAdvisorActuals(ctx context.Context, from, to time.Time) ([]AdvisorActuals, error) {
	var out []AdvisorActuals
	skipped := 0

	_, err := c.eachRow(ctx, "advisor_actuals", advisorActualsQuery, func(row map[string]interface{}) error {
		actuals, err := ParseAdvisorActualsRow(row)
		if err != nil {
			skipped++
			c.logger.Warn("skipping malformed advisor actuals row", zap.Error(err))
			return nil
		}
		out = append(out, actuals)
		return nil
	}, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query advisor actuals: %w", err)
	}

	if skipped > 0 {
		c.logger.Warn("advisor actuals contained malformed rows", zap.Int("skipped", skipped))
	}
	return out, nil
}

// ParseAdvisorActualsRow converts a query row into AdvisorActuals. NULL
// aggregates are read as zero.
func ParseAdvisorActualsRow(row map[string]interface{}) (AdvisorActuals, error) {
	advisorID := strings.TrimSpace(toString(row["advisor_id"]))
	if advisorID == "" {
		return AdvisorActuals{}, fmt.Errorf("row has no advisor_id")
	}

	achieved, err := toDecimal(row["achieved_amount"])
	if err != nil {
		return AdvisorActuals{}, fmt.Errorf("advisor %s: achieved_amount: %w", advisorID, err)
	}

	return AdvisorActuals{
		AdvisorID:      advisorID,
		AchievedAmount: achieved,
		MessagesSent:   toInt(row["messages_sent"]),
		CallsMade:      toInt(row["calls_made"]),
		ActiveDays:     toInt(row["active_days"]),
		SalesClosed:    toInt(row["sales_closed"]),
	}, nil
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case []byte:
		return decimal.NewFromString(string(t))
	case string:
		return decimal.NewFromString(t)
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", v)
	}
}

func toInt(v interface{}) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int32:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	case []byte:
		n, _ := strconv.Atoi(string(t))
		return n
	case string:
		n, _ := strconv.Atoi(t)
		return n
	}
	return 0
}
