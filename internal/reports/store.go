package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RevenuePoint is one month of booked revenue.
type RevenuePoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// StatusCount is the number of bookings in one campaign status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// TopSpace is one media space ranked by booked revenue.
type TopSpace struct {
	SpaceID  uuid.UUID `json:"spaceId"`
	Name     string    `json:"name"`
	City     string    `json:"city"`
	Bookings int64     `json:"bookings"`
	Revenue  float64   `json:"revenue"`
}

// Store runs the dashboard aggregates straight against Postgres. The numbers
// are read-mostly and cheap; no cache sits in front of them.
type Store struct {
	Pool *pgxpool.Pool
}

// MonthlyRevenue returns booked revenue per campaign start month for a year.
func (s Store) MonthlyRevenue(ctx context.Context, year int) ([]RevenuePoint, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT to_char(date_trunc('month', start_date), 'YYYY-MM') AS month,
		       coalesce(sum(total_amount), 0) AS revenue
		FROM bookings
		WHERE extract(year FROM start_date) = $1
		GROUP BY 1
		ORDER BY 1`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RevenuePoint
	for rows.Next() {
		var p RevenuePoint
		if err := rows.Scan(&p.Month, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// StatusCounts returns how many bookings sit in each campaign status.
func (s Store) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT status, count(*) FROM bookings GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TopSpaces ranks spaces by booked line item revenue.
func (s Store) TopSpaces(ctx context.Context, limit int) ([]TopSpace, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT sp.id, sp.name, sp.city, count(DISTINCT bi.booking_id), coalesce(sum(bi.price), 0)
		FROM booking_items bi
		JOIN spaces sp ON sp.id = bi.space_id
		GROUP BY sp.id, sp.name, sp.city
		ORDER BY 5 DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopSpace
	for rows.Next() {
		var t TopSpace
		if err := rows.Scan(&t.SpaceID, &t.Name, &t.City, &t.Bookings, &t.Revenue); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
