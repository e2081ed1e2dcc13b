package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"kanguru-service/internal/domain"
)

type mockTestRow struct {
	bun.BaseModel `bun:"table:mock_tests"`

	ID   string          `bun:"id,pk"`
	Name string          `bun:"name"`
	Data domain.MockTest `bun:"data,type:jsonb"`
}

// SeedTests upserts tests into mock_tests and returns how many rows were written.
func SeedTests(ctx context.Context, db bun.IDB, tests []domain.MockTest) (int, error) {
	if len(tests) == 0 {
		return 0, nil
	}
	rows := make([]mockTestRow, 0, len(tests))
	for _, test := range tests {
		rows = append(rows, mockTestRow{ID: test.ID, Name: test.Name, Data: test})
	}
	res, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
