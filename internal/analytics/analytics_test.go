package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period    string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{period: PeriodToday, wantStart: today, wantEnd: today.AddDate(0, 0, 1)},
		{period: PeriodYesterday, wantStart: today.AddDate(0, 0, -1), wantEnd: today},
		{period: PeriodLast7Days, wantStart: today.AddDate(0, 0, -7), wantEnd: today.AddDate(0, 0, 1)},
		{period: PeriodLast30Days, wantStart: today.AddDate(0, 0, -30), wantEnd: today.AddDate(0, 0, 1)},
		{period: "this_quarter", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			start, end, err := periodRange(tt.period, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestGetSummary(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db := sqlx.NewDb(mockDB, "sqlmock")
	service := &Service{db: db}

	mock.ExpectQuery("FROM conversations").
		WillReturnRows(sqlmock.NewRows([]string{"started", "active", "escalated", "resolved"}).
			AddRow(4, 10, 1, 3))
	mock.ExpectQuery("FROM messages").
		WillReturnRows(sqlmock.NewRows([]string{"total", "inbound", "admin", "ai", "tokens"}).
			AddRow(120, 70, 30, 20, 5400))
	mock.ExpectQuery("active_contacts").
		WillReturnRows(sqlmock.NewRows([]string{"active_contacts", "contacts_synced"}).
			AddRow(25, 200))

	summary, err := service.GetSummary(context.Background(), PeriodYesterday)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.ConversationsStarted)
	assert.Equal(t, 10, summary.ActiveConversations)
	assert.Equal(t, 120, summary.TotalMessages)
	assert.Equal(t, 70, summary.InboundMessages)
	assert.Equal(t, 5400, summary.AITokensUsed)
	assert.Equal(t, 25, summary.ActiveContacts)
	assert.Equal(t, 200, summary.ContactsSynced)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSummary_InvalidPeriod(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	service := &Service{db: sqlx.NewDb(mockDB, "sqlmock")}

	_, err = service.GetSummary(context.Background(), "fortnight")
	assert.Error(t, err)
}
