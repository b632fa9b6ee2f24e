package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"droughtwatch/internal/types"
)

func threshold(v float64) *types.FloatString {
	fs := types.FloatString(v)
	return &fs
}

func sampleTrigger() *types.Trigger {
	return &types.Trigger{
		UserID:          1,
		Name:            "heat and dry spell",
		Region:          "western-cape",
		CombinationRule: types.RuleAny2,
		IsActive:        true,
		Conditions: []types.Condition{
			{Indicator: types.IndicatorTemp, Operator: types.OpGreaterThan, Threshold: threshold(30)},
			{Indicator: types.IndicatorRainfall, Operator: types.OpLessThan, Threshold: threshold(2)},
		},
	}
}

func TestTriggerRepository_Create_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	now := time.Now().UTC()
	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*int64) = 42
			*dest[1].(*time.Time) = now
			*dest[2].(*time.Time) = now
			return nil
		},
	}

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 2"), nil)

	trigger := sampleTrigger()
	err := repo.Create(context.Background(), trigger)
	require.NoError(t, err)
	assert.Equal(t, int64(42), trigger.ID)
	db.AssertExpectations(t)
}

func TestTriggerRepository_Create_RejectsZeroConditions(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	trigger := sampleTrigger()
	trigger.Conditions = nil

	err := repo.Create(context.Background(), trigger)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationNoConditions, appErr.Code)
	// No statement may reach the database.
	db.AssertNotCalled(t, "QueryRow")
	db.AssertNotCalled(t, "Exec")
}

func TestTriggerRepository_Create_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	row := &mockRow{scanErr: errors.New("connection refused")}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	err := repo.Create(context.Background(), sampleTrigger())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestTriggerRepository_GetByID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	row := &mockRow{scanErr: pgx.ErrNoRows}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	_, err := repo.GetByID(context.Background(), 99, 1)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundTrigger, appErr.Code)
}

func TestTriggerRepository_ListActiveByUser_HydratesConditions(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	now := time.Now().UTC()
	triggerRows := newMockRows([][]any{
		{int64(7), int64(1), "dry spell", "karoo", types.RuleAll, true, now, now},
	})
	conditionRows := newMockRows([][]any{
		{int64(7), types.IndicatorRainfall, types.OpLessThan, 2.0},
		{int64(7), types.IndicatorHumidity, types.OpLessThan, 30.0},
	})

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(triggerRows, nil).Once()
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(conditionRows, nil).Once()

	triggers, err := repo.ListActiveByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Equal(t, int64(7), triggers[0].ID)
	require.Len(t, triggers[0].Conditions, 2)
	assert.Equal(t, types.IndicatorRainfall, triggers[0].Conditions[0].Indicator)
	require.NotNil(t, triggers[0].Conditions[0].Threshold)
	assert.Equal(t, 2.0, triggers[0].Conditions[0].Threshold.Float64())
	db.AssertExpectations(t)
}

func TestTriggerRepository_ListActiveByUser_Empty(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows(nil), nil).Once()

	triggers, err := repo.ListActiveByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, triggers)
	// No triggers means no condition query.
	db.AssertNumberOfCalls(t, "Query", 1)
}

func TestTriggerRepository_Update_RejectsZeroConditions(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	trigger := sampleTrigger()
	trigger.ID = 5
	trigger.Conditions = nil

	err := repo.Update(context.Background(), trigger)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationNoConditions, appErr.Code)
}

func TestTriggerRepository_Update_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	trigger := sampleTrigger()
	trigger.ID = 5
	err := repo.Update(context.Background(), trigger)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundTrigger, appErr.Code)
}

func TestTriggerRepository_SetActive_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := repo.SetActive(context.Background(), 5, 1, false)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestTriggerRepository_Delete_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := repo.Delete(context.Background(), 5, 1)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundTrigger, appErr.Code)
}

func TestTriggerRepository_ListUserIDsWithActiveTriggers(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTriggerRepository(db)

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows([][]any{{int64(1)}, {int64(3)}}), nil)

	ids, err := repo.ListUserIDsWithActiveTriggers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)
}
