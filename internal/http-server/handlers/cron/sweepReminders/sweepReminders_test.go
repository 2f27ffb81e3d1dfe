package sweepReminders

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clubsched/internal/dispatch"
	"clubsched/internal/http-server/handlers/cron/sweepReminders/mocks"
	"clubsched/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSweepRemindersHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name         string
		result       dispatch.SweepResult
		expectedBody string
	}{
		{
			name:         "Reminders sent",
			result:       dispatch.SweepResult{Due: 3, Sent: 5, Failed: 1},
			expectedBody: `{"status":"OK","due":3,"sent":5,"failed":1}`,
		},
		{
			name:         "Nothing due",
			result:       dispatch.SweepResult{},
			expectedBody: `{"status":"OK","due":0,"sent":0,"failed":0}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sweeper := mocks.NewSweeper(t)
			sweeper.On("Sweep", mock.AnythingOfType("time.Time")).Return(tc.result)

			handler := New(logger, sweeper)

			req, err := http.NewRequest("POST", "/cron/reminders", nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
