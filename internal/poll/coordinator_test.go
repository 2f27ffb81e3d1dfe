package poll

import (
	"errors"
	"sync"
	"testing"
	"time"

	"clubsched/internal/clock"
	"clubsched/internal/dispatch"
	"clubsched/internal/lib/logger/handlers/slogdiscard"
	"clubsched/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore mimics the storage contract: single transition per poll, the
// validate callback sees the configured winner, and its error is returned
// unchanged.
type fakeStore struct {
	mu        sync.Mutex
	winner    models.PollWinner
	closed    map[int]bool
	nextEvent int
	created   []int
	event     *models.Event
}

func newFakeStore(winner models.PollWinner) *fakeStore {
	return &fakeStore{
		winner:    winner,
		closed:    map[int]bool{},
		nextEvent: 100,
	}
}

var errPollNotActive = errors.New("poll is not active")

func (f *fakeStore) ClosePoll(pollID, restaurantID int, eventDate time.Time, eventTime string, validate func(models.PollWinner) error) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed[pollID] {
		return 0, errPollNotActive
	}

	if err := validate(f.winner); err != nil {
		return 0, err
	}

	f.closed[pollID] = true
	f.nextEvent++
	f.created = append(f.created, f.nextEvent)

	return f.nextEvent, nil
}

func (f *fakeStore) EventByID(id int) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.event != nil {
		return f.event, nil
	}
	return nil, errors.New("event not found")
}

type fakeInvites struct {
	mu     sync.Mutex
	called int
	done   chan struct{}
}

func (f *fakeInvites) SendInvites(ev models.Event) (dispatch.Result, error) {
	f.mu.Lock()
	f.called++
	f.mu.Unlock()
	if f.done != nil {
		close(f.done)
	}
	return dispatch.Result{Sent: 1}, nil
}

func newTestCoordinator(t *testing.T, store Store, invites InviteSender) (*Coordinator, *clock.Clock) {
	t.Helper()

	clk, err := clock.New("America/Chicago", "18:00")
	require.NoError(t, err)

	return New(slogdiscard.NewDiscardLogger(), store, clk, invites), clk
}

func futureDate(clk *clock.Clock) string {
	return clk.Now().AddDate(0, 0, 14).Format("2006-01-02")
}

func goodWinner() models.PollWinner {
	return models.PollWinner{
		RestaurantID:      3,
		RestaurantName:    "Nonna's",
		RestaurantAddress: "12 Main St",
		RestaurantVotes:   5,
		DateVotes:         4,
	}
}

func TestCloseSuccess(t *testing.T) {
	t.Parallel()

	store := newFakeStore(goodWinner())
	coord, clk := newTestCoordinator(t, store, &fakeInvites{})

	eventID, err := coord.Close(CloseParams{
		PollID:       1,
		RestaurantID: 3,
		EventDate:    futureDate(clk),
		EventTime:    "19:00",
	})

	require.NoError(t, err)
	assert.Equal(t, 101, eventID)
	assert.True(t, store.closed[1])
}

func TestCloseRejectsPastDate(t *testing.T) {
	t.Parallel()

	store := newFakeStore(goodWinner())
	coord, clk := newTestCoordinator(t, store, &fakeInvites{})

	_, err := coord.Close(CloseParams{
		PollID:       1,
		RestaurantID: 3,
		EventDate:    clk.Now().AddDate(0, 0, -1).Format("2006-01-02"),
	})

	assert.ErrorIs(t, err, ErrPastDate)
	assert.Empty(t, store.created, "no event created, transaction never started")
}

func TestCloseRejectsMalformedDate(t *testing.T) {
	t.Parallel()

	store := newFakeStore(goodWinner())
	coord, _ := newTestCoordinator(t, store, &fakeInvites{})

	_, err := coord.Close(CloseParams{PollID: 1, RestaurantID: 3, EventDate: "next friday"})
	assert.ErrorIs(t, err, ErrBadDate)

	_, err = coord.Close(CloseParams{PollID: 1, RestaurantID: 3, EventDate: "2030-01-01", EventTime: "25:99"})
	assert.ErrorIs(t, err, ErrBadDate)
}

func TestCloseRejectsZeroVotes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		winner models.PollWinner
	}{
		{
			name: "Zero restaurant votes",
			winner: models.PollWinner{
				RestaurantAddress: "12 Main St",
				RestaurantVotes:   0,
				DateVotes:         4,
			},
		},
		{
			name: "Zero date votes",
			winner: models.PollWinner{
				RestaurantAddress: "12 Main St",
				RestaurantVotes:   5,
				DateVotes:         0,
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore(tc.winner)
			coord, clk := newTestCoordinator(t, store, &fakeInvites{})

			_, err := coord.Close(CloseParams{
				PollID:       1,
				RestaurantID: 3,
				EventDate:    futureDate(clk),
			})

			assert.ErrorIs(t, err, ErrNoVotes)
			assert.False(t, store.closed[1])
		})
	}
}

func TestCloseRejectsMissingAddressOnlyWhenInviting(t *testing.T) {
	t.Parallel()

	winner := goodWinner()
	winner.RestaurantAddress = ""

	store := newFakeStore(winner)
	coord, clk := newTestCoordinator(t, store, &fakeInvites{})

	_, err := coord.Close(CloseParams{
		PollID:       1,
		RestaurantID: 3,
		EventDate:    futureDate(clk),
		SendInvites:  true,
	})
	assert.ErrorIs(t, err, ErrNoAddress)

	// Without invites the missing address is fine.
	_, err = coord.Close(CloseParams{
		PollID:       1,
		RestaurantID: 3,
		EventDate:    futureDate(clk),
	})
	assert.NoError(t, err)
}

func TestCloseConcurrentDoubleClose(t *testing.T) {
	t.Parallel()

	store := newFakeStore(goodWinner())
	coord, clk := newTestCoordinator(t, store, &fakeInvites{})

	params := CloseParams{PollID: 1, RestaurantID: 3, EventDate: futureDate(clk)}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = coord.Close(params)
		}(i)
	}
	wg.Wait()

	var ok, failed int
	for _, err := range results {
		if err == nil {
			ok++
		} else {
			failed++
		}
	}

	assert.Equal(t, 1, ok, "exactly one close succeeds")
	assert.Equal(t, 1, failed)
	assert.Len(t, store.created, 1, "never two created events")
}

func TestCloseTriggersInvitesInBackground(t *testing.T) {
	t.Parallel()

	store := newFakeStore(goodWinner())
	store.event = &models.Event{ID: 101, RestaurantName: "Nonna's", Status: models.EventUpcoming}

	invites := &fakeInvites{done: make(chan struct{})}
	coord, clk := newTestCoordinator(t, store, invites)

	_, err := coord.Close(CloseParams{
		PollID:       1,
		RestaurantID: 3,
		EventDate:    futureDate(clk),
		SendInvites:  true,
	})
	require.NoError(t, err)

	select {
	case <-invites.done:
	case <-time.After(2 * time.Second):
		t.Fatal("invite dispatch was not triggered")
	}
}

func TestCloseDoesNotInviteWithoutFlag(t *testing.T) {
	t.Parallel()

	store := newFakeStore(goodWinner())
	invites := &fakeInvites{}
	coord, clk := newTestCoordinator(t, store, invites)

	_, err := coord.Close(CloseParams{
		PollID:       1,
		RestaurantID: 3,
		EventDate:    futureDate(clk),
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	invites.mu.Lock()
	defer invites.mu.Unlock()
	assert.Zero(t, invites.called)
}
