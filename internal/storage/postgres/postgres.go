package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clubsched/internal/config"
	"clubsched/internal/models"

	_ "github.com/lib/pq"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrPollNotFound       = errors.New("poll not found")
	ErrPollNotActive      = errors.New("poll is not active")
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

type Storage struct {
	DB *sql.DB
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) UpcomingEvents() ([]models.Event, error) {
	query := `
		SELECT id, restaurant_name, restaurant_address, event_date,
		       COALESCE(event_time, ''), status, created_at
		FROM events
		WHERE status = 'upcoming'
		ORDER BY event_date ASC`

	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		err = rows.Scan(
			&event.ID,
			&event.RestaurantName,
			&event.RestaurantAddress,
			&event.EventDate,
			&event.EventTime,
			&event.Status,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

func (s *Storage) EventByID(id int) (*models.Event, error) {
	query := `
		SELECT id, restaurant_name, restaurant_address, event_date,
		       COALESCE(event_time, ''), status, created_at
		FROM events
		WHERE id = $1`

	var event models.Event
	err := s.DB.QueryRow(query, id).Scan(
		&event.ID,
		&event.RestaurantName,
		&event.RestaurantAddress,
		&event.EventDate,
		&event.EventTime,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

// NextUpcomingEvent returns the soonest upcoming event on or after the given
// civil date.
func (s *Storage) NextUpcomingEvent(from time.Time) (*models.Event, error) {
	query := `
		SELECT id, restaurant_name, restaurant_address, event_date,
		       COALESCE(event_time, ''), status, created_at
		FROM events
		WHERE status = 'upcoming' AND event_date >= $1
		ORDER BY event_date ASC
		LIMIT 1`

	var event models.Event
	err := s.DB.QueryRow(query, from.Format("2006-01-02")).Scan(
		&event.ID,
		&event.RestaurantName,
		&event.RestaurantAddress,
		&event.EventDate,
		&event.EventTime,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get next upcoming event: %w", err)
	}

	return &event, nil
}

func (s *Storage) UserByPhone(phoneNumber string) (*models.User, error) {
	return s.userBy("phone = $1", phoneNumber)
}

func (s *Storage) UserByEmail(email string) (*models.User, error) {
	return s.userBy("LOWER(email) = LOWER($1)", email)
}

func (s *Storage) userBy(where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, name, email, phone, sms_opt_in, sms_opted_out_at, status
		FROM users
		WHERE ` + where

	var user models.User
	err := s.DB.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.SmsOptIn,
		&user.SmsOptedOutAt,
		&user.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// OptOutUser records an SMS opt-out. The timestamp alone excludes the user
// from every future recipient query.
func (s *Storage) OptOutUser(userID int64) error {
	query := `
		UPDATE users
		SET sms_opted_out_at = NOW()
		WHERE id = $1 AND sms_opted_out_at IS NULL`

	if _, err := s.DB.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to opt out user: %w", err)
	}

	return nil
}

// ReminderRecipients selects reminder-eligible users for an event who have no
// reminder record of the given type yet. The filter optionally narrows by
// current RSVP status or to a single user (ad-hoc broadcasts).
func (s *Storage) ReminderRecipients(eventID int, reminderType string, filter models.RecipientFilter) ([]models.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.phone, u.sms_opt_in, u.sms_opted_out_at, u.status
		FROM users u
		WHERE u.status = 'active'
		  AND u.sms_opt_in = true
		  AND u.sms_opted_out_at IS NULL
		  AND u.phone IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1 FROM reminder_records rr
			WHERE rr.event_id = $1 AND rr.user_id = u.id AND rr.reminder_type = $2
		  )`

	args := []interface{}{eventID, reminderType}

	if filter.RsvpStatus != "" {
		args = append(args, string(filter.RsvpStatus))
		query += fmt.Sprintf(`
		  AND EXISTS (
			SELECT 1 FROM rsvps rv
			WHERE rv.event_id = $1 AND rv.user_id = u.id AND rv.status = $%d
		  )`, len(args))
	}
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND u.id = $%d", len(args))
	}

	query += " ORDER BY u.id ASC"

	return s.queryUsers(query, args...)
}

// InviteRecipients selects active users with an email address who have not
// yet received the given reminder type for the event.
func (s *Storage) InviteRecipients(eventID int, reminderType string) ([]models.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.phone, u.sms_opt_in, u.sms_opted_out_at, u.status
		FROM users u
		WHERE u.status = 'active'
		  AND u.email <> ''
		  AND NOT EXISTS (
			SELECT 1 FROM reminder_records rr
			WHERE rr.event_id = $1 AND rr.user_id = u.id AND rr.reminder_type = $2
		  )
		ORDER BY u.id ASC`

	return s.queryUsers(query, eventID, reminderType)
}

func (s *Storage) queryUsers(query string, args ...interface{}) ([]models.User, error) {
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipients: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err = rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Phone,
			&user.SmsOptIn,
			&user.SmsOptedOutAt,
			&user.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// RecordReminder inserts the dedup row for (event, user, type). Insert-if-
// absent: the uniqueness constraint, not an in-memory lock, carries the
// exactly-once guard across process instances.
func (s *Storage) RecordReminder(eventID int, userID int64, reminderType string) error {
	query := `
		INSERT INTO reminder_records (event_id, user_id, reminder_type, sent_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (event_id, user_id, reminder_type) DO NOTHING`

	if _, err := s.DB.Exec(query, eventID, userID, reminderType); err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}

	return nil
}

// RsvpStatus returns the user's current RSVP status for the event, or ""
// when no row exists (rendered as Pending).
func (s *Storage) RsvpStatus(eventID int, userID int64) (models.RsvpStatus, error) {
	query := `
		SELECT status FROM rsvps
		WHERE event_id = $1 AND user_id = $2`

	var status models.RsvpStatus
	err := s.DB.QueryRow(query, eventID, userID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get rsvp status: %w", err)
	}

	return status, nil
}

// UpsertRsvp writes the single RSVP row per (event, user). An existing row is
// updated in place with the admin-override markers cleared: a fresh member
// response supersedes a manual correction. Returns whether a row was created.
func (s *Storage) UpsertRsvp(eventID int, userID int64, status models.RsvpStatus, comments *string, viaCalendar bool) (bool, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	checkQuery := `
		SELECT EXISTS(
			SELECT 1 FROM rsvps
			WHERE event_id = $1 AND user_id = $2
		)`

	if err = tx.QueryRow(checkQuery, eventID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing rsvp: %w", err)
	}

	if exists {
		updateQuery := `
			UPDATE rsvps
			SET status = $3,
			    comments = COALESCE($4, comments),
			    admin_override = false,
			    admin_override_by = NULL,
			    admin_override_at = NULL,
			    via_calendar = $5,
			    updated_at = NOW()
			WHERE event_id = $1 AND user_id = $2`

		if _, err = tx.Exec(updateQuery, eventID, userID, status, comments, viaCalendar); err != nil {
			return false, fmt.Errorf("failed to update rsvp: %w", err)
		}
	} else {
		insertQuery := `
			INSERT INTO rsvps (event_id, user_id, status, comments, via_calendar, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())`

		if _, err = tx.Exec(insertQuery, eventID, userID, status, comments, viaCalendar); err != nil {
			return false, fmt.Errorf("failed to insert rsvp: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit rsvp: %w", err)
	}

	return !exists, nil
}

// ClosePoll transitions an active poll to closed and creates the resulting
// event, all in one transaction. The poll row is locked and re-checked inside
// the transaction so concurrent close attempts produce exactly one event.
// Vote counts are recomputed here, scoped to this poll; the validate callback
// sees those fresh counts and its error aborts the transaction unchanged.
func (s *Storage) ClosePoll(pollID, restaurantID int, eventDate time.Time, eventTime string, validate func(models.PollWinner) error) (int, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status models.PollStatus
	lockQuery := `SELECT status FROM polls WHERE id = $1 FOR UPDATE`

	err = tx.QueryRow(lockQuery, pollID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPollNotFound
		}
		return 0, fmt.Errorf("failed to lock poll: %w", err)
	}

	if status != models.PollActive {
		return 0, ErrPollNotActive
	}

	winner := models.PollWinner{
		RestaurantID: restaurantID,
		EventDate:    eventDate,
	}

	restaurantQuery := `
		SELECT r.name, r.address,
		       (SELECT COUNT(*) FROM poll_restaurant_votes v
		        WHERE v.poll_id = $1 AND v.restaurant_id = r.id)
		FROM restaurants r
		WHERE r.id = $2`

	err = tx.QueryRow(restaurantQuery, pollID, restaurantID).Scan(
		&winner.RestaurantName,
		&winner.RestaurantAddress,
		&winner.RestaurantVotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrRestaurantNotFound
		}
		return 0, fmt.Errorf("failed to get winning restaurant: %w", err)
	}

	dateVotesQuery := `
		SELECT COUNT(*) FROM poll_date_votes
		WHERE poll_id = $1 AND vote_date = $2`

	err = tx.QueryRow(dateVotesQuery, pollID, eventDate.Format("2006-01-02")).Scan(&winner.DateVotes)
	if err != nil {
		return 0, fmt.Errorf("failed to count date votes: %w", err)
	}

	if err = validate(winner); err != nil {
		return 0, err
	}

	var eventID int
	insertQuery := `
		INSERT INTO events (restaurant_name, restaurant_address, event_date, event_time, status, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), 'upcoming', NOW())
		RETURNING id`

	err = tx.QueryRow(insertQuery,
		winner.RestaurantName,
		winner.RestaurantAddress,
		eventDate.Format("2006-01-02"),
		eventTime,
	).Scan(&eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to create event: %w", err)
	}

	closeQuery := `
		UPDATE polls
		SET status = 'closed', winning_restaurant_id = $2, winning_event_date = $3, event_id = $4
		WHERE id = $1 AND status = 'active'`

	result, err := tx.Exec(closeQuery, pollID, restaurantID, eventDate.Format("2006-01-02"), eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to close poll: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to close poll: %w", err)
	}
	if rowsAffected != 1 {
		return 0, ErrPollNotActive
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit poll close: %w", err)
	}

	return eventID, nil
}

// IncrementRateCounter bumps the fixed-window counter for (scope, identifier)
// and returns the new count. Expired rows are swept lazily on the way in.
func (s *Storage) IncrementRateCounter(scope, identifier string, windowStart, expiresAt time.Time) (int, error) {
	cleanupQuery := `DELETE FROM rate_limit_counters WHERE expires_at < NOW()`
	if _, err := s.DB.Exec(cleanupQuery); err != nil {
		return 0, fmt.Errorf("failed to clean up rate counters: %w", err)
	}

	query := `
		INSERT INTO rate_limit_counters (scope, identifier, window_start, count, expires_at)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (scope, identifier, window_start)
		DO UPDATE SET count = rate_limit_counters.count + 1
		RETURNING count`

	var count int
	err := s.DB.QueryRow(query, scope, identifier, windowStart, expiresAt).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	return count, nil
}
