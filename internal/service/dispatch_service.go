package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/duedate/reminder/internal/database"
	"github.com/duedate/reminder/internal/email"
	"github.com/duedate/reminder/internal/logger"
	"github.com/duedate/reminder/internal/model"
	"github.com/duedate/reminder/internal/render"
	"github.com/duedate/reminder/internal/repository"
	"github.com/google/uuid"
)

// ErrRunInProgress is returned when another process holds today's run lock
var ErrRunInProgress = errors.New("a reminder run is already in progress")

// ReminderStore finds the reminders that fire on a date
type ReminderStore interface {
	FetchDue(ctx context.Context, today time.Time) ([]model.Reminder, error)
}

// RecipientStore resolves the clients a reminder goes to
type RecipientStore interface {
	FetchRecipients(ctx context.Context, reminder model.Reminder) ([]model.Client, error)
}

// SuppressionStore looks up blocklisted and unsubscribed clients
type SuppressionStore interface {
	FetchBlocklisted(ctx context.Context, clientIDs []int64) (map[int64]model.BlocklistEntry, error)
	FetchUnsubscribed(ctx context.Context, reminderID int64, clientIDs []int64) (map[int64]model.Unsubscribe, error)
}

// StatusStore persists dispatch outcomes
type StatusStore interface {
	Record(ctx context.Context, status *model.ReminderStatus) error
	WasSent(ctx context.Context, reminderID, clientID int64, fireDate time.Time) (bool, error)
	HasOutcome(ctx context.Context, reminderID, clientID int64, fireDate time.Time, outcome model.Outcome) (bool, error)
}

// RunLocker guards a run against concurrent dispatchers
type RunLocker interface {
	TryLock(ctx context.Context, key, token string, ttl time.Duration) (*database.Lock, error)
}

// Summary aggregates the outcome of one run
type Summary struct {
	RunID       string
	Date        time.Time
	Reminders   int
	Recipients  int
	Sent        int
	Failed      int
	Skipped     int
	AlreadySent int
}

// Attempted is the number of provider calls made during the run
func (s Summary) Attempted() int {
	return s.Sent + s.Failed
}

// DispatchService runs the daily reminder dispatch
type DispatchService struct {
	reminders   ReminderStore
	recipients  RecipientStore
	suppression SuppressionStore
	statuses    StatusStore
	sender      email.Sender
	renderer    *render.Renderer
	loc         *time.Location
	now         func() time.Time
	locker      RunLocker
	lockTTL     time.Duration
	log         *logger.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	reminders ReminderStore,
	recipients RecipientStore,
	suppression SuppressionStore,
	statuses StatusStore,
	sender email.Sender,
	renderer *render.Renderer,
	loc *time.Location,
	log *logger.Logger,
) *DispatchService {
	if loc == nil {
		loc = time.Local
	}
	return &DispatchService{
		reminders:   reminders,
		recipients:  recipients,
		suppression: suppression,
		statuses:    statuses,
		sender:      sender,
		renderer:    renderer,
		loc:         loc,
		now:         time.Now,
		log:         log.WithComponent("dispatch_service"),
	}
}

// WithRunLock makes Run take a per-date lock before dispatching
func (s *DispatchService) WithRunLock(locker RunLocker, ttl time.Duration) *DispatchService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s.locker = locker
	s.lockTTL = ttl
	return s
}

// WithClock replaces the wall clock, used by tests
func (s *DispatchService) WithClock(now func() time.Time) *DispatchService {
	s.now = now
	return s
}

// Today returns the current calendar date in the configured location
func (s *DispatchService) Today() time.Time {
	return model.Date(s.now().In(s.loc))
}

func runLockKey(today time.Time) string {
	return "reminder:run:" + today.Format("2006-01-02")
}

// Run dispatches every reminder firing today. Per-recipient send failures are
// recorded and counted; query and status write errors abort the run.
func (s *DispatchService) Run(ctx context.Context) (Summary, error) {
	started := s.now()
	today := s.Today()
	summary := Summary{RunID: uuid.NewString(), Date: today}
	log := s.log.WithRunID(summary.RunID)

	if s.locker != nil {
		lock, err := s.locker.TryLock(ctx, runLockKey(today), summary.RunID, s.lockTTL)
		if errors.Is(err, database.ErrLockHeld) {
			log.Warn().Time("date", today).Msg("another reminder run holds the lock")
			return summary, ErrRunInProgress
		}
		if err != nil {
			return summary, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("failed to release run lock")
			}
		}()
	}

	log.Info().Str("date", today.Format("2006-01-02")).Msg("starting reminder run")

	due, err := s.reminders.FetchDue(ctx, today)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch due reminders: %w", err)
	}

	for _, reminder := range due {
		if !reminder.FiresOn(today) {
			log.Warn().Int64("reminder_id", reminder.ID).Msg("dropping reminder that does not fire today")
			continue
		}
		summary.Reminders++
		if err := s.dispatchReminder(ctx, log.WithReminder(reminder.ID, reminder.Type.Name), reminder, today, &summary); err != nil {
			return summary, err
		}
	}

	log.RunSummary(summary.Reminders, summary.Recipients, summary.Sent, summary.Failed,
		summary.Skipped, summary.AlreadySent, s.now().Sub(started))
	return summary, nil
}

func (s *DispatchService) dispatchReminder(ctx context.Context, log *logger.Logger, reminder model.Reminder, today time.Time, summary *Summary) error {
	if missing := render.Undeclared(reminder.Type.Template); len(missing) > 0 {
		log.Warn().Strs("placeholders", missing).Msg("template uses placeholders missing from its data references")
	}

	clients, err := s.recipients.FetchRecipients(ctx, reminder)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn().Err(err).Msg("reminder client not found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve recipients for reminder %d: %w", reminder.ID, err)
	}
	if len(clients) == 0 {
		log.Info().Msg("reminder has no recipients")
		return nil
	}
	summary.Recipients += len(clients)

	ids := make([]int64, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	blocked, err := s.suppression.FetchBlocklisted(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check blocklist for reminder %d: %w", reminder.ID, err)
	}
	unsubscribed, err := s.suppression.FetchUnsubscribed(ctx, reminder.ID, ids)
	if err != nil {
		return fmt.Errorf("failed to check unsubscribes for reminder %d: %w", reminder.ID, err)
	}

	for _, client := range clients {
		if !client.HasEmail() {
			if err := s.skip(ctx, log, reminder, client, today, model.SkipNoEmail, summary); err != nil {
				return err
			}
			continue
		}
		if entry, ok := blocked[client.ID]; ok {
			if err := s.skip(ctx, log, reminder, client, today, withReason(model.SkipBlocklisted, entry.Reason), summary); err != nil {
				return err
			}
			continue
		}

		sent, err := s.statuses.WasSent(ctx, reminder.ID, client.ID, today)
		if err != nil {
			return fmt.Errorf("failed to check status for reminder %d client %d: %w", reminder.ID, client.ID, err)
		}
		if sent {
			summary.AlreadySent++
			log.Debug().Int64("client_id", client.ID).Msg("reminder already sent today")
			continue
		}

		if unsub, ok := unsubscribed[client.ID]; ok {
			if err := s.skip(ctx, log, reminder, client, today, withReason(model.SkipUnsubscribed, unsub.Reason), summary); err != nil {
				return err
			}
			continue
		}

		if err := s.send(ctx, log, reminder, client, today, summary); err != nil {
			return err
		}
	}
	return nil
}

func (s *DispatchService) send(ctx context.Context, log *logger.Logger, reminder model.Reminder, client model.Client, today time.Time, summary *Summary) error {
	vars := s.renderer.VarsFor(reminder, client, today)
	body := s.renderer.Render(reminder.Type.Template.Body, vars)
	msg := email.Message{
		To:       strings.TrimSpace(client.Email),
		ToName:   client.DisplayName(),
		Subject:  s.renderer.Render(reminder.Type.Template.Subject, vars),
		HTMLBody: body,
		TextBody: email.TextFromHTML(body),
	}

	status := &model.ReminderStatus{
		ReminderID: reminder.ID,
		ClientID:   client.ID,
		FireDate:   today,
	}

	messageID, sendErr := s.sender.Send(ctx, msg)
	if sendErr != nil {
		detail := sendErr.Error()
		status.Outcome = model.OutcomeFailed
		status.Detail = &detail
		summary.Failed++
		log.Error().Err(sendErr).Int64("client_id", client.ID).Msg("failed to send reminder")
	} else {
		status.Outcome = model.OutcomeSent
		if messageID != "" {
			status.Detail = &messageID
		}
		summary.Sent++
		log.Info().Int64("client_id", client.ID).Str("message_id", messageID).Msg("reminder sent")
	}

	if err := s.statuses.Record(ctx, status); err != nil {
		return fmt.Errorf("failed to record status for reminder %d client %d: %w", reminder.ID, client.ID, err)
	}
	return nil
}

// skip records a skipped row once per reminder, client and fire date; reruns
// on the same day count the skip without writing another row
func (s *DispatchService) skip(ctx context.Context, log *logger.Logger, reminder model.Reminder, client model.Client, today time.Time, reason string, summary *Summary) error {
	summary.Skipped++
	log.Info().Int64("client_id", client.ID).Str("reason", reason).Msg("skipping recipient")

	recorded, err := s.statuses.HasOutcome(ctx, reminder.ID, client.ID, today, model.OutcomeSkipped)
	if err != nil {
		return fmt.Errorf("failed to check status for reminder %d client %d: %w", reminder.ID, client.ID, err)
	}
	if recorded {
		return nil
	}

	status := &model.ReminderStatus{
		ReminderID: reminder.ID,
		ClientID:   client.ID,
		FireDate:   today,
		Outcome:    model.OutcomeSkipped,
		Detail:     &reason,
	}
	if err := s.statuses.Record(ctx, status); err != nil {
		return fmt.Errorf("failed to record status for reminder %d client %d: %w", reminder.ID, client.ID, err)
	}
	return nil
}

func withReason(kind, reason string) string {
	if reason = strings.TrimSpace(reason); reason == "" {
		return kind
	}
	return kind + ": " + reason
}
