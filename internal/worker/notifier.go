package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// ErrUnknownRole is returned when an expense creator has a role outside the
// two the fan-out policy defines. The job fails (and eventually dead-letters)
// instead of guessing a recipient set for a role the product never specified.
var ErrUnknownRole = errors.New("no fan-out policy for role")

// KindRegistration routes "new profile awaiting approval" to admins; the
// stored rows still use the approval notification type.
const KindRegistration = "registration"

// NotificationJob carries everything needed to resolve recipients after the
// originating ledger transaction has committed.
type NotificationJob struct {
	Kind        string                 `json:"kind"` // sale | expense | deposit | approval | registration
	ActorID     uuid.UUID              `json:"actor_id"`
	ActorRole   string                 `json:"actor_role"`
	SubjectID   uuid.UUID              `json:"subject_id,omitempty"` // approval target
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// NotificationWorker resolves the recipient set for a job and writes one
// notification row per recipient.
type NotificationWorker struct {
	profiles      repository.ProfileRepository
	notifications repository.NotificationRepository
}

func NewNotificationWorker(profiles repository.ProfileRepository, notifications repository.NotificationRepository) *NotificationWorker {
	return &NotificationWorker{profiles: profiles, notifications: notifications}
}

func (w *NotificationWorker) Handle(ctx context.Context, payload json.RawMessage) error {
	var job NotificationJob
	if err := json.Unmarshal(payload, &job); err != nil {
		// Malformed payload can never succeed — log and drop without retry.
		log.Error().Err(err).Msg("notifier: malformed job payload")
		return nil
	}

	recipients, err := w.Recipients(ctx, job)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	var meta datatypes.JSON
	if job.Metadata != nil {
		data, err := json.Marshal(job.Metadata)
		if err != nil {
			return fmt.Errorf("notifier: marshal metadata: %w", err)
		}
		meta = datatypes.JSON(data)
	}

	rowType := job.Kind
	if rowType == KindRegistration {
		rowType = model.NotifApproval
	}
	ns := make([]model.Notification, 0, len(recipients))
	for _, id := range recipients {
		ns = append(ns, model.Notification{
			RecipientID: id,
			Title:       job.Title,
			Description: job.Description,
			Type:        rowType,
			Metadata:    meta,
		})
	}
	return w.notifications.CreateBatch(ctx, ns)
}

// Recipients applies the fan-out policy:
//
//	sale     → every approved profile except the seller
//	expense  → creator manager: every approved profile except the creator;
//	           creator owner: approved owners except the creator
//	deposit  → approved owners except the depositor
//	approval → the subject profile only
//
// The asymmetric expense rule is deliberate: owners see every expense, but an
// owner's own expenses stay between owners.
func (w *NotificationWorker) Recipients(ctx context.Context, job NotificationJob) ([]uuid.UUID, error) {
	switch job.Kind {
	case model.NotifSale:
		profiles, err := w.profiles.ListApproved(ctx)
		if err != nil {
			return nil, err
		}
		return excluding(profiles, job.ActorID), nil

	case model.NotifExpense:
		switch job.ActorRole {
		case model.RoleManager:
			profiles, err := w.profiles.ListApproved(ctx)
			if err != nil {
				return nil, err
			}
			return excluding(profiles, job.ActorID), nil
		case model.RoleOwner:
			owners, err := w.profiles.ListApprovedByRole(ctx, model.RoleOwner)
			if err != nil {
				return nil, err
			}
			return excluding(owners, job.ActorID), nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, job.ActorRole)
		}

	case model.NotifDeposit:
		owners, err := w.profiles.ListApprovedByRole(ctx, model.RoleOwner)
		if err != nil {
			return nil, err
		}
		return excluding(owners, job.ActorID), nil

	case model.NotifApproval:
		if job.SubjectID == uuid.Nil {
			return nil, nil
		}
		return []uuid.UUID{job.SubjectID}, nil

	case KindRegistration:
		admins, err := w.profiles.ListAdmins(ctx)
		if err != nil {
			return nil, err
		}
		return excluding(admins, job.SubjectID), nil

	default:
		return nil, fmt.Errorf("unknown notification kind %q", job.Kind)
	}
}

func excluding(profiles []model.Profile, actor uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == actor {
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids
}
