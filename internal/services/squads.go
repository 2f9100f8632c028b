package services

import (
	"errors"

	"github.com/atomizehq/atomize/internal/models"
	"github.com/atomizehq/atomize/internal/security"
)

const inviteCodeAttempts = 5

var errInviteCodeSpace = errors.New("could not allocate a unique invite code")

// SquadCreationStore is the slice of the squad repository squad creation
// goes through.
type SquadCreationStore interface {
	ExistsByInviteCode(inviteCode string) (bool, error)
	Create(squad *models.Squad) error
}

type SquadService struct {
	squads SquadCreationStore
}

func NewSquadService(squads SquadCreationStore) *SquadService {
	return &SquadService{squads: squads}
}

// CreateSquad allocates an invite code and inserts the squad with its
// owner membership. Code collisions are improbable at 36^8 but the unique
// index is authoritative, so generation retries a few times.
func (service *SquadService) CreateSquad(squad *models.Squad) error {
	if squad.SquadType == "" {
		squad.SquadType = models.SquadTypePrivate
	}
	if squad.MaxMembers <= 0 {
		squad.MaxMembers = models.DefaultMaxMembers
	}

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := security.InviteCode()
		if err != nil {
			return err
		}
		taken, err := service.squads.ExistsByInviteCode(code)
		if err != nil {
			return err
		}
		if taken {
			continue
		}
		squad.InviteCode = code
		return service.squads.Create(squad)
	}
	return errInviteCodeSpace
}
