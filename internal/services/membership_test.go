package services

import (
	"errors"
	"testing"

	"github.com/atomizehq/atomize/internal/models"
)

// stubSquadStore is an in-memory MembershipStore with scriptable failure
// points.
type stubSquadStore struct {
	squads      map[uint]models.Squad
	memberships map[[2]uint]*models.SquadMember

	createErr       error
	reactivateErr   error
	slotReleases    int
	admitOverride   *bool
	createdMembers  int
	roleUpdates     int
	deactivations   int
}

func newStubSquadStore() *stubSquadStore {
	return &stubSquadStore{
		squads:      make(map[uint]models.Squad),
		memberships: make(map[[2]uint]*models.SquadMember),
	}
}

func (store *stubSquadStore) addSquad(squad models.Squad) {
	store.squads[squad.ID] = squad
}

func (store *stubSquadStore) FindByID(squadID uint) (models.Squad, bool, error) {
	squad, ok := store.squads[squadID]
	return squad, ok, nil
}

func (store *stubSquadStore) FindByInviteCode(inviteCode string) (models.Squad, bool, error) {
	for _, squad := range store.squads {
		if squad.InviteCode == inviteCode && squad.IsActive {
			return squad, true, nil
		}
	}
	return models.Squad{}, false, nil
}

func (store *stubSquadStore) FindMembership(squadID uint, userID uint) (models.SquadMember, bool, error) {
	membership, ok := store.memberships[[2]uint{squadID, userID}]
	if !ok {
		return models.SquadMember{}, false, nil
	}
	return *membership, true, nil
}

func (store *stubSquadStore) CreateMembership(membership *models.SquadMember) error {
	if store.createErr != nil {
		return store.createErr
	}
	store.createdMembers++
	copied := *membership
	store.memberships[[2]uint{membership.SquadID, membership.UserID}] = &copied
	return nil
}

func (store *stubSquadStore) ReactivateMembership(squadID uint, userID uint, invitedBy *uint) error {
	if store.reactivateErr != nil {
		return store.reactivateErr
	}
	membership := store.memberships[[2]uint{squadID, userID}]
	membership.IsActive = true
	membership.Role = models.RoleMember
	membership.InvitedBy = invitedBy
	return nil
}

func (store *stubSquadStore) DeactivateMembership(squadID uint, userID uint) (bool, error) {
	membership, ok := store.memberships[[2]uint{squadID, userID}]
	if !ok || !membership.IsActive {
		return false, nil
	}
	membership.IsActive = false
	store.deactivations++
	return true, nil
}

func (store *stubSquadStore) UpdateMemberRole(squadID uint, userID uint, role string) (bool, error) {
	membership, ok := store.memberships[[2]uint{squadID, userID}]
	if !ok {
		return false, nil
	}
	membership.Role = role
	store.roleUpdates++
	return true, nil
}

func (store *stubSquadStore) AdmitIfBelowCapacity(squadID uint) (bool, error) {
	if store.admitOverride != nil {
		return *store.admitOverride, nil
	}
	squad := store.squads[squadID]
	if squad.CurrentMemberCount >= squad.MaxMembers {
		return false, nil
	}
	squad.CurrentMemberCount++
	store.squads[squadID] = squad
	return true, nil
}

func (store *stubSquadStore) ReleaseMemberSlot(squadID uint) error {
	squad := store.squads[squadID]
	if squad.CurrentMemberCount > 0 {
		squad.CurrentMemberCount--
	}
	store.squads[squadID] = squad
	store.slotReleases++
	return nil
}

func publicSquad(id uint, memberCount int, maxMembers int) models.Squad {
	return models.Squad{
		ID:                 id,
		SquadName:          "squad",
		SquadType:          models.SquadTypePublic,
		OwnerID:            1,
		MaxMembers:         maxMembers,
		CurrentMemberCount: memberCount,
		IsActive:           true,
	}
}

func TestJoinAdmitsNewMember(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 1, 10))
	engine := NewMembershipEngine(store)

	if err := engine.Join(1, 42); err != nil {
		t.Fatalf("Join returned %v", err)
	}
	if store.squads[1].CurrentMemberCount != 2 {
		t.Fatalf("member count = %d, want 2", store.squads[1].CurrentMemberCount)
	}
	membership := store.memberships[[2]uint{1, 42}]
	if membership == nil || !membership.IsActive || membership.Role != models.RoleMember {
		t.Fatalf("membership = %+v", membership)
	}
}

func TestJoinUnknownSquad(t *testing.T) {
	engine := NewMembershipEngine(newStubSquadStore())
	if err := engine.Join(99, 42); !errors.Is(err, ErrSquadNotFound) {
		t.Fatalf("Join unknown squad = %v, want ErrSquadNotFound", err)
	}
}

func TestJoinInactiveSquadLooksDeleted(t *testing.T) {
	store := newStubSquadStore()
	squad := publicSquad(1, 1, 10)
	squad.IsActive = false
	store.addSquad(squad)

	engine := NewMembershipEngine(store)
	if err := engine.Join(1, 42); !errors.Is(err, ErrSquadNotFound) {
		t.Fatalf("Join inactive squad = %v, want ErrSquadNotFound", err)
	}
}

func TestJoinFullSquad(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 3, 3))
	engine := NewMembershipEngine(store)

	if err := engine.Join(1, 42); !errors.Is(err, ErrSquadFull) {
		t.Fatalf("Join full squad = %v, want ErrSquadFull", err)
	}
}

func TestJoinChecksFullBeforeAlreadyMember(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 3, 3))
	store.memberships[[2]uint{1, 42}] = &models.SquadMember{SquadID: 1, UserID: 42, IsActive: true}
	engine := NewMembershipEngine(store)

	if err := engine.Join(1, 42); !errors.Is(err, ErrSquadFull) {
		t.Fatalf("full+member join = %v, want ErrSquadFull first", err)
	}
}

func TestJoinActiveMemberAgain(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 2, 10))
	store.memberships[[2]uint{1, 42}] = &models.SquadMember{SquadID: 1, UserID: 42, IsActive: true}
	engine := NewMembershipEngine(store)

	if err := engine.Join(1, 42); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("rejoin = %v, want ErrAlreadyMember", err)
	}
}

func TestJoinInviteOnlySquad(t *testing.T) {
	store := newStubSquadStore()
	squad := publicSquad(1, 1, 10)
	squad.SquadType = models.SquadTypeInviteOnly
	store.addSquad(squad)
	engine := NewMembershipEngine(store)

	if err := engine.Join(1, 42); !errors.Is(err, ErrInviteOnly) {
		t.Fatalf("direct join = %v, want ErrInviteOnly", err)
	}
}

func TestInviteBypassesInviteOnly(t *testing.T) {
	store := newStubSquadStore()
	squad := publicSquad(1, 1, 10)
	squad.SquadType = models.SquadTypeInviteOnly
	store.addSquad(squad)
	engine := NewMembershipEngine(store)

	if err := engine.Invite(1, 1, 42); err != nil {
		t.Fatalf("Invite returned %v", err)
	}
	membership := store.memberships[[2]uint{1, 42}]
	if membership == nil || membership.InvitedBy == nil || *membership.InvitedBy != 1 {
		t.Fatalf("membership = %+v, want invited_by 1", membership)
	}
}

func TestJoinByCodeBypassesInviteOnly(t *testing.T) {
	store := newStubSquadStore()
	squad := publicSquad(1, 1, 10)
	squad.SquadType = models.SquadTypeInviteOnly
	squad.InviteCode = "CODE1234"
	store.addSquad(squad)
	engine := NewMembershipEngine(store)

	joined, err := engine.JoinByCode("CODE1234", 42)
	if err != nil {
		t.Fatalf("JoinByCode returned %v", err)
	}
	if joined.ID != 1 {
		t.Fatalf("joined squad id = %d, want 1", joined.ID)
	}

	if _, err := engine.JoinByCode("WRONG999", 43); !errors.Is(err, ErrSquadNotFound) {
		t.Fatalf("bad code = %v, want ErrSquadNotFound", err)
	}
}

func TestRejoinReactivatesExistingRow(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 1, 10))
	store.memberships[[2]uint{1, 42}] = &models.SquadMember{
		SquadID: 1, UserID: 42, Role: models.RoleAdmin, IsActive: false,
	}
	engine := NewMembershipEngine(store)

	if err := engine.Join(1, 42); err != nil {
		t.Fatalf("rejoin returned %v", err)
	}
	if store.createdMembers != 0 {
		t.Fatal("rejoin must reactivate, not insert")
	}
	membership := store.memberships[[2]uint{1, 42}]
	if !membership.IsActive || membership.Role != models.RoleMember {
		t.Fatalf("reactivated membership = %+v, want active plain member", membership)
	}
}

func TestAdmissionReleasesSlotWhenInsertFails(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 1, 10))
	store.createErr = errors.New("insert failed")
	engine := NewMembershipEngine(store)

	if err := engine.Join(1, 42); err == nil {
		t.Fatal("expected join to surface the insert error")
	}
	if store.slotReleases != 1 {
		t.Fatalf("slot releases = %d, want 1", store.slotReleases)
	}
	if store.squads[1].CurrentMemberCount != 1 {
		t.Fatalf("member count = %d, want 1 after compensation", store.squads[1].CurrentMemberCount)
	}
}

func TestAdmissionLosesRaceToCapacity(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 2, 10))
	refused := false
	store.admitOverride = &refused
	engine := NewMembershipEngine(store)

	if err := engine.Join(1, 42); !errors.Is(err, ErrSquadFull) {
		t.Fatalf("lost race = %v, want ErrSquadFull", err)
	}
}

func TestLeaveRules(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 2, 10))
	store.memberships[[2]uint{1, 42}] = &models.SquadMember{SquadID: 1, UserID: 42, IsActive: true}
	engine := NewMembershipEngine(store)

	if err := engine.Leave(1, 1); !errors.Is(err, ErrOwnerCannotLeave) {
		t.Fatalf("owner leave = %v, want ErrOwnerCannotLeave", err)
	}
	if err := engine.Leave(1, 77); !errors.Is(err, ErrNotMember) {
		t.Fatalf("non-member leave = %v, want ErrNotMember", err)
	}
	if err := engine.Leave(1, 42); err != nil {
		t.Fatalf("member leave = %v", err)
	}
	if store.squads[1].CurrentMemberCount != 1 {
		t.Fatalf("member count after leave = %d, want 1", store.squads[1].CurrentMemberCount)
	}
	if store.memberships[[2]uint{1, 42}].IsActive {
		t.Fatal("membership should be inactive after leave")
	}
}

func TestRemoveMemberRules(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 2, 10))
	store.memberships[[2]uint{1, 42}] = &models.SquadMember{SquadID: 1, UserID: 42, IsActive: true}
	engine := NewMembershipEngine(store)

	if err := engine.RemoveMember(1, 1); !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("remove owner = %v, want ErrCannotRemoveOwner", err)
	}
	if err := engine.RemoveMember(1, 42); err != nil {
		t.Fatalf("remove member = %v", err)
	}
	if store.squads[1].CurrentMemberCount != 1 {
		t.Fatalf("member count after removal = %d, want 1", store.squads[1].CurrentMemberCount)
	}
}

func TestUpdateRoleRules(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 2, 10))
	store.memberships[[2]uint{1, 42}] = &models.SquadMember{SquadID: 1, UserID: 42, Role: models.RoleMember, IsActive: true}
	engine := NewMembershipEngine(store)

	if err := engine.UpdateRole(1, 42, "owner"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("grant owner = %v, want ErrInvalidRole", err)
	}
	if err := engine.UpdateRole(1, 1, models.RoleAdmin); !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("change owner role = %v, want ErrCannotRemoveOwner", err)
	}
	if err := engine.UpdateRole(1, 77, models.RoleAdmin); !errors.Is(err, ErrNotMember) {
		t.Fatalf("change non-member role = %v, want ErrNotMember", err)
	}
	if err := engine.UpdateRole(1, 42, models.RoleAdmin); err != nil {
		t.Fatalf("promote member = %v", err)
	}
	if store.memberships[[2]uint{1, 42}].Role != models.RoleAdmin {
		t.Fatalf("role = %q, want admin", store.memberships[[2]uint{1, 42}].Role)
	}
}

func TestUpdateRoleReachesInactiveMembers(t *testing.T) {
	store := newStubSquadStore()
	store.addSquad(publicSquad(1, 1, 10))
	store.memberships[[2]uint{1, 42}] = &models.SquadMember{SquadID: 1, UserID: 42, Role: models.RoleMember, IsActive: false}
	engine := NewMembershipEngine(store)

	if err := engine.UpdateRole(1, 42, models.RoleModerator); err != nil {
		t.Fatalf("update inactive member role = %v", err)
	}
	if store.memberships[[2]uint{1, 42}].Role != models.RoleModerator {
		t.Fatal("inactive member's role should still update")
	}
}
