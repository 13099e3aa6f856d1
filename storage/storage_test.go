package storage

import (
	"testing"

	"circlepot/cycle"
)

func testStorage(t *testing.T) *Storage {

	s, err := InitStorage(t.TempDir())
	if err != nil {
		t.Fatalf("InitStorage failed: %s", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func testCycle() *cycle.Cycle {
	return &cycle.Cycle{
		Organizer: "org1",
		Nonce:     1,
		Params: cycle.Params{
			AmountPerUser:          100,
			MaxParticipants:        3,
			OrganizerFeeBps:        500,
			ContributionInterval:   3600,
			ContributionsPerPayout: 1,
			RoundCount:             3,
			PayoutOrder:            []string{"m1", "m2", "m3"},
			TokenKind:              "USDT",
		},
		CreatedAt:      1000,
		NextRoundTime:  4600,
		OrganizerStake: 60,
		PotAmount:      300,
	}
}

func TestCycleRoundTrip(t *testing.T) {

	s := testStorage(t)

	c := testCycle()
	org := &cycle.OrganizerAccount{Organizer: "org1", TotalCycles: 1, LockedStake: 60, LastCycleTime: 1000}

	if err := s.SaveCycleCreation(c, org); err != nil {
		t.Fatalf("SaveCycleCreation failed: %s", err)
	}

	got, err := s.GetCycle("org1", 1)
	if err != nil {
		t.Fatalf("GetCycle failed: %s", err)
	}

	if got.PotAmount != 300 || got.NextRoundTime != 4600 || len(got.PayoutOrder) != 3 {
		t.Errorf("Cycle record mismatch: %+v", got)
	}

	gotOrg, err := s.GetOrganizer("org1")
	if err != nil {
		t.Fatalf("GetOrganizer failed: %s", err)
	}

	if gotOrg.TotalCycles != 1 || gotOrg.LockedStake != 60 {
		t.Errorf("Organizer record mismatch: %+v", gotOrg)
	}
}

func TestGetCycleNotFound(t *testing.T) {

	s := testStorage(t)

	if _, err := s.GetCycle("nobody", 99); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if _, err := s.GetOrganizer("nobody"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if _, err := s.GetMembership("nobody", 99, "m1"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMembershipRoundTrip(t *testing.T) {

	s := testStorage(t)

	m := &cycle.Membership{
		Organizer:  "org1",
		Nonce:      1,
		Member:     "m1",
		Collateral: 30,
		IsActive:   true,
	}

	if err := s.SaveMembership(m); err != nil {
		t.Fatalf("SaveMembership failed: %s", err)
	}

	got, err := s.GetMembership("org1", 1, "m1")
	if err != nil {
		t.Fatalf("GetMembership failed: %s", err)
	}

	if got.Collateral != 30 || !got.IsActive {
		t.Errorf("Membership record mismatch: %+v", got)
	}

	memberships, err := s.ListMemberships("org1", 1)
	if err != nil || len(memberships) != 1 {
		t.Errorf("ListMemberships = %d records, %v", len(memberships), err)
	}
}

func TestSaveCycleRemoveMembership(t *testing.T) {

	s := testStorage(t)

	c := testCycle()
	m := &cycle.Membership{Organizer: "org1", Nonce: 1, Member: "m1", Collateral: 30}

	if err := s.SaveCycleAndMembership(c, m); err != nil {
		t.Fatalf("SaveCycleAndMembership failed: %s", err)
	}

	c.SlashedStakes = 15
	if err := s.SaveCycleRemoveMembership(c, m); err != nil {
		t.Fatalf("SaveCycleRemoveMembership failed: %s", err)
	}

	if _, err := s.GetMembership("org1", 1, "m1"); err != ErrNotFound {
		t.Errorf("Membership still present after removal: %v", err)
	}

	got, _ := s.GetCycle("org1", 1)
	if got.SlashedStakes != 15 {
		t.Errorf("Cycle mutation not committed: %+v", got)
	}
}

func TestDeleteCycle(t *testing.T) {

	s := testStorage(t)

	c := testCycle()
	org := &cycle.OrganizerAccount{Organizer: "org1", TotalCycles: 1, LockedStake: 60}
	m := &cycle.Membership{Organizer: "org1", Nonce: 1, Member: "m1"}

	s.SaveCycleCreation(c, org)
	s.SaveMembership(m)

	org.LockedStake = 0
	if err := s.DeleteCycle(c, org); err != nil {
		t.Fatalf("DeleteCycle failed: %s", err)
	}

	if _, err := s.GetCycle("org1", 1); err != ErrNotFound {
		t.Errorf("Cycle still present after delete: %v", err)
	}

	memberships, _ := s.ListMemberships("org1", 1)
	if len(memberships) != 0 {
		t.Errorf("Members bucket survived cycle delete: %d records", len(memberships))
	}

	gotOrg, _ := s.GetOrganizer("org1")
	if gotOrg.LockedStake != 0 {
		t.Errorf("Organizer record not updated on delete: %+v", gotOrg)
	}
}

func TestListActiveCycles(t *testing.T) {

	s := testStorage(t)

	active := testCycle()
	active.IsActive = true

	idle := testCycle()
	idle.Nonce = 2

	org := &cycle.OrganizerAccount{Organizer: "org1"}
	s.SaveCycleCreation(active, org)
	s.SaveCycleCreation(idle, org)

	cycles, err := s.ListActiveCycles()
	if err != nil {
		t.Fatalf("ListActiveCycles failed: %s", err)
	}

	if len(cycles) != 1 || cycles[0].Nonce != 1 {
		t.Errorf("Expected one active cycle with nonce 1, got %d", len(cycles))
	}
}

func TestNotifiersConfigRoundTrip(t *testing.T) {

	s := testStorage(t)

	if err := s.SaveNotifiersConfig("telegram", []byte(`{"enabled":true}`)); err != nil {
		t.Fatalf("SaveNotifiersConfig failed: %s", err)
	}

	config, err := s.GetNotifiersConfig("telegram")
	if err != nil {
		t.Fatalf("GetNotifiersConfig failed: %s", err)
	}

	if string(config) != `{"enabled":true}` {
		t.Errorf("Config mismatch: %s", config)
	}
}
