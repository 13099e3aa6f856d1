package escrow

import (
	"testing"
)

func TestDeriveCycleAccountDeterministic(t *testing.T) {

	a1, err := DeriveCycleAccount("org1", 7)
	if err != nil {
		t.Fatalf("Derivation failed: %s", err)
	}

	a2, err := DeriveCycleAccount("org1", 7)
	if err != nil {
		t.Fatalf("Derivation failed: %s", err)
	}

	if a1 != a2 {
		t.Errorf("Derivation not deterministic: %s != %s", a1, a2)
	}
}

func TestDeriveCycleAccountDistinct(t *testing.T) {

	a1, _ := DeriveCycleAccount("org1", 1)
	a2, _ := DeriveCycleAccount("org1", 2)
	a3, _ := DeriveCycleAccount("org2", 1)

	if a1 == a2 {
		t.Errorf("Same account for different nonces: %s", a1)
	}

	if a1 == a3 {
		t.Errorf("Same account for different organizers: %s", a1)
	}
}

func TestMemoryLedgerTransfer(t *testing.T) {

	l := NewMemoryLedger()
	if err := l.Mint("alice", 100); err != nil {
		t.Fatalf("Mint failed: %s", err)
	}

	if err := l.Transfer("alice", "bob", nil, 60); err != nil {
		t.Fatalf("Transfer failed: %s", err)
	}

	aliceBalance, _ := l.Balance("alice")
	bobBalance, _ := l.Balance("bob")

	if aliceBalance != 40 || bobBalance != 60 {
		t.Errorf("Balances wrong after transfer: alice=%d bob=%d", aliceBalance, bobBalance)
	}
}

func TestMemoryLedgerInsufficientFunds(t *testing.T) {

	l := NewMemoryLedger()
	l.Mint("alice", 10)

	if err := l.Transfer("alice", "bob", nil, 11); err != ErrInsufficientFunds {
		t.Errorf("Expected insufficient funds, got %v", err)
	}

	// Failed transfer must not move anything
	aliceBalance, _ := l.Balance("alice")
	bobBalance, _ := l.Balance("bob")
	if aliceBalance != 10 || bobBalance != 0 {
		t.Errorf("Balances changed on failed transfer: alice=%d bob=%d", aliceBalance, bobBalance)
	}
}

func TestMemoryLedgerAuthority(t *testing.T) {

	l := NewMemoryLedger()

	authority, err := NewCycleAuthority("org1", 1)
	if err != nil {
		t.Fatalf("Authority derivation failed: %s", err)
	}

	l.Mint(authority.Account, 500)

	// Wrong authority cannot move escrow funds
	wrong := Authority{Account: "somewhere-else"}
	if err := l.Transfer(authority.Account, "bob", &wrong, 100); err != ErrUnauthorized {
		t.Errorf("Expected unauthorized, got %v", err)
	}

	// The cycle's own authority can
	if err := l.Transfer(authority.Account, "bob", &authority, 100); err != nil {
		t.Errorf("Authorized transfer failed: %s", err)
	}
}

func TestMemoryLedgerConservation(t *testing.T) {

	l := NewMemoryLedger()
	accounts := []string{"a", "b", "c"}
	l.Mint("a", 1000)

	sum := func() uint64 {
		var total uint64
		for _, acct := range accounts {
			balance, _ := l.Balance(acct)
			total += balance
		}
		return total
	}

	before := sum()

	l.Transfer("a", "b", nil, 300)
	l.Transfer("b", "c", nil, 100)
	l.Transfer("c", "a", nil, 100)
	l.Transfer("a", "b", nil, 9999) // fails

	if after := sum(); after != before {
		t.Errorf("Value not conserved: before=%d after=%d", before, after)
	}
}
