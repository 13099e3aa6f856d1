// Package escrow is the boundary to the asset-custody collaborator. The
// core never holds raw assets; it addresses custodial accounts by their
// encoded address and moves value through a Transferer.
package escrow

import (
	"encoding/binary"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"

	"circlepot/util"
)

const (
	// cycleTag namespaces cycle escrow account derivation.
	cycleTag = "cycle"

	// addressVersion is the base58check version byte for derived accounts.
	addressVersion = 0x0f
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds in source account")
	ErrUnauthorized      = errors.New("authority does not control source account")
)

// Transferer moves value between custodial accounts. Transfers out of a
// cycle's escrow must present the cycle's Authority; transfers out of a
// caller's own account pass a nil authority, the caller's identity having
// been verified upstream.
type Transferer interface {
	Balance(account string) (uint64, error)
	Transfer(from, to string, authority *Authority, amount uint64) error
}

// Authority is the capability controlling a cycle's escrow account. It is
// derived once at cycle creation from (tag, organizer, nonce) and reused
// for every outbound transfer from that escrow.
type Authority struct {
	Account string `json:"account"`
}

// DeriveCycleAccount produces the deterministic escrow account address for
// a cycle, a base58check encoding of blake2b(tag || organizer || nonce).
func DeriveCycleAccount(organizer string, nonce uint64) (string, error) {

	nonceBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceBytes, nonce)

	seed := append([]byte(cycleTag), []byte(organizer)...)
	seed = append(seed, nonceBytes...)

	hash, err := util.CryptoGenericHash(seed, nil)
	if err != nil {
		return "", errors.Wrap(err, "Unable to derive cycle escrow account")
	}

	return base58.CheckEncode(hash, addressVersion), nil
}

// NewCycleAuthority derives the escrow account for (organizer, nonce) and
// wraps it in the reusable capability object.
func NewCycleAuthority(organizer string, nonce uint64) (Authority, error) {

	account, err := DeriveCycleAccount(organizer, nonce)
	if err != nil {
		return Authority{}, err
	}

	return Authority{Account: account}, nil
}
