package account

import (
	"time"

	"github.com/accord-ledger/accord"
	"github.com/accord-ledger/accord/accordtest"
	"github.com/accord-ledger/accord/errors"
)

// noteAction is the action payload used throughout the engine tests. The
// Applied flag doubles as the executed marker.
type noteAction struct {
	Memo    string `json:"memo"`
	Applied bool   `json:"applied"`
}

var _ Action = (*noteAction)(nil)

func (a *noteAction) Validate() error {
	if a.Memo == "" {
		return errors.Wrap(errors.ErrEmpty, "memo")
	}
	return nil
}

type testFamily struct {
	path string
}

func (f testFamily) FamilyPath() string {
	return f.path
}

var (
	noteFamily  = testFamily{path: "note"}
	otherFamily = testFamily{path: "other"}
	adminFamily = testFamily{path: "admin"}
)

func init() {
	RegisterAction("note/write", &noteAction{})
	RegisterCoreFamily(adminFamily)
}

// extAllowAll accepts every package, extDenyAll rejects every package.
type extAllowAll struct{}

func (extAllowAll) IsAllowed(string, accord.Address, uint32) bool { return true }

type extDenyAll struct{}

func (extDenyAll) IsAllowed(string, accord.Address, uint32) bool { return false }

var (
	aliceAddr = accordtest.SequenceAddress(1)
	bobAddr   = accordtest.SequenceAddress(2)
	carolAddr = accordtest.SequenceAddress(3)
)

// defaultRules give alice weight 2 and bob and carol weight 1 each, with
// a global threshold of 3 and a "payer" threshold of 2 held by alice and
// bob.
func defaultRules() Rules {
	return Rules{
		Members: []Member{
			{Address: aliceAddr, Weight: 2, Roles: []string{"payer"}},
			{Address: bobAddr, Weight: 1, Roles: []string{"payer"}},
			{Address: carolAddr, Weight: 1},
		},
		Thresholds: []Threshold{
			{Role: RoleGlobal, Weight: 3},
			{Role: "payer", Weight: 2},
		},
	}
}

func testAccount() *Account {
	return &Account{
		Metadata: &accord.Metadata{Schema: 1},
		Address:  accordtest.SequenceAddress(100),
		Rules:    defaultRules(),
	}
}

var testTime = time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC)

func testCtx(epoch accord.EpochHeight, sender accord.Address) accord.Context {
	return accordtest.NewContext(testTime, epoch, sender)
}
