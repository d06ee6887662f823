package coin

import (
	"sort"

	"github.com/accord-ledger/accord/errors"
)

// Coins is a set of coins, one per ticker, sorted by ticker and free of
// zero values. Use Combine and Subtract to keep these invariants.
type Coins []*Coin

// NewCoins normalizes the given values into a valid Coins set, merging
// duplicated tickers.
func NewCoins(cs ...Coin) (Coins, error) {
	var out Coins
	var err error
	for _, c := range cs {
		if out, err = out.Combine(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Clone returns a deep copy.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	out := make(Coins, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

// Amount returns the amount held for the given ticker, zero if absent.
func (cs Coins) Amount(ticker string) Coin {
	for _, c := range cs {
		if c.Ticker == ticker {
			return *c
		}
	}
	return Coin{Ticker: ticker}
}

// Contains returns true if the set holds at least the given amount.
func (cs Coins) Contains(amount Coin) bool {
	return cs.Amount(amount.Ticker).IsGTE(amount)
}

// Combine adds the given amount into the set, returning a new set. The
// receiver is not modified. Removing is combining a negative amount.
func (cs Coins) Combine(amount Coin) (Coins, error) {
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	out := cs.Clone()
	for i, c := range out {
		if !c.SameType(amount) {
			continue
		}
		sum, err := c.Add(amount)
		if err != nil {
			return nil, err
		}
		if sum.IsZero() {
			return append(out[:i], out[i+1:]...), nil
		}
		out[i] = &sum
		return out, nil
	}
	if amount.IsZero() {
		return out, nil
	}
	out = append(out, amount.Clone())
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ticker < out[j].Ticker
	})
	return out, nil
}

// Subtract removes the given amount from the set, returning a new set.
// It fails if the set does not hold enough.
func (cs Coins) Subtract(amount Coin) (Coins, error) {
	if !cs.Contains(amount) {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "%s", amount)
	}
	return cs.Combine(amount.Negative())
}

// Validate ensures the set is sorted, unique per ticker and holds no
// zero or invalid coins.
func (cs Coins) Validate() error {
	last := ""
	for _, c := range cs {
		if c == nil {
			return errors.Wrap(errors.ErrEmpty, "nil coin")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsZero() {
			return errors.Wrap(errors.ErrInvalidState, "zero coin in set")
		}
		if c.Ticker <= last {
			return errors.Wrap(errors.ErrInvalidState, "unsorted or duplicated ticker")
		}
		last = c.Ticker
	}
	return nil
}

// Equals returns true if both sets hold exactly the same amounts.
func (cs Coins) Equals(other Coins) bool {
	if len(cs) != len(other) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*other[i]) {
			return false
		}
	}
	return true
}
