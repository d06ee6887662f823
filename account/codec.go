package account

import (
	"regexp"

	amino "github.com/tendermint/go-amino"
)

// Action is a single unit of pending work held by a proposal. Concrete
// payload types are defined by action families and registered with
// RegisterAction so the heterogeneous action sequence can be persisted
// and decoded. The engine never inspects a payload beyond validation;
// only the issuing family's typed helpers do.
type Action interface {
	Validate() error
}

var isActionRoute = regexp.MustCompile(`^[a-z0-9_\-]{3,10}/[a-z0-9_\-]{3,20}$`).MatchString

var cdc = amino.NewCodec()

func init() {
	cdc.RegisterInterface((*Action)(nil), nil)
}

// RegisterAction registers a concrete action payload under the given
// route, which must be of the form "family/action". Call this from an
// init function, it panics on malformed routes and on route reuse.
func RegisterAction(route string, action Action) {
	if !isActionRoute(route) {
		panic("illegal action route: " + route)
	}
	cdc.RegisterConcrete(action, route, nil)
}

// Codec returns the codec that knows all registered action payloads.
// Families may use it for buckets holding their own models next to
// engine state.
func Codec() *amino.Codec {
	return cdc
}
