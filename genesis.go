package accord

import "encoding/json"

// Options are the application genesis options. Each extension can look up
// its key and parse the raw json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the value stored under a given key and parses the
// json into the given obj. Returns an error if it cannot parse. Noop and
// no error if the key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize extensions from
// genesis file contents.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
