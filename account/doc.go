/*
Package account implements the multi-party authorization engine.

An Account is a shared resource controlled by a weighted member registry.
Any state changing operation must be wrapped in actions, bundled into a
named proposal and approved by members until the accumulated weight
reaches the threshold configured for the issuer's role (or the global
threshold). Executing an approved proposal removes it from the store and
returns an Executable: a single use cursor that hands out the proposal's
actions strictly in order and cannot be retired until every action was
both applied and cleaned up.

Action semantics are not defined here. Families under x/ register their
payload types with this package's codec and drive the Executable through
typed Do/Complete helpers. The engine stays agnostic to what an action
does; it only guarantees that nothing runs without quorum and that an
approved batch runs exactly once, in order, or not at all.
*/
package account
