/*
Package accord defines the common interfaces of the accord engine: a
multi-party authorization layer over a shared, resource-oriented account.

An account holds a weighted member registry, a threshold table and a
dependency registry. State changing operations are bundled into named
proposals that must gather enough approval weight before they can be
executed. The root package holds only the plumbing every other package
needs: addresses and conditions, the key-value store interfaces, context
accessors for block time, epoch, sender and logger, and the genesis
initialization hooks.

The engine itself lives in the account package. Pluggable action
families, which define what an approved proposal actually does, live
under x/.
*/
package accord
