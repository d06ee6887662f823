/*
Package errors implements coded errors for the accord engine.

The engine categorizes failures by root error. Each error instance created
during runtime wraps one of the declared root errors, which allows testing
errors by kind and returning stable codes to the host ledger. Popular root
errors are declared in this package; extensions register their own codes
with the Register function, which guards code uniqueness.

The engine performs no internal retries. Every returned error is expected
to abort the enclosing transaction in full, leaving state untouched.
*/
package errors
