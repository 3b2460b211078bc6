// Package gate decides whether a request must be authenticated and, if so,
// resolves the user it belongs to.
//
// Two strategies exist: Basic verifies an `Authorization: Basic` header
// against the directory, Session resolves a session cookie through a
// session.Store. Chain composes them when both must be accepted.
//
// Every strategy fails closed: malformed input, unknown users, wrong
// passwords and backend errors all end up as "no identity", never as a
// default user.
package gate
