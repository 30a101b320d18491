// Package workflow runs automation workflows: a trigger (a comment was
// posted, a form was submitted, a user registered) collects raw payloads into
// a DataLayer, and each configured Action of every active workflow for that
// trigger runs against it.
//
// Raw payloads are interpreted through a DataTypeRegistry, which validates a
// payload and extracts the contact fields it carries. Both registries are
// plain values handed to constructors; nothing in this package keeps
// process-wide state.
package workflow
