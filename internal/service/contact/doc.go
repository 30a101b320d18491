// Package contact is the contact store: it takes the contacts admitted by
// workflow actions and persists them, creating the contact on first sight
// and attaching it to the target list.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports
// net/http or database/sql directly.
package contact
