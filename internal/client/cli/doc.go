// Package cli is the course command-line client.
//
// Commands:
//
//	login [email]          sign in; the password is read without echo
//	logout                 forget the local session
//	reveal <email>         fetch the one-time password issued after purchase
//	ping                   check the credential service
//	me                     show the account
//	rename <name...>       change the display name
//	course                 progress and module locks (cached for offline use)
//	lesson <id>            show a lesson
//	complete <id>          mark a lesson complete
//	asset <id>             print a download link for the lesson material
//	countdown <module>     live countdown until a module unlocks
//
// Session tokens and the last course overview live in a local SQLite file.
package cli
