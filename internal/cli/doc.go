// Package cli implements the accounts administration tool: it opens the
// configured users document and runs one command against it.
//
// Commands:
//
//	hash                      print the digest of a password
//	list                      list accounts
//	add <name> [home]         create or replace an enabled account
//	delete <name>             delete an account
//	check <name>              check a password, or the anonymous account
//	watch                     follow the document and report reloads
//	version                   print build information
package cli
