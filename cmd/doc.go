// Package cmd implements the tarefista command line interface.
//
// The root command defaults to "today", which prints the tasks visible on
// the current date. Subcommands manage tasks, goals and the account
// session; "watch" runs a long-lived refresh loop with health and metrics
// endpoints.
package cmd
