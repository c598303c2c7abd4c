// Package api provides a client for the Tarefista REST backend.
//
// This package wraps the HTTPS API and provides functionality for:
//   - Authentication (login, register, logout, user id exchange)
//   - Managing tasks (list, create, update, complete, delete)
//   - Managing goals (list, create, delete)
//   - Fetching the motivational phrase of the day
//
// All business logic lives server-side; the client is a thin transport that
// converts wire records into typed domain values and maps failures onto a
// small error taxonomy (*Error for transport and non-2xx failures,
// ErrMalformedResponse for undecodable bodies).
//
// # Identity scoping
//
// Every task and goal query is scoped by an Identity: either an
// authenticated user id or a locally generated anonymous temp id. Exactly
// one of the two is set; resolving and caching the identity is the job of
// the session package.
//
// # Example Usage
//
//	client := api.NewClient("https://api.tarefista.app")
//
//	tasks, err := client.Tasks(ctx, api.Identity{TempUserID: tempID})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	created, err := client.CreateTask(ctx, api.TaskInput{
//	    Text: "water the plants",
//	    Recurrence: &api.Recurrence{
//	        Pattern: api.PatternDaily,
//	        Start:   time.Now(),
//	    },
//	    Identity: api.Identity{TempUserID: tempID},
//	})
package api
