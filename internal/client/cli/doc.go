// Package cli provides the interactive filevault command-line client.
//
// It wires configuration, the local session database, the API services and a
// read-eval-print loop. A session remembered from an earlier run is restored
// on start, so the user stays signed in until logout or token expiry.
//
// Commands:
//   - register / login / logout / whoami
//   - list
//   - upload <path>            upload through the server
//   - put <path>               upload via a presigned object-store url
//   - download <id> [--proxy]  save a file into the download directory
//   - link <id>                print a presigned download url
//   - delete <id>
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
