// Package errors turns conversion, configuration and Atlassian API errors
// into messages for the adfbridge CLI.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// Wrap recognizes the sentinels of packages adf, http, jira, confluence and
// config; network failures are matched on their text:
//
//	if err := run(ctx); err != nil {
//	    err = errors.Wrap(err, errors.WithSiteURL(settings.BaseURL()))
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(errors.ExitCode(err))
//	}
package errors
