// Package commands defines the luach CLI and wires the calendar engines for
// subcommands.
//
// Commands
//
//   - date      Convert a civil date to the Hebrew calendar
//   - civil     Convert a Hebrew date to the civil calendar
//   - molad     Print the molad of a Hebrew month
//   - year      Print the keviah and key dates of a Hebrew year
//   - zmanim    Print Sabbath or daily times for a coordinate
//   - parasha   Print the weekly Torah portion
//   - holidays  List the holidays of a Hebrew year
//   - events    List upcoming events, optionally as iCalendar
//
// # Implementation
//
// The root command builds a logger, the zmanim engine pool and the time
// zone before any subcommand runs. Output goes to the command's writer so
// that it can be captured; logs go to stderr. Every command accepts --json.
package commands
