// Package mail sends email through a pluggable driver.
//
// Use cases depend on the Mail interface and the Message payload; New picks
// the driver (net/smtp, gomail or a log-only sender for development) from
// configuration.
package mail
