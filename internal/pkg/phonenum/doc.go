// Package phonenum normalizes Iranian mobile numbers into the canonical
// local form used as the account identifier.
//
// The canonical form is eleven digits starting with "09". Non-digit
// characters are dropped and a leading "98" country code is rewritten to
// the local "0" prefix before validation, so "+989121234567" and
// "09121234567" address the same account.
package phonenum
