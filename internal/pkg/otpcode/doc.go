// Package otpcode generates the short numeric codes delivered over SMS.
//
// Codes come from crypto/rand so they are not guessable from previous
// codes. Uniqueness among concurrently active codes is the caller's
// responsibility; the generator only promises uniform random digits.
package otpcode
