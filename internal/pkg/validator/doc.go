// Package validator wraps struct validation behind a small interface so
// usecases stay decoupled from the concrete engine. The v10 implementation
// registers the custom phone, password, and alphaspace rules.
package validator
