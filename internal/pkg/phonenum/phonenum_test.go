package phonenum

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "AlreadyCanonical", raw: "09121234567", want: "09121234567"},
		{name: "CountryCodePrefix", raw: "989121234567", want: "09121234567"},
		{name: "PlusCountryCode", raw: "+989121234567", want: "09121234567"},
		{name: "WithSeparators", raw: "0912 123-4567", want: "09121234567"},
		{name: "URIScheme", raw: "tel:09121234567", want: "09121234567"},
		{name: "EmbeddedLetter", raw: "0912123456a7", want: "09121234567"},
		{name: "ParenthesizedPrefix", raw: "(0912) 123.4567", want: "09121234567"},
		{name: "Empty", raw: "", wantErr: true},
		{name: "TooShort", raw: "0912123456", wantErr: true},
		{name: "TooLong", raw: "091212345678", wantErr: true},
		{name: "LandlinePrefix", raw: "02112345678", wantErr: true},
		{name: "DoubleZeroCountryCode", raw: "00989121234567", wantErr: true},
		{name: "NoDigitsAtAll", raw: "+-()", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)

			if tc.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Fatalf("Normalize(%q) error = %v, want ErrInvalidFormat", tc.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("+989121234567") {
		t.Fatalf("expected +989121234567 to be valid")
	}
	if IsValid("12345") {
		t.Fatalf("expected 12345 to be invalid")
	}
}
