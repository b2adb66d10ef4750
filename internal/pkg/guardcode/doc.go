// Package guardcode derives Steam Guard one-time codes and confirmation
// request signatures from an account's long-lived secrets.
//
// The outputs must stay bit-exact against the Steam mobile app: codes use a
// 30-second HMAC-SHA1 window mapped through Steam's fixed 26-symbol alphabet
// (not an RFC 6238 digit code), and confirmation keys sign a time+tag buffer
// with the identity secret.
package guardcode
