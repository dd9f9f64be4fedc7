// Package initdata verifies Telegram Mini App launch payloads ("init data").
//
// A launch payload is a query-string encoded set of fields signed by the
// platform. Verification runs four stages in order, each able to stop the
// pipeline with a typed rejection:
//
//   - Canonicalize: decode the fields, remove "hash", sort the rest by name
//     and join them as "key=value" lines (the data-check string)
//   - DeriveKey: HMAC-SHA256 keyed by "WebAppData" over the bot token
//   - Signature check: HMAC-SHA256 of the data-check string under the derived
//     key, lowercase hex, compared in constant time
//   - Freshness and identity: reject payloads whose auth_date is older than
//     the window, then decode the "user" JSON object
//
// # Usage
//
//	verifier, err := initdata.NewVerifier(initdata.Config{
//	    Secret: botToken,
//	    MaxAge: 24 * time.Hour,
//	})
//	if err != nil {
//	    log.Fatal(err) // configuration error, refuse to start
//	}
//
//	verdict := verifier.Verify(initData)
//	if !verdict.Accepted {
//	    status := errors.HTTPStatus(initdata.AsAppError(verdict.Err()))
//	    ...
//	}
//	userID := verdict.Identity.ID
//
// # Security Considerations
//
//   - The bot token and derived key are never logged or returned in errors
//   - Rejections expose only an ErrorKind
//   - Payloads dated in the future are accepted; only age beyond the window
//     is rejected
//   - Results are never cached, every call recomputes the signature
package initdata
