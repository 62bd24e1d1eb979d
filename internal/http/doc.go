// Package http provides HTTP handlers and middleware for the confirmation
// link service.
//
// The router exposes the following endpoints:
//   - POST /appointments: mints a record and its link set. Body:
//     {"client_name","client_phone","scheduled_at","ttl_seconds"}. Response:
//     {"id","status","confirm_page","ok","no"} where the three paths embed the
//     record id and link signature as the `sig` query parameter.
//   - GET /appointments/{id}: status lookup returning the record's public
//     fields. The signing salt is never included.
//   - GET /confirm/{id}?sig=: confirmation page data; validates expiry and
//     signature and returns the record summary plus both action paths.
//   - GET|POST /do/{id}/{action}?sig=: applies the decision (`ok` confirms,
//     `no` declines) and returns a terminal acknowledgment without redirect.
//
// Protocol rejections map to: invalid action 400, unknown record 404, expired
// link 410, invalid signature 403, already decided 409.
//
// Request/response DTOs live alongside their handler so tests and
// documentation share the same ground truth.
package http
