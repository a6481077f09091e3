// Package http provides the HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /account/signup: registers an account. Body mirrors signupRequest in
//     account_handler.go; answers 403 when signups are closed.
//   - POST /account/login: issues a session token. Body: {"username","password"}.
//     The token is returned in the body and surfaced via the `X-Session-Token`
//     header and a `session_token` cookie.
//   - POST /account/logout: revokes the current session token and clears the
//     cookie. Returns 204 No Content.
//   - GET/PATCH/DELETE /account/@me: profile read, partial update, and
//     unregistration for the authenticated user. Unregistration cascades to
//     the user's sessions, calendar, slots, and bookings.
//   - GET /account/users/{username}: public profile without the email address.
//   - GET /calendars/{host_username}: a host's calendar; the external calendar
//     reference appears only for the owner.
//   - POST /calendars, PATCH /calendars: calendar management for hosts.
//   - POST /time-slots, GET /time-slots: recurring slot publication and listing
//     for the authenticated host's calendar. Overlapping slots answer 409.
//   - POST /bookings/{host_username}: books a dated appointment against one of
//     the host's slots. GET /bookings lists the authenticated guest's bookings.
//   - GET /calendars/{host_username}/availability/{year}/{month}: the month
//     grid plus the concrete bookable dates per slot.
//   - GET /metrics (when enabled) and GET /healthz.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
