// Package books provides the typed HTTP client for the book catalog API.
//
// # Overview
//
// Client wraps the five REST operations of the API (list, get by id, create,
// update, delete) and normalizes every failure into a single *Error value.
// Operations never panic; callers branch on err != nil and, when they need
// to, inspect the HTTP status with StatusCode.
//
// # Endpoints
//
//   - GET    /books?page&pageSize&search  -> {"books": [...], "totalPage": n}
//   - GET    /book/{id}                   -> {"book": {...}}
//   - POST   /book                        -> 201
//   - PUT    /book/{id}                   -> 204
//   - DELETE /book/{id}                   -> 204
//
// page and pageSize are sent together (defaulting to 1 and 5) when either is
// set; search is sent only when non-blank. A ListParams zero value sends no
// query so the API applies its own defaults.
//
// # Errors
//
// Error.Kind distinguishes the three runtime failures:
//
//   - KindTransport: connection failure, including exhausted retries
//   - KindHTTP: non-2xx response, StatusCode preserved
//   - KindDecode: body did not match the expected JSON shape
//
// A missing base URL is a configuration error reported by NewClient as
// ErrMissingBaseURL.
//
// # Retries
//
// The client's transport retries idempotent methods up to Config.RetryLimit
// total attempts on connection errors and on 408, 413, 429, 500, 502, 503 and
// 504, with exponential backoff starting at 300ms. POST is never retried.
// An optional rate limiter gates every attempt.
//
// # Tracing
//
// Every operation runs in a span named after it (CreateBook, GetBooks,
// GetBookByID, UpdateBook, DeleteBookByID). Failures are recorded on the span
// before it ends. Outgoing requests are instrumented with otelhttp so trace
// context reaches the API.
//
// # Caching
//
// With WithCache, list responses are stored under the tags TagList and
// CacheKey, detail responses under TagDetail and CacheKey. Create invalidates
// TagList, update and delete invalidate both, and Revalidate drops CacheKey.
package books
