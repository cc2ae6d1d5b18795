// Package translation provides the clients for the remote translation
// providers (a Google Translate v2 style endpoint and a Microsoft Translator
// style endpoint), the error type they share, and a wrapper that adds rate
// limiting, bounded retries and circuit breaking around any provider.
package translation
