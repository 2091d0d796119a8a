// Package providers implements the live and file-backed data feeds
// behind the source package interfaces: API-Basketball for the
// schedule, The Odds API for moneylines and player props, and a
// file-backed trends provider.
package providers
